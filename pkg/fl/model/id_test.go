package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewID(t *testing.T) {
	id := NewID()
	if !IsValidID(id) {
		t.Error("Expected a freshly generated id to be valid")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{
			name:  "valid uuid",
			input: NewID().String(),
			valid: true,
		},
		{
			name:  "garbage",
			input: "not-a-uuid",
			valid: false,
		},
		{
			name:  "empty",
			input: "",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := ParseID(tt.input)
			if got := IsValidID(id); got != tt.valid {
				t.Errorf("Expected valid=%v for %q, got %v", tt.valid, tt.input, got)
			}
			if !tt.valid && id != uuid.Nil {
				t.Errorf("Expected nil id for invalid input, got %s", id)
			}
		})
	}
}

func TestNewCorrelationToken(t *testing.T) {
	a := NewCorrelationToken()
	b := NewCorrelationToken()
	if a == "" || b == "" {
		t.Fatal("Expected non-empty tokens")
	}
	if a == b {
		t.Error("Expected tokens to be unique")
	}
}
