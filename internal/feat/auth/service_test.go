package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/foliohq/folio/internal/testutil"
	"github.com/foliohq/folio/pkg/fl/config"
	"github.com/foliohq/folio/pkg/fl/logger"
	"github.com/google/uuid"
)

func newTestLogger() logger.Logger {
	return logger.NewNoop()
}

func setupTestService(t *testing.T) (Service, *sql.DB, func()) {
	t.Helper()

	db, err := testutil.NewTestDB()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{
			SessionTTL: "24h",
		},
	}

	svc := NewService(&testutil.TestDBProvider{DB: db}, cfg, newTestLogger())
	if err := svc.Start(context.Background()); err != nil {
		db.Close()
		t.Fatalf("Failed to start service: %v", err)
	}

	cleanup := func() {
		svc.Stop(context.Background())
		db.Close()
	}

	return svc, db, cleanup
}

func TestServiceStart(t *testing.T) {
	tests := []struct {
		name       string
		sessionTTL string
		wantTTL    time.Duration
	}{
		{
			name:       "valid TTL",
			sessionTTL: "24h",
			wantTTL:    24 * time.Hour,
		},
		{
			name:       "invalid TTL - falls back to default",
			sessionTTL: "invalid",
			wantTTL:    24 * time.Hour,
		},
		{
			name:       "empty TTL - falls back to default",
			sessionTTL: "",
			wantTTL:    24 * time.Hour,
		},
		{
			name:       "short TTL",
			sessionTTL: "1h",
			wantTTL:    time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := testutil.NewTestDB()
			if err != nil {
				t.Fatalf("Failed to create test database: %v", err)
			}
			defer db.Close()

			cfg := &config.Config{
				Auth: config.AuthConfig{
					SessionTTL: tt.sessionTTL,
				},
			}

			svc := NewService(&testutil.TestDBProvider{DB: db}, cfg, newTestLogger())
			if err := svc.Start(context.Background()); err != nil {
				t.Fatalf("Failed to start service: %v", err)
			}

			if got := svc.GetSessionTTL(); got != tt.wantTTL {
				t.Errorf("Expected TTL %v, got %v", tt.wantTTL, got)
			}
		})
	}
}

func TestCreateOperator(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	op, err := svc.CreateOperator(context.Background(), "admin@example.com", "secret", "Admin")
	if err != nil {
		t.Fatalf("CreateOperator failed: %v", err)
	}
	if op.ID == uuid.Nil {
		t.Error("Expected an id to be assigned")
	}
	if op.Email != "admin@example.com" {
		t.Errorf("Expected email preserved, got %q", op.Email)
	}
	if op.PasswordHash == "secret" || op.PasswordHash == "" {
		t.Error("Expected password to be hashed")
	}

	// Duplicate emails are rejected by the unique constraint.
	if _, err := svc.CreateOperator(context.Background(), "admin@example.com", "other", "Again"); err == nil {
		t.Error("Expected duplicate email to be rejected")
	}
}

func TestGetOperatorByEmail(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	created, err := svc.CreateOperator(context.Background(), "admin@example.com", "secret", "Admin")
	if err != nil {
		t.Fatalf("CreateOperator failed: %v", err)
	}

	got, err := svc.GetOperatorByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("GetOperatorByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Expected id %s, got %s", created.ID, got.ID)
	}

	if _, err := svc.GetOperatorByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrOperatorNotFound) {
		t.Errorf("Expected ErrOperatorNotFound, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	if _, err := svc.CreateOperator(context.Background(), "admin@example.com", "secret", "Admin"); err != nil {
		t.Fatalf("CreateOperator failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "valid credentials",
			email:    "admin@example.com",
			password: "secret",
		},
		{
			name:     "wrong password",
			email:    "admin@example.com",
			password: "wrong",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "secret",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := svc.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate failed: %v", err)
			}
			if op.Email != tt.email {
				t.Errorf("Expected %s, got %s", tt.email, op.Email)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	op, err := svc.CreateOperator(context.Background(), "admin@example.com", "secret", "Admin")
	if err != nil {
		t.Fatalf("CreateOperator failed: %v", err)
	}

	session, err := svc.CreateSession(context.Background(), op.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.ID == "" {
		t.Fatal("Expected a session id")
	}

	operatorID, err := svc.ValidateSession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if operatorID != op.ID.String() {
		t.Errorf("Expected operator id %s, got %s", op.ID, operatorID)
	}

	if err := svc.DeleteSession(context.Background(), session.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.ValidateSession(context.Background(), session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestValidateSessionExpired(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	op, err := svc.CreateOperator(context.Background(), "admin@example.com", "secret", "Admin")
	if err != nil {
		t.Fatalf("CreateOperator failed: %v", err)
	}

	session, err := svc.CreateSession(context.Background(), op.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Backdate the expiry so the session reads as expired.
	if _, err := db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`,
		time.Now().Add(-time.Hour), session.ID); err != nil {
		t.Fatalf("Failed to backdate session: %v", err)
	}

	if _, err := svc.ValidateSession(context.Background(), session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Expected ErrSessionExpired, got %v", err)
	}

	// Expired sessions are reaped on sight.
	if _, err := svc.ValidateSession(context.Background(), session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after reaping, got %v", err)
	}
}

func TestValidateSessionUnknown(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	if _, err := svc.ValidateSession(context.Background(), "no-such-session"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}
