package auth

import (
	"time"

	"github.com/foliohq/folio/pkg/fl/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Operator is the person allowed into the admin area.
type Operator struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOperator creates an operator with the given email and password.
func NewOperator(email, password, name string) (*Operator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Operator{
		ID:           model.NewID(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CheckPassword verifies if the provided password matches the stored hash.
func (o *Operator) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password))
	return err == nil
}

// UpdatePassword updates the operator's password hash.
func (o *Operator) UpdatePassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.PasswordHash = string(hash)
	o.UpdatedAt = time.Now()
	return nil
}

// Session represents an operator session.
type Session struct {
	ID         string
	OperatorID uuid.UUID
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// NewSession creates a session for the given operator with the specified TTL.
func NewSession(operatorID uuid.UUID, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:         model.NewID().String(),
		OperatorID: operatorID,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsValid returns true if the session is not expired.
func (s *Session) IsValid() bool {
	return !s.IsExpired()
}
