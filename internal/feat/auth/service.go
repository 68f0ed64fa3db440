package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/foliohq/folio/pkg/fl/config"
	"github.com/foliohq/folio/pkg/fl/logger"
	"github.com/foliohq/folio/pkg/fl/model"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// Service defines the auth service interface.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Authenticate(ctx context.Context, email, password string) (*Operator, error)
	CreateOperator(ctx context.Context, email, password, name string) (*Operator, error)
	GetOperatorByEmail(ctx context.Context, email string) (*Operator, error)
	CreateSession(ctx context.Context, operatorID uuid.UUID) (*Session, error)
	ValidateSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	GetSessionTTL() time.Duration
}

// DBProvider provides access to the database.
type DBProvider interface {
	GetDB() *sql.DB
}

type service struct {
	dbProvider DBProvider
	cfg        *config.Config
	log        logger.Logger
	sessionTTL time.Duration
}

// NewService creates a new auth service.
func NewService(dbProvider DBProvider, cfg *config.Config, log logger.Logger) Service {
	return &service{
		dbProvider: dbProvider,
		cfg:        cfg,
		log:        log,
	}
}

func (s *service) db() *sql.DB {
	return s.dbProvider.GetDB()
}

func (s *service) Start(ctx context.Context) error {
	ttl, err := time.ParseDuration(s.cfg.Auth.SessionTTL)
	if err != nil {
		ttl = 24 * time.Hour
		s.log.Infof("Invalid session TTL, using default: %v", ttl)
	}
	s.sessionTTL = ttl
	s.log.Info("Auth service started")
	return nil
}

func (s *service) Stop(ctx context.Context) error {
	s.log.Info("Auth service stopped")
	return nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*Operator, error) {
	op, err := s.GetOperatorByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !op.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return op, nil
}

func (s *service) CreateOperator(ctx context.Context, email, password, name string) (*Operator, error) {
	op, err := NewOperator(email, password, name)
	if err != nil {
		return nil, fmt.Errorf("cannot create operator: %w", err)
	}

	_, err = s.db().ExecContext(ctx,
		`INSERT INTO operators (id, email, password_hash, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		op.ID.String(), op.Email, op.PasswordHash, op.Name, op.CreatedAt, op.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("cannot store operator: %w", err)
	}
	return op, nil
}

func (s *service) GetOperatorByEmail(ctx context.Context, email string) (*Operator, error) {
	row := s.db().QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at
		 FROM operators WHERE email = ?`, email)

	var (
		op    Operator
		rawID string
	)
	err := row.Scan(&rawID, &op.Email, &op.PasswordHash, &op.Name, &op.CreatedAt, &op.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot get operator: %w", err)
	}

	op.ID = model.ParseID(rawID)
	if !model.IsValidID(op.ID) {
		return nil, fmt.Errorf("cannot parse operator id %q", rawID)
	}
	return &op, nil
}

func (s *service) CreateSession(ctx context.Context, operatorID uuid.UUID) (*Session, error) {
	session := NewSession(operatorID, s.sessionTTL)

	_, err := s.db().ExecContext(ctx,
		`INSERT INTO sessions (id, operator_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		session.ID, session.OperatorID.String(), session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("cannot store session: %w", err)
	}
	return session, nil
}

func (s *service) ValidateSession(ctx context.Context, sessionID string) (string, error) {
	row := s.db().QueryRowContext(ctx,
		`SELECT id, operator_id, expires_at, created_at FROM sessions WHERE id = ?`, sessionID)

	var (
		session Session
		rawID   string
	)
	err := row.Scan(&session.ID, &rawID, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cannot get session: %w", err)
	}

	if session.IsExpired() {
		// Expired sessions are reaped on sight.
		s.DeleteSession(ctx, sessionID)
		return "", ErrSessionExpired
	}

	return rawID, nil
}

func (s *service) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db().ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("cannot delete session: %w", err)
	}
	return nil
}

func (s *service) GetSessionTTL() time.Duration {
	return s.sessionTTL
}
