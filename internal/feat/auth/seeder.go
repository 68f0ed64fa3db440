package auth

import (
	"context"
	"errors"

	"github.com/foliohq/folio/pkg/fl/config"
	"github.com/foliohq/folio/pkg/fl/logger"
)

// Seeder ensures the configured operator account exists at startup.
type Seeder struct {
	service Service
	cfg     *config.Config
	log     logger.Logger
}

// NewSeeder creates a new auth seeder.
func NewSeeder(service Service, cfg *config.Config, log logger.Logger) *Seeder {
	return &Seeder{service: service, cfg: cfg, log: log}
}

// Start seeds the operator account from configuration if it doesn't exist.
func (s *Seeder) Start(ctx context.Context) error {
	email := s.cfg.Auth.AdminEmail
	password := s.cfg.Auth.AdminPassword

	if email == "" || password == "" {
		s.log.Info("No admin credentials configured, skipping operator seed")
		return nil
	}

	_, err := s.service.GetOperatorByEmail(ctx, email)
	if err == nil {
		s.log.Debugf("Operator %s already exists", email)
		return nil
	}
	if !errors.Is(err, ErrOperatorNotFound) {
		return err
	}

	if _, err := s.service.CreateOperator(ctx, email, password, "Admin"); err != nil {
		return err
	}
	s.log.Infof("Seeded operator account: %s", email)
	return nil
}
