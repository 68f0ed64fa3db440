package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/foliohq/folio/pkg/fl/config"
	"github.com/foliohq/folio/pkg/fl/logger"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	themeKey = "theme"
)

// Service owns the process-wide operator preferences. The theme flag is
// initialized from the persisted preference at startup, mutated through one
// Toggle action, and persisted on every change. The service is injected
// explicitly; there is no ambient global.
type Service interface {
	Start(ctx context.Context) error
	Theme() string
	ToggleTheme(ctx context.Context) (string, error)
}

// DBProvider provides access to the database.
type DBProvider interface {
	GetDB() *sql.DB
}

type service struct {
	dbProvider DBProvider
	cfg        *config.Config
	log        logger.Logger

	mu    sync.Mutex
	theme string
}

// NewService creates a new preferences service.
func NewService(dbProvider DBProvider, cfg *config.Config, log logger.Logger) Service {
	return &service{
		dbProvider: dbProvider,
		cfg:        cfg,
		log:        log,
	}
}

func (s *service) Start(ctx context.Context) error {
	theme, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("cannot load theme preference: %w", err)
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	s.log.Infof("Preferences loaded, theme: %s", theme)
	return nil
}

// Theme returns the current theme flag.
func (s *service) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// ToggleTheme flips the theme between light and dark and persists the result.
func (s *service) ToggleTheme(ctx context.Context) (string, error) {
	s.mu.Lock()
	next := ThemeLight
	if s.theme == ThemeLight {
		next = ThemeDark
	}
	s.mu.Unlock()

	if err := s.store(ctx, next); err != nil {
		return "", fmt.Errorf("cannot persist theme preference: %w", err)
	}

	s.mu.Lock()
	s.theme = next
	s.mu.Unlock()
	return next, nil
}

func (s *service) load(ctx context.Context) (string, error) {
	row := s.dbProvider.GetDB().QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, themeKey)

	var theme string
	err := row.Scan(&theme)
	if errors.Is(err, sql.ErrNoRows) {
		theme = s.cfg.Theme.Default
		if theme != ThemeDark {
			theme = ThemeLight
		}
		return theme, s.store(ctx, theme)
	}
	if err != nil {
		return "", err
	}
	return theme, nil
}

func (s *service) store(ctx context.Context, theme string) error {
	_, err := s.dbProvider.GetDB().ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		themeKey, theme)
	return err
}
