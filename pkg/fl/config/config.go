package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string         `yaml:"env"` // "dev" or "prod"
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Remote   RemoteConfig   `yaml:"remote"`
	Auth     AuthConfig     `yaml:"auth"`
	Theme    ThemeConfig    `yaml:"theme"`
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// RemoteConfig describes the remote content store the gateway talks to.
type RemoteConfig struct {
	BaseURL       string `yaml:"base_url"`
	Timeout       string `yaml:"timeout"`
	UploadLimitMB int64  `yaml:"upload_limit_mb"`
}

// TimeoutDuration parses the configured timeout, falling back to 30s.
func (r RemoteConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

type AuthConfig struct {
	SessionTTL    string `yaml:"session_ttl"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

type ThemeConfig struct {
	Default string `yaml:"default"` // "light" or "dark"
}

// Load builds the configuration from defaults, an optional config.yaml,
// an optional .env file, and FOLIO_* environment overrides (highest priority).
func Load() *Config {
	// A .env file is optional; ignore errors when it is absent.
	godotenv.Load()

	env := os.Getenv("FOLIO_ENV")
	if env == "" {
		env = "dev" // Default to dev for safety
	}

	var dbPath string
	if env == "dev" {
		dbPath = "_workspace/db/folio.db"
	} else {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".folio", "folio.db")
	}

	cfg := &Config{
		Env:      env,
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: dbPath},
		Log:      LogConfig{Level: "info"},
		Remote: RemoteConfig{
			BaseURL:       "http://localhost:5000/api",
			Timeout:       "30s",
			UploadLimitMB: 10,
		},
		Auth:  AuthConfig{SessionTTL: "720h"}, // 30 days
		Theme: ThemeConfig{Default: "light"},
	}

	data, err := os.ReadFile("config.yaml")
	if err == nil {
		yaml.Unmarshal(data, cfg)
	}

	// Environment overrides (highest priority)
	if v := os.Getenv("FOLIO_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FOLIO_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("FOLIO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FOLIO_REMOTE_URL"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("FOLIO_REMOTE_TIMEOUT"); v != "" {
		cfg.Remote.Timeout = v
	}
	if v := os.Getenv("FOLIO_AUTH_SESSION_TTL"); v != "" {
		cfg.Auth.SessionTTL = v
	}
	if v := os.Getenv("FOLIO_ADMIN_EMAIL"); v != "" {
		cfg.Auth.AdminEmail = v
	}
	if v := os.Getenv("FOLIO_ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("FOLIO_THEME_DEFAULT"); v != "" {
		cfg.Theme.Default = v
	}

	return cfg
}
