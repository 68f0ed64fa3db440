package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NewTestDB creates a new in-memory SQLite database with all migrations applied.
func NewTestDB() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	if err := ApplyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot apply migrations: %w", err)
	}

	return db, nil
}

// ApplyMigrations applies the up section of every SQL migration in order.
func ApplyMigrations(db *sql.DB) error {
	dir := findMigrationsDir()
	if dir == "" {
		return fmt.Errorf("migrations directory not found")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("cannot read migration %s: %w", name, err)
		}

		up := upSection(string(raw))
		if up == "" {
			continue
		}

		if _, err := db.Exec(up); err != nil {
			return fmt.Errorf("cannot execute migration %s: %w", name, err)
		}
	}

	return nil
}

// findMigrationsDir walks up from the package under test to the repo root.
func findMigrationsDir() string {
	paths := []string{
		"assets/migrations/sqlite",
		"../assets/migrations/sqlite",
		"../../assets/migrations/sqlite",
		"../../../assets/migrations/sqlite",
		"../../../../assets/migrations/sqlite",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func upSection(content string) string {
	var lines []string
	inUp := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "+migrate Up") {
			inUp = true
			continue
		}
		if strings.Contains(trimmed, "+migrate Down") {
			break
		}
		if inUp {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// TestDBProvider implements DBProvider for testing.
type TestDBProvider struct {
	DB *sql.DB
}

func (p *TestDBProvider) GetDB() *sql.DB {
	return p.DB
}
