package infra

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies pending schema migrations. MIGRATIONS_DIR overrides
// the lookup for containerized deployments where the binary runs away from
// the repo root.
func RunMigrations(dsn string, logger *slog.Logger) error {
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = findMigrationDir()
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", dir), dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("migrations applied", "dir", dir, "version", version, "dirty", dirty)
	return nil
}

// findMigrationDir walks up from the working directory until it finds
// db/migrations, so both the API binary and tests resolve the same tree.
func findMigrationDir() string {
	dir, _ := os.Getwd()
	for dir != "" && dir != "/" {
		candidate := filepath.Join(dir, "db", "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return "db/migrations"
}
