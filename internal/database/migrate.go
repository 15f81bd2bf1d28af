package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/jask/frontfrend/internal/database/migrations"
)

// Migrate applies the embedded up migrations to the database at path.
// The migrator opens its own connection, so call it before Open.
func Migrate(path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// OpenMigrated migrates then opens the database at path.
func OpenMigrated(path string) (*sql.DB, error) {
	if err := Migrate(path); err != nil {
		return nil, err
	}
	return Open(path)
}
