package migrations

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var schemaFiles embed.FS

// open wires the embedded SQL files to a migrator for the given database URL.
func open(dbURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(schemaFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open migrator: %w", err)
	}
	return m, nil
}

// Run applies every pending up migration. A database already at the latest
// version is not an error.
func Run(dbURL string) error {
	m, err := open(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("📦 Schema up to date, nothing to migrate")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Printf("✅ Schema migrated to version %d (dirty=%v)", version, dirty)
	return nil
}

// Rollback reverts the most recent migration.
func Rollback(dbURL string) error {
	m, err := open(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("roll back one step: %w", err)
	}
	log.Println("✅ Rolled back one migration")
	return nil
}
