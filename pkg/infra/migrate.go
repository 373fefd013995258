package infra

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies all pending migrations from source (a file:// URL)
// to the database at connStr. A dirty version from a crashed run is
// forced back one step and retried.
func Migrate(source, connStr string) error {
	mg, err := migrate.New(source, connStr)
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return err
	}
	if dirty {
		if err := mg.Force(int(version) - 1); err != nil {
			return err
		}
	}

	if err := mg.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
