package db

import (
	"errors"
	"log"

	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and the file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunSQLMigrations applies every pending migration under source
// (e.g. "file://migrations") to the postgres database at url.
func RunSQLMigrations(source, url string) error {
	m, err := migrate.New(source, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	v, dirty, _ := m.Version()
	log.Printf("[DB] schema at version %d (dirty=%v)", v, dirty)
	return nil
}
