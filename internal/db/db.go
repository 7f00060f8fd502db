// Package db opens the ERP database, applies its schema and seeds it.
package db

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ale3590/fares/internal/config"
	"github.com/ale3590/fares/internal/models"
)

var passwordRe = regexp.MustCompile(`(password=)([^\s]+)`)

// Open opens a connection without touching the schema. Postgres is retried
// while the server starts.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	switch cfg.Driver {
	case "sqlite":
		d, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return d, nil
	case "postgres", "":
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}

	dsn := cfg.DSN()
	var d *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		d, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		log.Printf("[DB] retrying connection (%d/10): %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := d.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	log.Println("[DB] Using DSN:", passwordRe.ReplaceAllString(dsn, `${1}***`))
	return d, nil
}

// Connect opens the database and brings its schema up to date: SQL
// migrations when app.Migrations is set (postgres only), AutoMigrate
// otherwise. Seed data is written when app.Seed is set.
func Connect(cfg config.DatabaseConfig, app config.AppConfig) (*gorm.DB, error) {
	d, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if app.Migrations && !IsSQLite(d) {
		if err := RunSQLMigrations("file://migrations", cfg.URL()); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := Migrate(d); err != nil {
		return nil, err
	}
	for _, table := range []string{"users", "products", "clients", "sales"} {
		if !d.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if app.Seed {
		if err := Seed(d); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return d, nil
}

// Migrate runs gorm AutoMigrate over every model.
func Migrate(d *gorm.DB) error {
	for _, m := range models.All() {
		if err := d.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Ping runs a trivial query, used by health checks.
func Ping(d *gorm.DB) error {
	return d.Exec("SELECT 1").Error
}

// IsSQLite reports whether d talks to sqlite.
func IsSQLite(d *gorm.DB) bool {
	return strings.EqualFold(d.Dialector.Name(), "sqlite")
}
