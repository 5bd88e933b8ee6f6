package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator builds a migrate instance over an open connection. The SQL in
// migrations/ is kept portable between Postgres and SQLite.
//
// Closing the returned instance closes conn as well.
func NewMigrator(conn *sqlx.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	var driver database.Driver
	switch conn.DriverName() {
	case "postgres":
		driver, err = postgres.WithInstance(conn.DB, &postgres.Config{})
	case "sqlite3":
		driver, err = sqlite3.WithInstance(conn.DB, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("no migration driver for %q", conn.DriverName())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, conn.DriverName(), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// Migrate applies every pending up migration.
func Migrate(conn *sqlx.DB) error {
	m, err := NewMigrator(conn)
	if err != nil {
		return err
	}
	// m.Close() не вызываем: он закрыл бы общее соединение
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
