package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DriverFor picks the SQL driver for a DSN: "file:" DSNs are SQLite,
// everything else is Postgres.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "file:") {
		return "sqlite3"
	}
	return "postgres"
}

// Connect opens a pool for dsn and pings it within timeout.
func Connect(dsn string, timeout time.Duration) (*sqlx.DB, error) {
	driver := DriverFor(dsn)
	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	switch driver {
	case "sqlite3":
		// одно соединение: in-memory база живёт в нём, а запись в SQLite всё равно последовательная
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
	default:
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(25)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping %s database within %v: %w", driver, timeout, err)
	}

	return conn, nil
}
