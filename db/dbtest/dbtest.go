// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sakshamaitools/clash-point-forge/db"
	"github.com/stretchr/testify/require"
)

// New returns an in-memory SQLite database with all migrations applied.
// A single connection is used so every query sees the same database.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	conn, err := db.Connect("file::memory:?_foreign_keys=on", time.Second)
	require.NoError(t, err, "Failed to connect to in-memory DB")

	_, err = conn.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, db.Migrate(conn), "Failed to apply migrations")

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
