// Package testdb opens an in-memory SQLite database carrying the application
// schema, for repository and service tests.
package testdb

import (
	"database/sql"
	_ "embed"
	"testing"

	_ "modernc.org/sqlite"

	"pricegov/internal/db"
)

//go:embed schema.sql
var schema string

// New returns a fresh database that is closed when the test ends.
func New(t testing.TB) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", "file::memory:?_time_format=sqlite")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	for _, stmt := range db.SplitStatements(schema) {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}
	return conn
}
