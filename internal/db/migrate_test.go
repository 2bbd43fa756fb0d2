package db

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestSplitStatements(t *testing.T) {
	script := `-- header
CREATE TABLE a (
    id INTEGER
);

CREATE TABLE b (id INTEGER);
INSERT INTO b VALUES (1)`
	stmts := SplitStatements(script)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE a (\n    id INTEGER\n)", stmts[0])
	assert.Equal(t, "CREATE TABLE b (id INTEGER)", stmts[1])
	assert.Equal(t, "INSERT INTO b VALUES (1)", stmts[2])
}

func TestApplyIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER);\n")},
		"m/0002_b.sql": {Data: []byte("CREATE TABLE b (id INTEGER);\nINSERT INTO b VALUES (7);\n")},
	}
	ctx := context.Background()
	require.NoError(t, applyFrom(ctx, db, fsys, "m"))
	require.NoError(t, applyFrom(ctx, db, fsys, "m"))

	var applied, rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM b`).Scan(&rows))
	assert.Equal(t, 2, applied)
	assert.Equal(t, 1, rows)
}

func TestEmbeddedMigrationsParse(t *testing.T) {
	body, err := migrationFS.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	stmts := SplitStatements(string(body))
	assert.Len(t, stmts, 12)
}
