// Package repotest opens throwaway databases for tests.
package repotest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// NewSQLite returns a migrated in-memory SQLite database and its manager.
// The pool holds a single connection, so the database lives until Cleanup.
func NewSQLite(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()

	db, _, err := dbx.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, m.RunMigrations(context.Background(), db))

	return db, m
}
