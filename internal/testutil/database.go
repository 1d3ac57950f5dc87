// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Settj76/ecom/db"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// SetupTestDatabase opens a schema-initialized SQLite file under t.TempDir.
func SetupTestDatabase(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	testDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=10000")
	require.NoError(t, err)
	require.NoError(t, db.InitializeSchema(testDB))

	t.Cleanup(func() { testDB.Close() })
	return testDB
}

// SetupTestRepositoryFactory returns a SQLite-backed factory.
func SetupTestRepositoryFactory(t *testing.T) *db.RepositoryFactory {
	t.Helper()
	return db.NewRepositoryFactory(SetupTestDatabase(t), nil, "ecom_test", zap.NewNop())
}

// SetupTestDBManager starts a manager that is stopped when the test ends.
func SetupTestDBManager(t *testing.T) *db.DBManager {
	t.Helper()
	m := db.NewDBManager(zap.NewNop())
	t.Cleanup(m.Stop)
	return m
}
