// Package testutil opens throwaway stores for tests.
package testutil

import (
	"testing"

	"github.com/anonto42/userdir/backend/internal/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns an in-memory database with the users and follows schema.
// The pool is pinned to one connection since every :memory: connection is its
// own database.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.EnsureSchema(db))
	return db
}
