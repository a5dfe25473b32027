// Package dbtest opens throwaway SQLite databases with the full schema for
// package tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mathwaksu-byte/MathwaV2/database"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated in-memory database private to the calling test.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	cfg := database.GormConfig(logger.Silent)
	cfg.PrepareStmt = false

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// Store wraps New in a database.Storage whose direct client is the SQLite
// pool itself.
func Store(t testing.TB) *database.GORMStore {
	t.Helper()
	return database.NewGORMStore(New(t), nil)
}
