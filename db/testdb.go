package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	// every connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(database); err != nil {
		sqlDB.Close()
		t.Fatalf("creating test database schema: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return database
}
