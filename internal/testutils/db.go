package testutils

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/geode-sdk/GeodeDiscord/internal/game"
	"github.com/geode-sdk/GeodeDiscord/internal/quotes"
	"github.com/geode-sdk/GeodeDiscord/internal/roles"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB wraps a GORM database connection for testing
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB creates a throwaway SQLite database with all models migrated.
// The file lives in the test's temp dir, so tests stay independent. A shared
// in-memory database would not survive GORM's connection pool.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := fmt.Sprintf("%s?_foreign_keys=on", filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&quotes.Quote{},
		&game.Guess{},
		&game.GuessStats{},
		&roles.StickyRole{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	testDB := &TestDB{DB: db}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return testDB
}
