// Package testdb opens throwaway in-memory databases for package tests.
package testdb

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tech1bro/cinescope-backend/internal/models"
)

var seq atomic.Int64

// New returns a migrated sqlite in-memory DB. cache=shared keeps the
// database alive across pooled connections; a single open connection
// serializes access so concurrent test traffic cannot hit sqlite write
// locks. Foreign keys are switched on so the schema behaves like the
// postgres one the same migration produces.
func New(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// The User model carries a postgres-only default and is not needed by
	// these tests.
	if err := db.AutoMigrate(
		&models.Movie{},
		&models.Review{},
		&models.ReviewLike{},
		&models.WatchlistEntry{},
		&models.Favorite{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
