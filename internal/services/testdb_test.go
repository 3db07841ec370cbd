package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/repo"
)

// newTestDB opens a migrated in-memory database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc-%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// newFileDB opens a migrated on-disk database with the production pool
// (WAL, busy_timeout, several connections) so writers really overlap.
func newFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "community.db"))
	if err != nil {
		t.Fatalf("open sqlite file: %v", err)
	}
	db.Logger = db.Logger.LogMode(logger.Silent)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func countRows(t *testing.T, db *gorm.DB, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// seed inserts a discussion directly, bypassing validation.
func seed(t *testing.T, db *gorm.DB, id, category string, created time.Time) {
	t.Helper()
	d := &domain.Discussion{
		ID:         id,
		Title:      "Discussion " + id,
		Content:    "Body of discussion " + id + " with enough text",
		Category:   category,
		AuthorID:   "seed",
		AuthorName: "Seeder",
		CreatedAt:  created.UTC(),
		UpdatedAt:  created.UTC(),
	}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func ids(list []domain.DiscussionView) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.ID
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var alice = Actor{ID: "u-alice", Name: "Alice Reader"}
