package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/library-community/internal/domain"
)

// newTestDB opens a private in-memory database. Pass models to migrate; with
// no arguments the schema is left empty so error paths can be exercised.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection keeps shared-cache tables from reporting "locked".
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

// newCommunityDB migrates the full schema.
func newCommunityDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// seedDiscussion inserts a discussion with an explicit creation time.
func seedDiscussion(t *testing.T, db *gorm.DB, id, title, content, category string, created time.Time) *domain.Discussion {
	t.Helper()
	d := &domain.Discussion{
		ID:         id,
		Title:      title,
		Content:    content,
		Category:   category,
		AuthorID:   "author",
		AuthorName: "Snapshot Name",
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("seed discussion %s: %v", id, err)
	}
	return d
}

func countComments(ctx context.Context, db *gorm.DB, discussionID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Comment{}).Where("discussion_id = ?", discussionID).Count(&n).Error
	return n, err
}

func hasLiked(ctx context.Context, db *gorm.DB, discussionID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Like{}).
		Where("discussion_id = ? AND user_id = ?", discussionID, userID).
		Count(&n).Error
	return n > 0, err
}

func getPresence(ctx context.Context, db *gorm.DB, userID string) (*domain.Presence, error) {
	var p domain.Presence
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
