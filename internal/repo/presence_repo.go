// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for member presence.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/library-community/internal/domain"
)

// UpsertPresence creates or overwrites the presence row for userID.
// Last write wins.
func UpsertPresence(ctx context.Context, db *gorm.DB, userID, displayName string, online bool, now time.Time) error {
	p := &domain.Presence{
		UserID:      userID,
		DisplayName: displayName,
		IsOnline:    online,
		UpdatedAt:   now,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "is_online", "updated_at"}),
		}).
		Create(p).Error
}

// ListOnline returns online members, most recently updated first.
func ListOnline(ctx context.Context, db *gorm.DB, limit int) ([]domain.OnlineMember, error) {
	out := []domain.OnlineMember{}
	err := db.WithContext(ctx).Raw(`SELECT p.user_id,
	COALESCE(NULLIF(r.full_name, ''), p.display_name) AS full_name,
	p.is_online,
	p.updated_at AS last_seen
FROM member_presence p
LEFT JOIN readers r ON r.id = p.user_id
WHERE p.is_online = ?
ORDER BY p.updated_at DESC, p.user_id ASC
LIMIT ?`, true, limit).Scan(&out).Error
	return out, err
}

// CountOnline returns the number of members currently marked online.
func CountOnline(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Presence{}).Where("is_online = ?", true).Count(&n).Error
	return n, err
}

// ExpirePresence marks online rows last updated before cutoff as offline and
// returns how many rows changed. updated_at keeps the last-seen time.
func ExpirePresence(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Presence{}).
		Where("is_online = ? AND updated_at < ?", true, cutoff).
		UpdateColumn("is_online", false)
	return res.RowsAffected, res.Error
}
