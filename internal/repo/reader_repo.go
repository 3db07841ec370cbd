// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read access to the identity store plus
// the upsert used by the seed command.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/library-community/internal/domain"
)

// GetReader fetches a reader by id or returns ErrNotFound. Most authors are
// unknown to the local store, so a miss is not logged.
func GetReader(ctx context.Context, db *gorm.DB, id string) (*domain.Reader, error) {
	var r domain.Reader
	res := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&r)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &r, nil
}

// CountActiveReaders counts active readers holding role.
func CountActiveReaders(ctx context.Context, db *gorm.DB, role string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Reader{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&n).Error
	return n, err
}

// UpsertReader inserts r or refreshes the existing row with the same id.
func UpsertReader(ctx context.Context, db *gorm.DB, r *domain.Reader) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "full_name", "role", "is_active"}),
		}).
		Create(r).Error
}
