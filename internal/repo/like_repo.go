// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the like ledger primitives used by the
// toggle transaction in services.LikeService.
//
// The discussion_likes table is the source of truth. like_count on the
// discussion is only ever moved by one in the same transaction as the row
// that justifies it, and never below zero.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/library-community/internal/domain"
)

// DeleteLike removes the (discussion, user) pair and reports whether a row
// was actually removed.
func DeleteLike(ctx context.Context, db *gorm.DB, discussionID, userID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("discussion_id = ? AND user_id = ?", discussionID, userID).
		Delete(&domain.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// InsertLike adds the (discussion, user) pair unless it already exists.
// It reports whether a new row was written; a concurrent duplicate is not an
// error.
func InsertLike(ctx context.Context, db *gorm.DB, discussionID, userID string, now time.Time) (bool, error) {
	l := &domain.Like{
		ID:           uuid.NewString(),
		DiscussionID: discussionID,
		UserID:       userID,
		CreatedAt:    now,
	}
	res := db.WithContext(ctx).
		Omit("Discussion").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "discussion_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(l)
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncrementLikes adds one to like_count.
func IncrementLikes(ctx context.Context, db *gorm.DB, discussionID string) error {
	return db.WithContext(ctx).
		Model(&domain.Discussion{}).
		Where("id = ?", discussionID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
}

// DecrementLikes subtracts one from like_count, clamped at zero.
func DecrementLikes(ctx context.Context, db *gorm.DB, discussionID string) error {
	return db.WithContext(ctx).
		Model(&domain.Discussion{}).
		Where("id = ?", discussionID).
		UpdateColumn("like_count", gorm.Expr("CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END")).Error
}

// LikeCount returns the live number of likes for a discussion.
func LikeCount(ctx context.Context, db *gorm.DB, discussionID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("discussion_id = ?", discussionID).
		Count(&n).Error
	return n, err
}
