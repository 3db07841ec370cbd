// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for comments.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/domain"
)

// BumpCommentCount adds one to comment_count, marks the discussion answered
// and refreshes updated_at in a single statement. It is the first write of
// the add-comment transaction. Returns ErrNotFound when no row matched.
func BumpCommentCount(ctx context.Context, db *gorm.DB, discussionID string, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Discussion{}).
		Where("id = ?", discussionID).
		UpdateColumns(map[string]any{
			"comment_count": gorm.Expr("comment_count + ?", 1),
			"is_answered":   true,
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateComment inserts a comment row.
func CreateComment(ctx context.Context, db *gorm.DB, discussionID, authorID, authorName, content string, now time.Time) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:           uuid.NewString(),
		DiscussionID: discussionID,
		AuthorID:     authorID,
		AuthorName:   authorName,
		Content:      content,
		CreatedAt:    now,
	}
	if err := db.WithContext(ctx).Omit("Discussion").Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListCommentViews returns the comments of a discussion in chronological
// order (created_at ASC, id ASC) with the author's current display name.
func ListCommentViews(ctx context.Context, db *gorm.DB, discussionID string) ([]domain.CommentView, error) {
	out := []domain.CommentView{}
	err := db.WithContext(ctx).Raw(`SELECT c.id, c.discussion_id, c.author_id,
	COALESCE(NULLIF(r.full_name, ''), c.author_name) AS author_name,
	COALESCE(r.username, '') AS author_username,
	c.content,
	c.created_at
FROM discussion_comments c
LEFT JOIN readers r ON r.id = c.author_id
WHERE c.discussion_id = ?
ORDER BY c.created_at ASC, c.id ASC`, discussionID).Scan(&out).Error
	return out, err
}
