// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the
// community dashboard. Each function is context-aware and independent, so the
// stats service can run them concurrently.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/domain"
)

// MemberRole is the reader role counted as a community member.
const MemberRole = "reader"

// TotalDiscussions counts every discussion.
func TotalDiscussions(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Discussion{}).Count(&n).Error
	return n, err
}

// TotalComments counts every comment.
func TotalComments(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Comment{}).Count(&n).Error
	return n, err
}
