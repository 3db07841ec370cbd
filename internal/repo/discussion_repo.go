// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for discussions.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business rules, only persistence and query composition.
//
// Error semantics:
//   - When a discussion is not found, functions return ErrNotFound.
//   - On DB errors the raw gorm error is propagated; the service layer wraps
//     it as a storage error.
//
// Read queries return domain.DiscussionView rows. Author names come from the
// readers table when the author is known there and fall back to the snapshot
// taken at creation. Like and comment counts are aggregated live from the
// child tables rather than read from the denormalised counters.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/domain"
)

// DiscussionFilter selects and orders a page of discussions.
type DiscussionFilter struct {
	Category string // empty means every category
	Search   string // case- and accent-insensitive substring of title or content
	Tab      string // domain.TabRecent|TabPopular|TabUnanswered
	Viewer   string // user id for the user_liked flag; empty for anonymous
	Offset   int
	Limit    int
}

const discussionViewSelect = `SELECT d.id, d.title, d.content, d.category, d.author_id,
	COALESCE(NULLIF(r.full_name, ''), d.author_name) AS author_name,
	COALESCE(r.username, '') AS author_username,
	(SELECT COUNT(*) FROM discussion_likes l WHERE l.discussion_id = d.id) AS likes,
	(SELECT COUNT(*) FROM discussion_comments c WHERE c.discussion_id = d.id) AS comments_count,
	d.view_count AS views,
	d.is_answered,
	EXISTS (SELECT 1 FROM discussion_likes vl WHERE vl.discussion_id = d.id AND vl.user_id = ?) AS user_liked,
	d.created_at,
	d.updated_at
FROM discussions d
LEFT JOIN readers r ON r.id = d.author_id`

// CreateDiscussion inserts a new discussion with zeroed counters.
func CreateDiscussion(ctx context.Context, db *gorm.DB, authorID, authorName, title, content, category string) (*domain.Discussion, error) {
	now := time.Now().UTC()
	d := &domain.Discussion{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		Category:   category,
		AuthorID:   authorID,
		AuthorName: authorName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// GetDiscussion fetches the raw discussion row.
func GetDiscussion(ctx context.Context, db *gorm.DB, id string) (*domain.Discussion, error) {
	var d domain.Discussion
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// DiscussionExists reports whether a discussion with id exists.
func DiscussionExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Discussion{}).Where("id = ?", id).Limit(1).Count(&n).Error
	return n > 0, err
}

// IncrementViews adds one to view_count with a single delta update.
// updated_at is left untouched. Returns ErrNotFound when no row matched.
func IncrementViews(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Discussion{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDiscussionView returns one enriched discussion or ErrNotFound.
func GetDiscussionView(ctx context.Context, db *gorm.DB, id, viewer string) (*domain.DiscussionView, error) {
	var out []domain.DiscussionView
	err := db.WithContext(ctx).
		Raw(discussionViewSelect+" WHERE d.id = ?", viewer, id).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// CountDiscussions returns how many discussions match f (ignoring paging).
func CountDiscussions(ctx context.Context, db *gorm.DB, f DiscussionFilter) (int64, error) {
	where, args := discussionWhere(f)
	var total int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM discussions d"+where, args...).
		Scan(&total).Error
	return total, err
}

// ListDiscussionViews returns one page of enriched discussions matching f.
// Ties on the primary sort key break on created_at then id, both descending,
// so consecutive pages never overlap.
func ListDiscussionViews(ctx context.Context, db *gorm.DB, f DiscussionFilter) ([]domain.DiscussionView, error) {
	where, args := discussionWhere(f)
	q := discussionViewSelect + where + " ORDER BY " + discussionOrder(f.Tab) + " LIMIT ? OFFSET ?"

	all := make([]any, 0, len(args)+3)
	all = append(all, f.Viewer)
	all = append(all, args...)
	all = append(all, f.Limit, f.Offset)

	out := []domain.DiscussionView{}
	err := db.WithContext(ctx).Raw(q, all...).Scan(&out).Error
	return out, err
}

// PopularDiscussions returns the top n discussions by live like count.
func PopularDiscussions(ctx context.Context, db *gorm.DB, n int) ([]domain.DiscussionView, error) {
	return ListDiscussionViews(ctx, db, DiscussionFilter{Tab: domain.TabPopular, Limit: n})
}

func discussionWhere(f DiscussionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if c := strings.TrimSpace(f.Category); c != "" && c != domain.CategoryAll {
		conds = append(conds, "d.category = ?")
		args = append(args, c)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		conds = append(conds, `d.search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(domain.SearchKey(s))+"%")
	}
	if f.Tab == domain.TabUnanswered {
		conds = append(conds, "d.is_answered = ?")
		args = append(args, false)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func discussionOrder(tab string) string {
	if tab == domain.TabPopular {
		return "likes DESC, d.created_at DESC, d.id DESC"
	}
	return "d.created_at DESC, d.id DESC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
