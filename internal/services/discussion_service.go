// Package services – DiscussionService
//
// This file implements DiscussionService, which owns the discussion board:
// filtered and paginated listing, detail reads with view counting, and the
// creation of new threads. Inputs are validated here; the repo package only
// composes queries.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// carry the discussion id, viewer and listing parameters where applicable.
package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxListOffset bounds (page-1)*pageSize so the offset never overflows.
const maxListOffset = math.MaxInt32

// ListParams describes one page of the discussion list. Zero Page and
// PageSize mean "use the default"; negative values are rejected.
type ListParams struct {
	Page     int
	PageSize int
	Category string
	Tab      string
	Search   string
	Viewer   string
}

// DiscussionPage is a page of discussions with pagination metadata.
type DiscussionPage struct {
	Discussions []domain.DiscussionView `json:"discussions"`
	Total       int64                   `json:"total"`
	Page        int                     `json:"page"`
	TotalPages  int                     `json:"totalPages"`
}

// DiscussionService coordinates discussion persistence and queries.
type DiscussionService struct {
	DB *gorm.DB

	// DefaultPageSize applies when ListParams.PageSize is zero.
	DefaultPageSize int
}

// NewDiscussionService constructs a DiscussionService.
func NewDiscussionService(db *gorm.DB, defaultPageSize int) *DiscussionService {
	return &DiscussionService{DB: db, DefaultPageSize: defaultPageSize}
}

// List returns the page of discussions selected by p.
//
// The predicate is category AND search AND (unanswered tab only: not answered).
// Ordering depends on the tab: recent and unanswered sort by creation time,
// popular by live like count. totalPages is ceil(total/pageSize).
func (s *DiscussionService) List(ctx context.Context, p ListParams) (*DiscussionPage, error) {
	tr := otel.Tracer("services/DiscussionService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.Int("page", p.Page),
			attribute.Int("page_size", p.PageSize),
			attribute.String("category", p.Category),
			attribute.String("tab", p.Tab),
		),
	)
	defer span.End()

	page, size, tab, err := s.normalizeList(p)
	if err != nil {
		return nil, err
	}

	f := repo.DiscussionFilter{
		Category: p.Category,
		Search:   p.Search,
		Tab:      tab,
		Viewer:   p.Viewer,
		Offset:   (page - 1) * size,
		Limit:    size,
	}

	total, err := repo.CountDiscussions(ctx, s.DB, f)
	if err != nil {
		return nil, storageErr(err)
	}
	items := []domain.DiscussionView{}
	if total > int64(f.Offset) {
		items, err = repo.ListDiscussionViews(ctx, s.DB, f)
		if err != nil {
			return nil, storageErr(err)
		}
	}

	return &DiscussionPage{
		Discussions: items,
		Total:       total,
		Page:        page,
		TotalPages:  int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func (s *DiscussionService) normalizeList(p ListParams) (page, size int, tab string, err error) {
	page = p.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return 0, 0, "", ErrInvalidPage
	}

	size = p.PageSize
	if size == 0 {
		size = s.DefaultPageSize
		if size <= 0 {
			size = DefaultPageSize
		}
	}
	if size < 1 || size > MaxPageSize {
		return 0, 0, "", ErrInvalidPageSize
	}
	if page-1 > maxListOffset/size {
		return 0, 0, "", ErrPageOutOfRange
	}

	tab = strings.ToLower(strings.TrimSpace(p.Tab))
	switch tab {
	case "":
		tab = domain.TabRecent
	case domain.TabRecent, domain.TabPopular, domain.TabUnanswered:
	default:
		return 0, 0, "", ErrInvalidTab
	}
	return page, size, tab, nil
}

// Get records one view of the discussion and returns it with its comments.
// The view increment is a single delta update, so concurrent readers never
// lose counts.
func (s *DiscussionService) Get(ctx context.Context, id, viewer string) (*domain.DiscussionView, []domain.CommentView, error) {
	tr := otel.Tracer("services/DiscussionService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("discussion.id", id)),
	)
	defer span.End()

	if err := repo.IncrementViews(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrDiscussionNotFound
		}
		return nil, nil, storageErr(err)
	}
	discussionViews.Inc()

	d, err := s.View(ctx, id, viewer)
	if err != nil {
		return nil, nil, err
	}
	comments, err := repo.ListCommentViews(ctx, s.DB, id)
	if err != nil {
		return nil, nil, storageErr(err)
	}
	return d, comments, nil
}

// View returns the enriched discussion without counting a view.
func (s *DiscussionService) View(ctx context.Context, id, viewer string) (*domain.DiscussionView, error) {
	d, err := repo.GetDiscussionView(ctx, s.DB, id, viewer)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDiscussionNotFound
		}
		return nil, storageErr(err)
	}
	return d, nil
}

// Create validates and stores a new discussion authored by actor. Counters
// start at zero and the discussion starts unanswered.
func (s *DiscussionService) Create(ctx context.Context, actor Actor, title, content, category string) (*domain.DiscussionView, error) {
	tr := otel.Tracer("services/DiscussionService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("user.id", actor.ID),
			attribute.String("category", category),
		),
	)
	defer span.End()

	if strings.TrimSpace(actor.ID) == "" {
		return nil, ErrUnauthorized
	}
	title, content, category, err := ValidateDiscussion(title, content, category)
	if err != nil {
		return nil, err
	}

	name := authorName(ctx, s.DB, actor)
	d, err := repo.CreateDiscussion(ctx, s.DB, actor.ID, name, title, content, category)
	if err != nil {
		return nil, storageErr(err)
	}
	discussionsCreated.Inc()
	return s.View(ctx, d.ID, actor.ID)
}

// authorName picks the display name to snapshot on new rows: the name from
// the verified identity, else the reader's full name, else the user id.
func authorName(ctx context.Context, db *gorm.DB, actor Actor) string {
	if n := strings.TrimSpace(actor.Name); n != "" {
		return n
	}
	if r, err := repo.GetReader(ctx, db, actor.ID); err == nil && strings.TrimSpace(r.FullName) != "" {
		return r.FullName
	}
	return actor.ID
}
