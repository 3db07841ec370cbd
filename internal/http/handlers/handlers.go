// Package handlers implements the community HTTP endpoints.
//
// Handlers are transport-thin: they parse and bind input, resolve the
// verified reader from the auth middleware, call the application services
// and translate results and service errors into HTTP responses.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/http/middleware"
	"github.com/tbourn/library-community/internal/services"
)

//
// Service contracts (context-aware)
//

// DiscussionService lists, reads and creates discussions.
type DiscussionService interface {
	List(ctx context.Context, p services.ListParams) (*services.DiscussionPage, error)
	// Get counts a view and returns the discussion with its comments.
	Get(ctx context.Context, id, viewer string) (*domain.DiscussionView, []domain.CommentView, error)
	// View returns the discussion without counting a view.
	View(ctx context.Context, id, viewer string) (*domain.DiscussionView, error)
	Create(ctx context.Context, actor services.Actor, title, content, category string) (*domain.DiscussionView, error)
}

// CommentService appends and reads comments.
type CommentService interface {
	Add(ctx context.Context, actor services.Actor, discussionID, content string) (*domain.CommentView, error)
	List(ctx context.Context, discussionID string) ([]domain.CommentView, error)
	Get(ctx context.Context, discussionID, commentID string) (*domain.CommentView, error)
}

// LikeService toggles likes.
type LikeService interface {
	Toggle(ctx context.Context, discussionID, userID string) (*services.LikeResult, error)
}

// PresenceService records and lists online members.
type PresenceService interface {
	SetOnline(ctx context.Context, actor services.Actor, online bool) error
	ListOnline(ctx context.Context, limit int) ([]domain.OnlineMember, error)
}

// StatsService returns the community dashboard.
type StatsService interface {
	Stats(ctx context.Context) (*domain.CommunityStats, error)
}

// IdempotencyRecorder remembers which resource a keyed create produced.
type IdempotencyRecorder interface {
	Remember(ctx context.Context, userID, scope, key, resourceID string, status int) error
}

//
// Handler wiring
//

// Deps are the services behind the handlers. Idempotency may be nil.
type Deps struct {
	Discussions DiscussionService
	Comments    CommentService
	Likes       LikeService
	Presence    PresenceService
	Stats       StatsService
	Idempotency IdempotencyRecorder
}

// Handlers groups the community endpoints.
type Handlers struct {
	discussions DiscussionService
	comments    CommentService
	likes       LikeService
	presence    PresenceService
	stats       StatsService
	idem        IdempotencyRecorder
}

// New constructs Handlers bound to d.
func New(d Deps) *Handlers {
	return &Handlers{
		discussions: d.Discussions,
		comments:    d.Comments,
		likes:       d.Likes,
		presence:    d.Presence,
		stats:       d.Stats,
		idem:        d.Idempotency,
	}
}

// actor returns the verified reader set by middleware.Auth. Anonymous
// requests yield a zero Actor, which write services reject.
func actor(c *gin.Context) services.Actor {
	return services.Actor{ID: middleware.UserID(c), Name: middleware.UserName(c)}
}

// remember records a created resource under the request's Idempotency-Key.
// Failures only cost a future replay, so they are logged and dropped.
func (h *Handlers) remember(c *gin.Context, resourceID string, status int) {
	key, scope, has := middleware.GetIdempotencyKey(c)
	if !has || h.idem == nil {
		return
	}
	if err := h.idem.Remember(c.Request.Context(), middleware.UserID(c), scope, key, resourceID, status); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency record failed")
	}
}
