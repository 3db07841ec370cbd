// Discussion HTTP handlers.
//
//   - GET  /community/discussions       (filtered, paginated list)
//   - GET  /community/discussions/{id}  (detail with comments; counts a view)
//   - POST /community/discussions       (create; Idempotency-Key aware)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/http/middleware"
	"github.com/tbourn/library-community/internal/services"
	"github.com/tbourn/library-community/internal/utils"
)

//
// DTOs
//

// CreateDiscussionRequest is the JSON payload for a new discussion.
type CreateDiscussionRequest struct {
	Title    string `json:"title" binding:"required" example:"Best sci-fi books 2024"`
	Content  string `json:"content" binding:"required" example:"Which science fiction novels published this year would you recommend?"`
	Category string `json:"category" example:"ficcao"`
}

// DiscussionDetailResponse is a discussion with its comments.
type DiscussionDetailResponse struct {
	Discussion *domain.DiscussionView `json:"discussion"`
	Comments   []domain.CommentView   `json:"comments"`
}

//
// Handlers
//

// ListDiscussions godoc
// @ID          listDiscussions
// @Summary     List discussions
// @Description Filtered and paginated discussions. tab=popular orders by likes; tab=unanswered keeps discussions without comments.
// @Tags        Discussions
// @Produce     json
//
// @Param       page      query  int     false "Page number"          minimum(1) default(1)
// @Param       limit     query  int     false "Items per page"       minimum(1) maximum(100) default(8)
// @Param       category  query  string  false "Category tag or all"  example(ficcao)
// @Param       tab       query  string  false "recent, popular or unanswered" Enums(recent, popular, unanswered)
// @Param       search    query  string  false "Case-insensitive text in title or content"
//
// @Success     200  {object} services.DiscussionPage
// @Failure     400  {object} handlers.ErrorResponse "Invalid paging or tab"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /community/discussions [get]
func (h *Handlers) ListDiscussions(c *gin.Context) {
	page, err := utils.PositiveInt(c.Query("page"), 1)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "page "+err.Error())
		return
	}
	// 0 lets the service apply its configured default.
	limit, err := utils.PositiveInt(c.Query("limit"), 0)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "limit "+err.Error())
		return
	}

	res, err := h.discussions.List(c.Request.Context(), services.ListParams{
		Page:     page,
		PageSize: limit,
		Category: c.Query("category"),
		Tab:      c.Query("tab"),
		Search:   c.Query("search"),
		Viewer:   middleware.UserID(c),
	})
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, res)
}

// GetDiscussion godoc
// @ID          getDiscussion
// @Summary     Get a discussion
// @Description Returns the discussion and its comments in chronological order. Each call counts one view.
// @Tags        Discussions
// @Produce     json
//
// @Param       id   path  string  true  "Discussion ID"  format(uuid)
//
// @Success     200  {object} handlers.DiscussionDetailResponse
// @Failure     404  {object} handlers.ErrorResponse "Discussion not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /community/discussions/{id} [get]
func (h *Handlers) GetDiscussion(c *gin.Context) {
	d, comments, err := h.discussions.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, DiscussionDetailResponse{Discussion: d, Comments: comments})
}

// CreateDiscussion godoc
// @ID          createDiscussion
// @Summary     Start a discussion
// @Description Title 10-100 characters, content 20-1000 characters. Retries with the same Idempotency-Key return the first discussion.
// @Tags        Discussions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Key for safe retries"
// @Param       body             body    handlers.CreateDiscussionRequest  true  "Discussion"
//
// @Success     201  {object} domain.DiscussionView
// @Success     200  {object} domain.DiscussionView "Replayed"
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Authentication required"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /community/discussions [post]
func (h *Handlers) CreateDiscussion(c *gin.Context) {
	ctx := c.Request.Context()
	who := actor(c)

	if id, has := middleware.ReplayResourceID(c); has {
		if prev, err := h.discussions.View(ctx, id, who.ID); err == nil {
			replayed(c, prev)
			return
		}
	}

	var req CreateDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err, "title and content are required")
		return
	}

	d, err := h.discussions.Create(ctx, who, req.Title, req.Content, req.Category)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	h.remember(c, d.ID, http.StatusCreated)
	ok(c, http.StatusCreated, d)
}
