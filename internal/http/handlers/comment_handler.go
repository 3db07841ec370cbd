// Comment and like HTTP handlers.
//
//   - GET  /community/discussions/{id}/comments
//   - POST /community/discussions/{id}/comments  (Idempotency-Key aware)
//   - POST /community/discussions/{id}/like      (toggle)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/http/middleware"
)

// AddCommentRequest is the JSON payload for a new comment.
type AddCommentRequest struct {
	Content string `json:"content" binding:"required" example:"Dune is still the one to beat."`
}

// ListCommentsResponse wraps the comments of a discussion.
type ListCommentsResponse struct {
	Comments []domain.CommentView `json:"comments"`
}

// ListComments godoc
// @ID          listComments
// @Summary     List comments
// @Description Comments of a discussion, oldest first.
// @Tags        Comments
// @Produce     json
//
// @Param       id   path  string  true  "Discussion ID"  format(uuid)
//
// @Success     200  {object} handlers.ListCommentsResponse
// @Failure     404  {object} handlers.ErrorResponse "Discussion not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /community/discussions/{id}/comments [get]
func (h *Handlers) ListComments(c *gin.Context) {
	list, err := h.comments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListCommentsResponse{Comments: list})
}

// AddComment godoc
// @ID          addComment
// @Summary     Reply to a discussion
// @Description Content 1-500 characters. The first reply marks the discussion answered.
// @Tags        Comments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id               path    string  true  "Discussion ID"  format(uuid)
// @Param       Idempotency-Key  header  string  false "Key for safe retries"
// @Param       body             body    handlers.AddCommentRequest  true  "Comment"
//
// @Success     201  {object} domain.CommentView
// @Success     200  {object} domain.CommentView "Replayed"
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Authentication required"
// @Failure     404  {object} handlers.ErrorResponse "Discussion not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /community/discussions/{id}/comments [post]
func (h *Handlers) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	discussionID := c.Param("id")

	if id, has := middleware.ReplayResourceID(c); has {
		if prev, err := h.comments.Get(ctx, discussionID, id); err == nil {
			replayed(c, prev)
			return
		}
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err, "content is required")
		return
	}

	cm, err := h.comments.Add(ctx, actor(c), discussionID, req.Content)
	if err != nil {
		failService(c, err, ErrCodeCommentFailed)
		return
	}
	h.remember(c, cm.ID, http.StatusCreated)
	ok(c, http.StatusCreated, cm)
}

// ToggleLike godoc
// @ID          toggleLike
// @Summary     Like or unlike a discussion
// @Description Flips the caller's like. Returns the new state, a toast message (liked or unliked) and the like count.
// @Tags        Likes
// @Produce     json
// @Security    BearerAuth
//
// @Param       id   path  string  true  "Discussion ID"  format(uuid)
//
// @Success     200  {object} services.LikeResult
// @Failure     401  {object} handlers.ErrorResponse "Authentication required"
// @Failure     404  {object} handlers.ErrorResponse "Discussion not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /community/discussions/{id}/like [post]
func (h *Handlers) ToggleLike(c *gin.Context) {
	res, err := h.likes.Toggle(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		failService(c, err, ErrCodeLikeFailed)
		return
	}
	ok(c, http.StatusOK, res)
}
