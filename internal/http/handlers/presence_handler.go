// Presence and stats HTTP handlers.
//
//   - GET      /community/users/online  (who's online)
//   - PUT/POST /community/users/online  (mark the caller online or offline)
//   - GET      /community/stats         (dashboard snapshot)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/http/middleware"
	"github.com/tbourn/library-community/internal/services"
	"github.com/tbourn/library-community/internal/utils"
)

// PresenceRequest is the body of a presence update. Pointer so an omitted
// flag is rejected rather than read as false.
type PresenceRequest struct {
	IsOnline *bool `json:"isOnline" form:"isOnline" binding:"required" example:"true"`
}

// PresenceResponse acknowledges a presence update.
type PresenceResponse struct {
	Success bool `json:"success" example:"true"`
}

// OnlineMembersResponse wraps the online member list.
type OnlineMembersResponse struct {
	Members []domain.OnlineMember `json:"members"`
}

// SetPresence godoc
// @ID          setPresence
// @Summary     Update the caller's presence
// @Description Marks the caller online or offline. POST accepts bodies sent by navigator.sendBeacon (text/plain JSON or form) and the token in access_token. Storage failures answer 202 with success=false.
// @Tags        Presence
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.PresenceRequest  true  "Presence"
//
// @Success     200  {object} handlers.PresenceResponse
// @Success     202  {object} handlers.PresenceResponse "Not recorded"
// @Failure     400  {object} handlers.ErrorResponse "isOnline missing"
// @Failure     401  {object} handlers.ErrorResponse "Authentication required"
// @Router      /community/users/online [put]
// @Router      /community/users/online [post]
func (h *Handlers) SetPresence(c *gin.Context) {
	var req PresenceRequest
	if err := bindPresence(c, &req); err != nil {
		failBind(c, err, "isOnline is required")
		return
	}

	err := h.presence.SetOnline(c.Request.Context(), actor(c), *req.IsOnline)
	switch {
	case err == nil:
		ok(c, http.StatusOK, PresenceResponse{Success: true})
	case errors.Is(err, services.ErrUnauthorized):
		failService(c, err, ErrCodeInternal)
	default:
		middleware.LoggerFrom(c).Warn().Err(err).Bool("online", *req.IsOnline).Msg("presence update failed")
		ok(c, http.StatusAccepted, PresenceResponse{Success: false})
	}
}

// bindPresence reads the body as JSON whatever the Content-Type, since
// beacons arrive as text/plain. Form posts are honoured as well.
func bindPresence(c *gin.Context, req *PresenceRequest) error {
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		return c.ShouldBind(req)
	default:
		return c.ShouldBindWith(req, binding.JSON)
	}
}

// ListOnline godoc
// @ID          listOnline
// @Summary     List online members
// @Tags        Presence
// @Produce     json
//
// @Param       limit  query  int  false  "Max members"  minimum(1) maximum(100) default(10)
//
// @Success     200  {object} handlers.OnlineMembersResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid limit"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /community/users/online [get]
func (h *Handlers) ListOnline(c *gin.Context) {
	limit, err := utils.PositiveInt(c.Query("limit"), 0)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "limit "+err.Error())
		return
	}
	members, err := h.presence.ListOnline(c.Request.Context(), limit)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	if members == nil {
		members = []domain.OnlineMember{}
	}
	ok(c, http.StatusOK, OnlineMembersResponse{Members: members})
}

// GetStats godoc
// @ID          getStats
// @Summary     Community statistics
// @Description Totals, the five most liked discussions and recently active members.
// @Tags        Stats
// @Produce     json
//
// @Success     200  {object} domain.CommunityStats
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /community/stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	st, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		failService(c, err, ErrCodeStatsFailed)
		return
	}
	ok(c, http.StatusOK, st)
}
