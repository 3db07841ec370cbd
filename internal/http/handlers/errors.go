// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are stable, snake_case strings returned in ErrorResponse.code next to
// the HTTP status. Clients branch on the code; the message is for display.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "validation_failed",
//	  "message": "validation failed: title must be between 10 and 100 characters"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/library-community/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeValidation       = "validation_failed"
	ErrCodeInvalidArgument  = "invalid_argument"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeCommentFailed    = "comment_failed"
	ErrCodeLikeFailed       = "like_failed"
	ErrCodeStatsFailed      = "stats_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// failService maps a service error onto the HTTP error envelope. Storage and
// unknown errors become 500 with fallbackCode and a generic message; the
// cause is only logged.
func failService(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, services.ErrInvalidArgument):
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, services.ErrDiscussionNotFound), errors.Is(err, services.ErrCommentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, fallbackCode, "internal error")
	}
}

// failBind answers a binding error. A missing required field is a validation
// failure reported with msg; a body that does not decode is a bad request.
func failBind(c *gin.Context, err error, msg string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fail(c, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed request body")
}
