// Package services defines the business logic for discussions, comments,
// likes, presence and community statistics. This file centralizes the
// service-level error values so that they can be consistently returned by
// service methods and checked by callers with errors.Is.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors below wrap one of these so handlers can branch
// on the kind while still showing the specific message.
var (
	// ErrValidation marks user input that breaks a content rule.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidArgument marks malformed query or paging parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDiscussionNotFound indicates that the discussion does not exist.
	ErrDiscussionNotFound = errors.New("discussion not found")

	// ErrCommentNotFound indicates that the comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrUnauthorized is returned when a write is attempted without a
	// verified user identity.
	ErrUnauthorized = errors.New("authentication required")

	// ErrStorage wraps every unexpected persistence failure.
	ErrStorage = errors.New("storage failure")
)

// Validation errors.
var (
	ErrTitleLength     = fmt.Errorf("%w: title must be between %d and %d characters", ErrValidation, TitleMinRunes, TitleMaxRunes)
	ErrContentLength   = fmt.Errorf("%w: content must be between %d and %d characters", ErrValidation, ContentMinRunes, ContentMaxRunes)
	ErrCommentLength   = fmt.Errorf("%w: comment must be between %d and %d characters", ErrValidation, CommentMinRunes, CommentMaxRunes)
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrValidation)
)

// Invalid argument errors.
var (
	ErrInvalidPage     = fmt.Errorf("%w: page must be >= 1", ErrInvalidArgument)
	ErrPageOutOfRange  = fmt.Errorf("%w: page is out of range", ErrInvalidPage)
	ErrInvalidPageSize = fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, MaxPageSize)
	ErrInvalidTab      = fmt.Errorf("%w: tab must be one of recent, popular, unanswered", ErrInvalidArgument)
	ErrInvalidLimit    = fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, MaxOnlineLimit)
)

// storageErr tags err as a storage failure while keeping the cause.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
