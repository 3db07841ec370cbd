// Package services – LikeService
//
// LikeService toggles a reader's like on a discussion. The like row and the
// discussion's like_count move together in one transaction:
//
//  1. delete the (discussion, user) pair; if a row went away, decrement the
//     counter (never below zero) and report "unliked";
//  2. otherwise check the discussion exists, insert the pair with ON CONFLICT
//     DO NOTHING and increment the counter only when a row was written.
//
// A no-op insert means a concurrent request from the same reader already
// liked the discussion; the call still reports liked=true.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Toast messages returned with a toggle result.
const (
	MsgLiked   = "liked"
	MsgUnliked = "unliked"
)

// LikeResult is the outcome of a toggle.
type LikeResult struct {
	Liked   bool   `json:"liked"`
	Message string `json:"message"`
	Likes   int64  `json:"likes"`
}

// LikeService implements the like ledger use-cases.
type LikeService struct {
	DB *gorm.DB
}

// NewLikeService constructs a LikeService.
func NewLikeService(db *gorm.DB) *LikeService { return &LikeService{DB: db} }

// Toggle flips userID's like on discussionID and returns the new state with
// the live like count.
func (s *LikeService) Toggle(ctx context.Context, discussionID, userID string) (*LikeResult, error) {
	tr := otel.Tracer("services/LikeService")
	ctx, span := tr.Start(ctx, "Toggle",
		trace.WithAttributes(
			attribute.String("discussion.id", discussionID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}

	res := &LikeResult{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := repo.DeleteLike(ctx, tx, discussionID, userID)
		if err != nil {
			return err
		}
		if removed {
			if err := repo.DecrementLikes(ctx, tx, discussionID); err != nil {
				return err
			}
			res.Liked, res.Message = false, MsgUnliked
		} else {
			exists, err := repo.DiscussionExists(ctx, tx, discussionID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrDiscussionNotFound
			}
			inserted, err := repo.InsertLike(ctx, tx, discussionID, userID, time.Now().UTC())
			if err != nil {
				return err
			}
			if inserted {
				if err := repo.IncrementLikes(ctx, tx, discussionID); err != nil {
					return err
				}
			}
			res.Liked, res.Message = true, MsgLiked
		}
		n, err := repo.LikeCount(ctx, tx, discussionID)
		if err != nil {
			return err
		}
		res.Likes = n
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDiscussionNotFound) {
			return nil, err
		}
		return nil, storageErr(err)
	}

	likeToggles.WithLabelValues(res.Message).Inc()
	return res, nil
}
