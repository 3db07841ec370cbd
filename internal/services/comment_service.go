// Package services – CommentService
//
// CommentService appends comments to discussions. Each comment is stored in
// the same transaction as the counter bump on its discussion, so
// comment_count always equals the number of comment rows and the
// discussion's answered flag is set by the first reply.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CommentService implements the comment use-cases.
type CommentService struct {
	DB *gorm.DB
}

// NewCommentService constructs a CommentService.
func NewCommentService(db *gorm.DB) *CommentService { return &CommentService{DB: db} }

// Add validates content and appends a comment to discussionID.
//
// The transaction opens with the counter update so SQLite takes its write
// lock before anything else; zero affected rows means the discussion does
// not exist and nothing is written.
func (s *CommentService) Add(ctx context.Context, actor Actor, discussionID, content string) (*domain.CommentView, error) {
	tr := otel.Tracer("services/CommentService")
	ctx, span := tr.Start(ctx, "Add",
		trace.WithAttributes(
			attribute.String("discussion.id", discussionID),
			attribute.String("user.id", actor.ID),
		),
	)
	defer span.End()

	if strings.TrimSpace(actor.ID) == "" {
		return nil, ErrUnauthorized
	}
	content, err := ValidateComment(content)
	if err != nil {
		return nil, err
	}
	name := authorName(ctx, s.DB, actor)

	var created *domain.Comment
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := repo.BumpCommentCount(ctx, tx, discussionID, now); err != nil {
			return err
		}
		c, err := repo.CreateComment(ctx, tx, discussionID, actor.ID, name, content, now)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDiscussionNotFound
		}
		return nil, storageErr(err)
	}
	commentsCreated.Inc()

	view := &domain.CommentView{
		ID:           created.ID,
		DiscussionID: created.DiscussionID,
		AuthorID:     created.AuthorID,
		AuthorName:   created.AuthorName,
		Content:      created.Content,
		CreatedAt:    created.CreatedAt,
	}
	if r, err := repo.GetReader(ctx, s.DB, actor.ID); err == nil {
		view.AuthorUsername = r.Username
	}
	return view, nil
}

// List returns the comments of discussionID in chronological order.
func (s *CommentService) List(ctx context.Context, discussionID string) ([]domain.CommentView, error) {
	tr := otel.Tracer("services/CommentService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.String("discussion.id", discussionID)),
	)
	defer span.End()

	ok, err := repo.DiscussionExists(ctx, s.DB, discussionID)
	if err != nil {
		return nil, storageErr(err)
	}
	if !ok {
		return nil, ErrDiscussionNotFound
	}
	out, err := repo.ListCommentViews(ctx, s.DB, discussionID)
	if err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// Get returns one comment of discussionID, used to replay idempotent creates.
func (s *CommentService) Get(ctx context.Context, discussionID, commentID string) (*domain.CommentView, error) {
	list, err := s.List(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == commentID {
			return &list[i], nil
		}
	}
	return nil, ErrCommentNotFound
}
