// Package services – PresenceService
//
// PresenceService keeps best-effort "who's online" state. Clients report
// lifecycle events (page load, visibility change, unload); each report is an
// idempotent upsert, last write wins. When a TTL is configured a background
// sweeper marks members offline once their last report is older than the TTL,
// which covers clients that never sent their unload event.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PresenceService implements the presence use-cases.
type PresenceService struct {
	DB *gorm.DB

	// TTL after which an online member with no update is considered gone.
	// Zero disables expiry.
	TTL time.Duration
}

// NewPresenceService constructs a PresenceService.
func NewPresenceService(db *gorm.DB, ttl time.Duration) *PresenceService {
	return &PresenceService{DB: db, TTL: ttl}
}

// SetOnline records whether actor is online right now.
func (s *PresenceService) SetOnline(ctx context.Context, actor Actor, online bool) error {
	tr := otel.Tracer("services/PresenceService")
	ctx, span := tr.Start(ctx, "SetOnline",
		trace.WithAttributes(
			attribute.String("user.id", actor.ID),
			attribute.Bool("online", online),
		),
	)
	defer span.End()

	state := "offline"
	if online {
		state = "online"
	}
	if strings.TrimSpace(actor.ID) == "" {
		return ErrUnauthorized
	}

	name := authorName(ctx, s.DB, actor)
	if err := repo.UpsertPresence(ctx, s.DB, actor.ID, name, online, time.Now().UTC()); err != nil {
		presenceUpdates.WithLabelValues(state, "error").Inc()
		return storageErr(err)
	}
	presenceUpdates.WithLabelValues(state, "ok").Inc()
	return nil
}

// ListOnline returns up to limit online members, most recently active first.
// Zero selects DefaultOnlineLimit.
func (s *PresenceService) ListOnline(ctx context.Context, limit int) ([]domain.OnlineMember, error) {
	if limit == 0 {
		limit = DefaultOnlineLimit
	}
	if limit < 1 || limit > MaxOnlineLimit {
		return nil, ErrInvalidLimit
	}
	out, err := repo.ListOnline(ctx, s.DB, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// ExpireStale marks members offline whose last update is older than
// olderThan and returns how many were changed.
func (s *PresenceService) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	n, err := repo.ExpirePresence(ctx, s.DB, cutoff)
	if err != nil {
		return 0, storageErr(err)
	}
	if n > 0 {
		presenceExpired.Add(float64(n))
	}
	return n, nil
}

// RunSweeper calls ExpireStale every interval until ctx is cancelled. It
// returns immediately when TTL is zero.
func (s *PresenceService) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.TTL <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.ExpireStale(ctx, s.TTL)
			if err != nil {
				log.Warn().Err(err).Msg("presence sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("expired", n).Msg("presence sweep")
			}
		}
	}
}
