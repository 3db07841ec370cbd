// Package services – StatsService
//
// StatsService assembles the community dashboard: totals, the most liked
// discussions and the most recently active online members. The six
// aggregates are independent, so they run concurrently on a conc pool and
// the first failure cancels the rest. A short-lived cache can sit in front
// of the computation.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/repo"

	"go.opentelemetry.io/otel"
)

// StatsService computes community statistics.
type StatsService struct {
	DB    *gorm.DB
	Cache StatsCache // optional
}

// NewStatsService constructs a StatsService. cache may be nil.
func NewStatsService(db *gorm.DB, cache StatsCache) *StatsService {
	return &StatsService{DB: db, Cache: cache}
}

// Stats returns the current community snapshot, served from the cache when
// a fresh copy exists. Cache failures are logged and fall through to the
// database.
func (s *StatsService) Stats(ctx context.Context) (*domain.CommunityStats, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	if s.Cache != nil {
		cached, hit, err := s.Cache.Get(ctx)
		switch {
		case err != nil:
			statsCache.WithLabelValues("error").Inc()
			log.Warn().Err(err).Msg("stats cache read failed")
		case hit:
			statsCache.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			statsCache.WithLabelValues("miss").Inc()
		}
	}

	st, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, st); err != nil {
			log.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return st, nil
}

func (s *StatsService) compute(ctx context.Context) (*domain.CommunityStats, error) {
	st := &domain.CommunityStats{
		PopularDiscussions: []domain.DiscussionView{},
		ActiveMembers:      []domain.OnlineMember{},
	}

	// Each task writes a distinct field, so no locking is needed.
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) (err error) {
		st.TotalDiscussions, err = repo.TotalDiscussions(ctx, s.DB)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		st.TotalComments, err = repo.TotalComments(ctx, s.DB)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		st.TotalMembers, err = repo.CountActiveReaders(ctx, s.DB, repo.MemberRole)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		st.OnlineMembers, err = repo.CountOnline(ctx, s.DB)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		st.PopularDiscussions, err = repo.PopularDiscussions(ctx, s.DB, PopularLimit)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		st.ActiveMembers, err = repo.ListOnline(ctx, s.DB, ActiveMembersLimit)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, storageErr(err)
	}
	return st, nil
}
