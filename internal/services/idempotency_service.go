package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/library-community/internal/repo"
)

// IdempotencyService remembers which resource a create request with an
// Idempotency-Key produced, so a retried request can be answered with the
// original resource instead of inserting a duplicate.
type IdempotencyService struct {
	DB  *gorm.DB
	TTL time.Duration
}

// NewIdempotencyService constructs an IdempotencyService.
func NewIdempotencyService(db *gorm.DB, ttl time.Duration) *IdempotencyService {
	return &IdempotencyService{DB: db, TTL: ttl}
}

// Lookup returns the resource id recorded for (userID, scope, key).
func (s *IdempotencyService) Lookup(ctx context.Context, userID, scope, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, nil
	}
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr(err)
	}
	return rec.ResourceID, true, nil
}

// Remember records resourceID for (userID, scope, key). A concurrent record
// for the same tuple wins and is not an error.
func (s *IdempotencyService) Remember(ctx context.Context, userID, scope, key, resourceID string, status int) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, userID, scope, key, resourceID, status, ttl)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		return storageErr(err)
	}
	return nil
}

// Purge deletes records that expired before now.
func (s *IdempotencyService) Purge(ctx context.Context, now time.Time) (int64, error) {
	n, err := repo.PurgeExpiredIdempotency(ctx, s.DB, now.UTC())
	if err != nil {
		return 0, storageErr(err)
	}
	return n, nil
}

// RunPurger calls Purge every interval until ctx is cancelled.
func (s *IdempotencyService) RunPurger(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := s.Purge(ctx, now)
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("idempotency purge")
			}
		}
	}
}
