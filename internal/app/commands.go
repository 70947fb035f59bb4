package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"flexinsights/internal/adapters/observability"
	"flexinsights/internal/domain"
)

// cache key holding the full review list
const allReviewsKey = "reviews:all"

// IngestionService owns every write to the review store. Writes are
// serialized through mu, so concurrent approval edits resolve as
// last-write-wins in lock order. A QueryService built by NewServices
// fills its cache under the same lock.
type IngestionService struct {
	mu    *sync.RWMutex
	repo  domain.ReviewRepository
	cache domain.Cache
}

func NewIngestionService(r domain.ReviewRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{mu: &sync.RWMutex{}, repo: r, cache: cache}
}

// Ingest pulls one batch from src and replaces every record it names.
// Re-ingesting a record resets its approval.
func (s *IngestionService) Ingest(ctx context.Context, src domain.FeedSource) (int, error) {
	in, err := src.FetchReviews(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch feed: %w", err)
	}
	rs, err := mapFeed(in)
	if err != nil {
		return 0, err
	}
	if err := s.BulkUpsert(ctx, rs); err != nil {
		return 0, err
	}
	return len(rs), nil
}

// BulkUpsert writes rs with approval forced off.
func (s *IngestionService) BulkUpsert(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.UpsertReviews(ctx, rs); err != nil {
		// IMPORTANT: do not swallow this; surface so we know inserts failed
		return fmt.Errorf("upsert %d reviews: %w", len(rs), err)
	}
	observability.ObserveIngested(len(rs))
	s.invalidate(ctx)
	return nil
}

// SetApproval flips the approval flag of one review. Unknown ids return
// domain.ErrNotFound.
func (s *IngestionService) SetApproval(ctx context.Context, id int64, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setApprovalLocked(ctx, id, approved)
}

// ApplyApprovals applies each change on its own. Unknown ids are reported in
// the result instead of aborting the batch; any other failure aborts.
func (s *IngestionService) ApplyApprovals(ctx context.Context, changes []domain.ApprovalChange) (domain.ApprovalResult, error) {
	res := domain.ApprovalResult{Missing: []int64{}}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range changes {
		err := s.setApprovalLocked(ctx, c.ID, c.Approved)
		switch {
		case err == nil:
			res.Updated++
		case errors.Is(err, domain.ErrNotFound):
			res.Missing = append(res.Missing, c.ID)
		default:
			return res, err
		}
	}
	return res, nil
}

func (s *IngestionService) setApprovalLocked(ctx context.Context, id int64, approved bool) error {
	err := s.repo.SetApproval(ctx, id, approved)
	switch {
	case err == nil:
		observability.ObserveApproval("ok")
	case errors.Is(err, domain.ErrNotFound):
		observability.ObserveApproval("not_found")
		log.Warn().Int64("id", id).Msg("approval for unknown review")
		return err
	default:
		observability.ObserveApproval("error")
		return fmt.Errorf("set approval %d: %w", id, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *IngestionService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, allReviewsKey); err != nil {
		log.Warn().Err(err).Str("key", allReviewsKey).Msg("cache invalidation failed")
	}
}
