package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"flexinsights/internal/domain"
)

type QueryService struct {
	// mu is shared with the IngestionService over the same store; a
	// cache fill holds it for reading so no write lands in between.
	mu       *sync.RWMutex
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{mu: &sync.RWMutex{}, repo: r, cache: c, cacheTTL: ttl}
}

// NewServices wires the write and read sides over one store and cache.
// Use it whenever both sides share a cache.
func NewServices(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) (*IngestionService, *QueryService) {
	mu := &sync.RWMutex{}
	return &IngestionService{mu: mu, repo: r, cache: c},
		&QueryService{mu: mu, repo: r, cache: c, cacheTTL: ttl}
}

// ListAll returns every stored review with categories decoded.
func (s *QueryService) ListAll(ctx context.Context) ([]domain.Review, error) {
	if s.cache != nil {
		var cached []domain.Review
		if ok, err := s.cache.Get(ctx, allReviewsKey, &cached); err != nil {
			log.Warn().Err(err).Str("key", allReviewsKey).Msg("cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, err := s.repo.ListReviews(ctx)
	if err != nil {
		return nil, err
	}

	// copy slice to avoid aliasing the repo's backing array
	out := deepCopyReviews(rs)
	if s.cache != nil {
		if err := s.cache.Set(ctx, allReviewsKey, out, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", allReviewsKey).Msg("cache write failed")
		}
	}
	return out, nil
}

// Dashboard builds the manager table for the given filters. Trends are
// computed over the filtered rows; listings always cover every review.
func (s *QueryService) Dashboard(ctx context.Context, listing, category string) (domain.Dashboard, error) {
	rs, err := s.ListAll(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	rows := Filter(FlattenForDisplay(rs), listing, category)
	SortBySubmittedAt(rows)
	return domain.Dashboard{
		Rows:     rows,
		Trends:   TrendByListing(rows),
		Listings: Listings(rs),
	}, nil
}

func (s *QueryService) Listings(ctx context.Context) ([]string, error) {
	rs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Listings(rs), nil
}

// PublicListing returns the approved reviews guests may see for listing.
func (s *QueryService) PublicListing(ctx context.Context, listing string) ([]domain.PublicReview, error) {
	rs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return ApprovedForListing(rs, listing), nil
}
