package domain

import "context"

type ReviewRepository interface {
	// Init creates the schema if missing. Safe to call on every start.
	Init(ctx context.Context) error

	// Write paths
	UpsertReviews(ctx context.Context, rs []Review) error
	SetApproval(ctx context.Context, id int64, approved bool) error

	// Read paths
	ListReviews(ctx context.Context) ([]Review, error)
}

// FeedSource yields one batch of feed records.
type FeedSource interface {
	FetchReviews(ctx context.Context) ([]IngestedReview, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ApprovalChange is one edited row coming from the dashboard.
type ApprovalChange struct {
	ID       int64 `json:"id"`
	Approved bool  `json:"approved"`
}

type ApprovalResult struct {
	Updated int     `json:"updated"`
	Missing []int64 `json:"missing"`
}

// Dashboard is the internal review table plus its rating trends.
type Dashboard struct {
	Rows     []FlatReview   `json:"rows"`
	Trends   []ListingTrend `json:"trends"`
	Listings []string       `json:"listings"`
}
