package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"flexinsights/internal/domain"
)

// ---- fakes ----

// fakeRepo mimics the SQL stores: replace on upsert, approval forced off.
type fakeRepo struct {
	rows      map[int64]domain.Review
	lists     int
	upsertErr error
	listErr   error
}

func newFakeRepo() *fakeRepo { return &fakeRepo{rows: map[int64]domain.Review{}} }

func (f *fakeRepo) Init(ctx context.Context) error { return nil }

func (f *fakeRepo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, r := range rs {
		r.Approved = false
		f.rows[r.ID] = r
	}
	return nil
}

func (f *fakeRepo) SetApproval(ctx context.Context, id int64, approved bool) error {
	r, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	r.Approved = approved
	f.rows[id] = r
	return nil
}

func (f *fakeRepo) ListReviews(ctx context.Context) ([]domain.Review, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Review, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeCache round-trips through JSON like the Redis adapter does.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

type fakeFeed struct {
	rs  []domain.IngestedReview
	err error
}

func (f fakeFeed) FetchReviews(ctx context.Context) ([]domain.IngestedReview, error) {
	return f.rs, f.err
}

func ptr[T any](v T) *T { return &v }
