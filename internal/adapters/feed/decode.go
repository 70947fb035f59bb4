// Package feed loads Hostaway-shaped review batches from a file or URL.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"flexinsights/internal/domain"
)

// envelope is the {"status": ..., "result": [...]} wrapper of the mock feed.
type envelope struct {
	Status string                  `json:"status"`
	Result []domain.IngestedReview `json:"result"`
}

// Decode reads either the envelope or a bare JSON array of records.
func Decode(r io.Reader) ([]domain.IngestedReview, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, fmt.Errorf("empty feed")
	}

	if b[0] == '[' {
		var out []domain.IngestedReview
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, fmt.Errorf("decode feed array: %w", err)
		}
		return out, nil
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode feed envelope: %w", err)
	}
	if env.Status != "" && env.Status != "success" {
		return nil, fmt.Errorf("feed status %q", env.Status)
	}
	if env.Result == nil {
		return []domain.IngestedReview{}, nil
	}
	return env.Result, nil
}

// File is a FeedSource backed by a JSON file on disk.
type File struct{ Path string }

func (f File) FetchReviews(ctx context.Context) ([]domain.IngestedReview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer fh.Close()
	return Decode(fh)
}

func (f File) String() string { return f.Path }
