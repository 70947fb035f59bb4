package app

import (
	"fmt"
	"strings"

	"flexinsights/internal/domain"
)

/********** feed -> stored review **********/

// mapIngested renames reviewCategory to categories and drops any notion of
// approval: every ingested record starts unapproved. A category with a null
// rating is dropped, so it reads as missing rather than as zero.
func mapIngested(in domain.IngestedReview) domain.Review {
	cats := make([]domain.CategoryRating, 0, len(in.ReviewCategory))
	for _, c := range in.ReviewCategory {
		if c.Rating == nil {
			continue
		}
		cats = append(cats, domain.CategoryRating{Category: c.Category, Rating: *c.Rating})
	}

	var rating *float64
	if in.Rating != nil {
		f := *in.Rating
		rating = &f
	}
	return domain.Review{
		ID:           derefID(in.ID),
		Type:         in.Type,
		Status:       in.Status,
		Rating:       rating,
		PublicReview: in.PublicReview,
		Categories:   cats,
		SubmittedAt:  in.SubmittedAt,
		GuestName:    in.GuestName,
		ListingName:  in.ListingName,
		Approved:     false,
	}
}

// mapFeed validates and maps a whole batch. The first invalid record fails
// the batch so nothing is half-written.
func mapFeed(in []domain.IngestedReview) ([]domain.Review, error) {
	out := make([]domain.Review, 0, len(in))
	for i, r := range in {
		if err := validateIngested(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, mapIngested(r))
	}
	return out, nil
}

func validateIngested(r domain.IngestedReview) error {
	if r.ID == nil {
		return fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(r.ListingName) == "" {
		return fmt.Errorf("%w: listingName is required (id %d)", domain.ErrValidation, *r.ID)
	}
	return nil
}

func derefID(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

/********** deep copies (cache values must not alias repo slices) **********/

func deepCopyReviews(in []domain.Review) []domain.Review {
	out := make([]domain.Review, len(in))
	for i, r := range in {
		out[i] = r
		if r.Rating != nil {
			f := *r.Rating
			out[i].Rating = &f
		}
		if r.Categories != nil {
			out[i].Categories = make([]domain.CategoryRating, len(r.Categories))
			copy(out[i].Categories, r.Categories)
		}
	}
	return out
}
