// Package rowscan holds the column mapping shared by the SQL review stores.
package rowscan

import (
	"database/sql"
	"fmt"
	"strings"

	"flexinsights/internal/domain"
)

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func BoolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Validate rejects reviews missing the fields the table requires.
func Validate(r domain.Review) error {
	if r.ID == 0 {
		return fmt.Errorf("%w: review id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(r.ListingName) == "" {
		return fmt.Errorf("%w: listingName is required (id %d)", domain.ErrValidation, r.ID)
	}
	return nil
}

// UpsertArgs validates every review and returns one argument list per row in
// column order (id, type, status, rating, publicReview, categories,
// submittedAt, guestName, listingName). approved is not an argument.
func UpsertArgs(rs []domain.Review) ([][]any, error) {
	out := make([][]any, 0, len(rs))
	for _, r := range rs {
		if err := Validate(r); err != nil {
			return nil, err
		}
		cats, err := domain.EncodeCategories(r.Categories)
		if err != nil {
			return nil, fmt.Errorf("review %d: %w", r.ID, err)
		}
		out = append(out, []any{
			r.ID,
			r.Type,
			r.Status,
			valF64(r.Rating),
			r.PublicReview,
			cats,
			r.SubmittedAt,
			r.GuestName,
			r.ListingName,
		})
	}
	return out, nil
}

// Reviews scans rows selected as (id, type, status, rating, publicReview,
// categories, submittedAt, guestName, listingName, approved).
func Reviews(rows *sql.Rows) ([]domain.Review, error) {
	out := make([]domain.Review, 0)
	for rows.Next() {
		var (
			rv                     domain.Review
			typ, status, text      sql.NullString
			cats, submitted, guest sql.NullString
			rating                 sql.NullFloat64
			approved               int64
		)
		if err := rows.Scan(
			&rv.ID,
			&typ,
			&status,
			&rating,
			&text,
			&cats,
			&submitted,
			&guest,
			&rv.ListingName,
			&approved,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w: %w", domain.ErrStorage, err)
		}

		categories, err := domain.DecodeCategories([]byte(cats.String))
		if err != nil {
			return nil, fmt.Errorf("review %d: %w", rv.ID, err)
		}
		rv.Type = typ.String
		rv.Status = status.String
		if rating.Valid {
			f := rating.Float64
			rv.Rating = &f
		}
		rv.PublicReview = text.String
		rv.Categories = categories
		rv.SubmittedAt = submitted.String
		rv.GuestName = guest.String
		rv.Approved = approved != 0

		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w: %w", domain.ErrStorage, err)
	}
	return out, nil
}
