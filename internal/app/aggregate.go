package app

import (
	"sort"

	"flexinsights/internal/domain"
)

// filterAll disables a listing or category filter.
const filterAll = "all"

// categoryRating is a linear scan; the first matching category wins.
func categoryRating(cs []domain.CategoryRating, name string) *float64 {
	for _, c := range cs {
		if c.Category == name {
			v := c.Rating
			return &v
		}
	}
	return nil
}

// FlattenForDisplay lifts the known categories into top-level columns.
func FlattenForDisplay(reviews []domain.Review) []domain.FlatReview {
	out := make([]domain.FlatReview, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, domain.FlatReview{
			ID:                r.ID,
			ListingName:       r.ListingName,
			GuestName:         r.GuestName,
			PublicReview:      r.PublicReview,
			Cleanliness:       categoryRating(r.Categories, domain.CategoryCleanliness),
			Communication:     categoryRating(r.Categories, domain.CategoryCommunication),
			RespectHouseRules: categoryRating(r.Categories, domain.CategoryRespectHouseRules),
			SubmittedAt:       r.SubmittedAt,
			Approved:          r.Approved,
		})
	}
	return out
}

// Filter keeps rows matching listing (exact, case-sensitive) and having a
// rating for category. "" and "all" disable either filter. A category with no
// column matches nothing.
func Filter(rows []domain.FlatReview, listing, category string) []domain.FlatReview {
	out := make([]domain.FlatReview, 0, len(rows))
	for _, r := range rows {
		if listing != "" && listing != filterAll && r.ListingName != listing {
			continue
		}
		if category != "" && category != filterAll {
			if v, _ := r.Category(category); v == nil {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

// value is nil when nothing was added, never NaN.
func (m meanAcc) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

// TrendByListing averages each known category per listing, ignoring missing
// ratings. Results are ordered by listing name.
func TrendByListing(rows []domain.FlatReview) []domain.ListingTrend {
	type group struct{ clean, comm, rules meanAcc }
	groups := map[string]*group{}
	for _, r := range rows {
		g, ok := groups[r.ListingName]
		if !ok {
			g = &group{}
			groups[r.ListingName] = g
		}
		g.clean.add(r.Cleanliness)
		g.comm.add(r.Communication)
		g.rules.add(r.RespectHouseRules)
	}

	out := make([]domain.ListingTrend, 0, len(groups))
	for name, g := range groups {
		out = append(out, domain.ListingTrend{
			ListingName:          name,
			CleanlinessAvg:       g.clean.value(),
			CommunicationAvg:     g.comm.value(),
			RespectHouseRulesAvg: g.rules.value(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ListingName < out[j].ListingName })
	return out
}

// ApprovedForListing returns the public projection of approved reviews for
// one listing.
func ApprovedForListing(reviews []domain.Review, listing string) []domain.PublicReview {
	out := make([]domain.PublicReview, 0)
	for _, r := range reviews {
		if !r.Approved || r.ListingName != listing {
			continue
		}
		cats := make([]domain.CategoryRating, len(r.Categories))
		copy(cats, r.Categories)
		out = append(out, domain.PublicReview{
			ID:           r.ID,
			GuestName:    r.GuestName,
			PublicReview: r.PublicReview,
			SubmittedAt:  r.SubmittedAt,
			Categories:   cats,
		})
	}
	return out
}

// Listings returns the distinct listing names, sorted.
func Listings(reviews []domain.Review) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, r := range reviews {
		if _, ok := seen[r.ListingName]; ok {
			continue
		}
		seen[r.ListingName] = struct{}{}
		out = append(out, r.ListingName)
	}
	sort.Strings(out)
	return out
}

// SortBySubmittedAt orders rows oldest first in place. Ties keep their order.
func SortBySubmittedAt(rows []domain.FlatReview) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SubmittedAt < rows[j].SubmittedAt })
}
