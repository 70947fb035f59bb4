package domain

import (
	"encoding/json"
	"fmt"
)

// Category names the dashboard lifts into their own columns.
const (
	CategoryCleanliness       = "cleanliness"
	CategoryCommunication     = "communication"
	CategoryRespectHouseRules = "respect_house_rules"
)

// KnownCategories lists the categories that FlatReview exposes as fields.
var KnownCategories = []string{CategoryCleanliness, CategoryCommunication, CategoryRespectHouseRules}

func IsKnownCategory(name string) bool {
	for _, c := range KnownCategories {
		if c == name {
			return true
		}
	}
	return false
}

type CategoryRating struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

// IngestedCategory is a category as the feed sends it. The feed may send
// a null rating, which is kept apart from a real zero.
type IngestedCategory struct {
	Category string   `json:"category"`
	Rating   *float64 `json:"rating"`
}

// IngestedReview is one record of the Hostaway-shaped feed.
// Note the feed calls the categories "reviewCategory".
type IngestedReview struct {
	ID             *int64             `json:"id"`
	Type           string             `json:"type"`
	Status         string             `json:"status"`
	Rating         *float64           `json:"rating"`
	PublicReview   string             `json:"publicReview"`
	ReviewCategory []IngestedCategory `json:"reviewCategory"`
	SubmittedAt    string             `json:"submittedAt"`
	GuestName      string             `json:"guestName"`
	ListingName    string             `json:"listingName"`
}

// Review is the stored record. Approved is only ever changed by SetApproval.
type Review struct {
	ID           int64            `json:"id"`
	Type         string           `json:"type"`
	Status       string           `json:"status"`
	Rating       *float64         `json:"rating"`
	PublicReview string           `json:"publicReview"`
	Categories   []CategoryRating `json:"categories"`
	SubmittedAt  string           `json:"submittedAt"`
	GuestName    string           `json:"guestName"`
	ListingName  string           `json:"listingName"`
	Approved     bool             `json:"approved"`
}

// FlatReview is a dashboard row with the known categories as columns.
type FlatReview struct {
	ID                int64    `json:"id"`
	ListingName       string   `json:"listingName"`
	GuestName         string   `json:"guestName"`
	PublicReview      string   `json:"publicReview"`
	Cleanliness       *float64 `json:"cleanliness"`
	Communication     *float64 `json:"communication"`
	RespectHouseRules *float64 `json:"respect_house_rules"`
	SubmittedAt       string   `json:"submittedAt"`
	Approved          bool     `json:"approved"`
}

// Category returns the column for a known category name.
// ok is false for names that have no column.
func (f FlatReview) Category(name string) (v *float64, ok bool) {
	switch name {
	case CategoryCleanliness:
		return f.Cleanliness, true
	case CategoryCommunication:
		return f.Communication, true
	case CategoryRespectHouseRules:
		return f.RespectHouseRules, true
	}
	return nil, false
}

// PublicReview is the guest-facing projection. Rating, type, status and
// the approval flag are deliberately absent.
type PublicReview struct {
	ID           int64            `json:"id"`
	GuestName    string           `json:"guestName"`
	PublicReview string           `json:"publicReview"`
	SubmittedAt  string           `json:"submittedAt"`
	Categories   []CategoryRating `json:"reviewCategory"`
}

// ListingTrend holds per-listing category averages. A nil average means the
// listing had no rating for that category.
type ListingTrend struct {
	ListingName          string   `json:"listingName"`
	CleanlinessAvg       *float64 `json:"cleanliness_avg"`
	CommunicationAvg     *float64 `json:"communication_avg"`
	RespectHouseRulesAvg *float64 `json:"respect_house_rules_avg"`
}

// EncodeCategories serializes categories into the blob the stores persist.
// A nil slice is stored as "[]".
func EncodeCategories(cs []CategoryRating) (string, error) {
	if cs == nil {
		cs = []CategoryRating{}
	}
	b, err := json.Marshal(cs)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	return string(b), nil
}

// DecodeCategories parses a persisted categories blob. Anything that is not a
// JSON array of {category, rating} objects is ErrMalformedData.
func DecodeCategories(blob []byte) ([]CategoryRating, error) {
	if len(blob) == 0 {
		return []CategoryRating{}, nil
	}
	var out []CategoryRating
	if err := json.Unmarshal(blob, &out); err != nil {
		return nil, fmt.Errorf("%w: categories: %v", ErrMalformedData, err)
	}
	if out == nil {
		out = []CategoryRating{}
	}
	return out, nil
}
