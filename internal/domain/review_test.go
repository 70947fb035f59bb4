package domain_test

import (
	"errors"
	"testing"

	"flexinsights/internal/domain"
)

func TestEncodeDecodeCategories(t *testing.T) {
	blob, err := domain.EncodeCategories(nil)
	if err != nil || blob != "[]" {
		t.Fatalf("nil categories: blob=%q err=%v", blob, err)
	}

	in := []domain.CategoryRating{{Category: "cleanliness", Rating: 9}, {Category: "value", Rating: 4.5}}
	blob, err = domain.EncodeCategories(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := domain.DecodeCategories([]byte(blob))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[1] != in[1] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestDecodeCategories_Malformed(t *testing.T) {
	for _, blob := range []string{`{"category":"x"}`, `[{"category":1}]`, `not json`} {
		if _, err := domain.DecodeCategories([]byte(blob)); !errors.Is(err, domain.ErrMalformedData) {
			t.Fatalf("%q: expected ErrMalformedData, got %v", blob, err)
		}
	}
	out, err := domain.DecodeCategories(nil)
	if err != nil || out == nil || len(out) != 0 {
		t.Fatalf("empty blob should decode to empty slice, got %#v %v", out, err)
	}
}

func TestFlatReviewCategory(t *testing.T) {
	v := 7.0
	f := domain.FlatReview{Communication: &v}
	if got, ok := f.Category(domain.CategoryCommunication); !ok || got == nil || *got != 7 {
		t.Fatalf("communication = %v, %v", got, ok)
	}
	if got, ok := f.Category(domain.CategoryCleanliness); !ok || got != nil {
		t.Fatalf("cleanliness = %v, %v", got, ok)
	}
	if _, ok := f.Category("value"); ok || domain.IsKnownCategory("value") {
		t.Fatalf("value is not a known category")
	}
}
