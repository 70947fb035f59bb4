package domain

import "errors"

var (
	// ErrStorage means the backing store failed or is unreachable.
	ErrStorage = errors.New("storage error")
	// ErrMalformedData means a persisted categories payload could not be parsed.
	ErrMalformedData = errors.New("malformed data")
	// ErrValidation means an ingested record is missing id or listingName.
	ErrValidation = errors.New("validation error")
	// ErrNotFound means no review has the requested id.
	ErrNotFound = errors.New("not found")
)
