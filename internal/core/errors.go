package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Service operations.
var (
	// ErrNoSession means the session ID is unknown or has expired.
	ErrNoSession = errors.New("session not found")

	// ErrNoYear, ErrNoMake and ErrNoVersion mean an operation ran before
	// its upstream selection was made.
	ErrNoYear    = errors.New("no year selected")
	ErrNoMake    = errors.New("no make selected")
	ErrNoVersion = errors.New("no version selected")

	// ErrInvalidSelection means the submitted value is not in the
	// currently derived option set.
	ErrInvalidSelection = errors.New("selection not among available options")

	// ErrNotFound means the resolved selection no longer matches any row
	// of the active table.
	ErrNotFound = errors.New("document not found in listing")

	// ErrEmptyListing marks a year with zero rows. A reportable state,
	// not a failure.
	ErrEmptyListing = errors.New("no documents for the selected year")
)

// ListingFetchError wraps a failure while paginating the listing. Whatever
// rows accumulated before the failure are kept on the session.
type ListingFetchError struct {
	Year int
	Page int
	Err  error
}

func (e *ListingFetchError) Error() string {
	return fmt.Sprintf("fetch listing for %d: page %d: %v", e.Year, e.Page, e.Err)
}

func (e *ListingFetchError) Unwrap() error { return e.Err }

// FetchFailedError means the document endpoint answered with a non-200
// status. The caller should offer the direct link as a fallback.
type FetchFailedError struct {
	Status int
	URL    string
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("document fetch failed with status %d", e.Status)
}
