// Package core provides the selection and listing logic for the document
// viewer. This package has no HTTP or UI dependencies and can be used by
// any frontend.
package core

import "context"

// ListingRow is one defect-investigation letter record from the NHTSA
// listing. Rows are immutable once fetched; identity is the
// (manufacturer, name, letter date) triple.
type ListingRow struct {
	Manufacturer string `json:"manufacturer"`
	Name         string `json:"name"`
	LetterDate   string `json:"letterDate"`
	URL          string `json:"url"`
}

// ListingTable is the ordered set of rows for one model year, in the order
// the API returned them. Never mutated after the fetch completes.
type ListingTable []ListingRow

// VersionOption is a selectable document version for a make. Label is what
// the user sees and selects; Name and LetterDate are the underlying row
// fields it was built from.
type VersionOption struct {
	Label      string `json:"label"`
	Name       string `json:"name"`
	LetterDate string `json:"letterDate"`
}

// PDFDocument is a fetched letter: raw bytes plus the download filename
// derived from the selection.
type PDFDocument struct {
	Bytes    []byte
	Filename string
}

// DocumentInfo describes the resolved document without its bytes.
type DocumentInfo struct {
	Filename  string `json:"filename"`
	DirectURL string `json:"directUrl"`
	Loaded    bool   `json:"loaded"`
}

// SelectionState is a snapshot of one session's selections and the options
// derived from them, shaped for the API layer.
type SelectionState struct {
	Year         int             `json:"year,omitempty"`
	Make         string          `json:"make,omitempty"`
	Version      string          `json:"version,omitempty"`
	Makes        []string        `json:"makes"`
	Versions     []VersionOption `json:"versions"`
	EmptyListing bool            `json:"emptyListing"`
	Summary      string          `json:"summary,omitempty"`
	Document     *DocumentInfo   `json:"document,omitempty"`
}

// ListingFetcher retrieves the full listing for one model year.
type ListingFetcher interface {
	FetchListing(ctx context.Context, year int) (ListingTable, error)
}

// DocumentFetcher retrieves the raw bytes behind a row's document URL.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) ([]byte, error)
}
