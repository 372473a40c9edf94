package nhtsa

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/VinayRevanuruBB/Vin-Decode/internal/core"
)

// Columns the listing must carry. The API emits lowercase headers; the
// index is built case-insensitively anyway.
const (
	colManufacturer = "manufacturername"
	colName         = "name"
	colLetterDate   = "letterdate"
	colURL          = "url"
)

// headerIndex maps lowercased column names to their position in a record.
type headerIndex map[string]int

func buildHeaderIndex(header []string) (headerIndex, error) {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{colManufacturer, colName, colLetterDate, colURL} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("listing is missing column %q", col)
		}
	}
	return idx, nil
}

func (idx headerIndex) field(record []string, col string) string {
	i := idx[col]
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseListingCSV reads one page of the listing. An empty body parses to
// zero rows, which signals the end of pagination to the caller.
func parseListingCSV(r io.Reader) ([]core.ListingRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read listing header: %w", err)
	}

	idx, err := buildHeaderIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []core.ListingRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("read listing row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, core.ListingRow{
			Manufacturer: idx.field(record, colManufacturer),
			Name:         idx.field(record, colName),
			LetterDate:   idx.field(record, colLetterDate),
			URL:          idx.field(record, colURL),
		})
	}
}
