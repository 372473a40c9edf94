package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FirstYear is the oldest model year offered for selection.
const FirstYear = 1950

// Years returns the selectable model years, current year first.
func Years() []int {
	current := time.Now().Year()
	years := make([]int, 0, current-FirstYear+1)
	for y := current; y >= FirstYear; y-- {
		years = append(years, y)
	}
	return years
}

// ValidYear reports whether y is within the selectable range.
func ValidYear(y int) bool {
	return y >= FirstYear && y <= time.Now().Year()
}

// Makes returns the distinct manufacturer names in the table, sorted
// ascending (case-sensitive lexical order).
func Makes(table ListingTable) []string {
	seen := make(map[string]bool, len(table))
	makes := make([]string, 0, len(table))
	for _, row := range table {
		if !seen[row.Manufacturer] {
			seen[row.Manufacturer] = true
			makes = append(makes, row.Manufacturer)
		}
	}
	sort.Strings(makes)
	return makes
}

// Versions returns the version options for one make, most recent letter
// date first. The sort is stable: rows with equal dates keep the order the
// API returned them in.
func Versions(table ListingTable, make string) []VersionOption {
	var options []VersionOption
	for _, row := range table {
		if row.Manufacturer != make {
			continue
		}
		options = append(options, VersionOption{
			Label:      versionLabel(row),
			Name:       row.Name,
			LetterDate: row.LetterDate,
		})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return laterLetterDate(options[i].LetterDate, options[j].LetterDate)
	})
	return options
}

func versionLabel(row ListingRow) string {
	return fmt.Sprintf("%s (%s)", row.Name, row.LetterDate)
}

// versionName strips the trailing " (<date>)" suffix from a version label.
// A label without the suffix is returned as-is.
func versionName(label string) string {
	if !strings.HasSuffix(label, ")") {
		return label
	}
	idx := strings.LastIndex(label, " (")
	if idx < 0 {
		return label
	}
	return label[:idx]
}

// letterDateLayouts are the date formats the listing endpoint is known to
// emit for letterdate.
var letterDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
}

func parseLetterDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range letterDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// laterLetterDate reports whether a is strictly more recent than b,
// comparing as dates when both parse and lexically otherwise.
func laterLetterDate(a, b string) bool {
	ta, okA := parseLetterDate(a)
	tb, okB := parseLetterDate(b)
	if okA && okB {
		return ta.After(tb)
	}
	return a > b
}
