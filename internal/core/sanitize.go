package core

import (
	"fmt"
	"regexp"
)

// Pre-compiled patterns for filename sanitization.
var (
	disallowedChars = regexp.MustCompile(`[^A-Za-z0-9\s-]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// Sanitize makes a string safe for use in a download filename: every
// character outside [A-Za-z0-9\s-] is dropped, then each whitespace run
// becomes a single underscore.
//
//	Sanitize("Ford Motor Co.") == "Ford_Motor_Co"
//	Sanitize("GM/Chevrolet")   == "GMChevrolet"
func Sanitize(s string) string {
	s = disallowedChars.ReplaceAllString(s, "")
	return whitespaceRun.ReplaceAllString(s, "_")
}

// documentFilename builds the download name for a resolved selection.
func documentFilename(year int, make, name string) string {
	return fmt.Sprintf("%d_%s_%s.pdf", year, Sanitize(make), Sanitize(name))
}
