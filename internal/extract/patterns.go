package extract

import (
	"regexp"
	"strings"
)

// Docket patterns are tried most-specific first; the first match wins. The
// bare pattern is a fallback scan when none of the specific ones hit.
var (
	docketPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:MC|FF|MX)-\d{6,7}\b`),
		regexp.MustCompile(`\b(?:MC|FF|MX)[- ]?\d{3,7}\b`),
	}
	bareDocketPattern = regexp.MustCompile(`\b[A-Z]{2}[- ]?\d{3,7}\b`)

	phonePattern = regexp.MustCompile(`\(\d{3}\)[ .-]?\d{3}[ .-]\d{4}|\b\d{3}[ .-]\d{3}[ .-]\d{4}\b`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Trailing "<city>, <ST> <zip[+4]>" of a flattened address string.
	cityStateZipPattern = regexp.MustCompile(`([A-Za-z][A-Za-z .'-]*?)\s*,\s*([A-Z]{2})\s+(\d{5}(?:-\d{4})?)\s*$`)
)

// DocketNumber scans the whole document for the first docket-style token
// (two-letter prefix followed by 3-7 digits with optional separators).
func DocketNumber(document string) string {
	for _, p := range docketPatterns {
		if m := p.FindString(document); m != "" {
			return m
		}
	}
	return bareDocketPattern.FindString(document)
}

// Phone returns the first North-American phone-shaped substring, or "".
func Phone(document string) string {
	return phonePattern.FindString(document)
}

// Email returns the first email-shaped substring, or "".
func Email(document string) string {
	return emailPattern.FindString(document)
}

// SplitAddress extracts the trailing city, state, and zip from a flat
// address string. All three come back empty when the shape does not match.
func SplitAddress(address string) (city, state, zip string) {
	m := cityStateZipPattern.FindStringSubmatch(address)
	if m == nil {
		return "", "", ""
	}
	return strings.TrimSpace(m[1]), m[2], m[3]
}
