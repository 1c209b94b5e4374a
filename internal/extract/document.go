// Package extract pulls structured fields out of semi-structured carrier
// snapshot markup. Extraction is best-effort: a pattern that does not match
// resolves to an empty value, never an error.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Labels recognized on snapshot pages. The filter and extractor share these
// so both read the same cells.
const (
	LabelLegalName       = "Legal Name:"
	LabelDBAName         = "DBA Name:"
	LabelEntityType      = "Entity Type:"
	LabelOperatingStatus = "Operating Status:"
	LabelUSDOTNumber     = "USDOT Number:"
	LabelPowerUnits      = "Power Units:"
	LabelDrivers         = "Drivers:"
	LabelFormDate        = "MCS-150 Form Date:"
	LabelPhone           = "Phone:"
	LabelPhysicalAddr    = "Physical Address:"
)

var lineBreakTags = regexp.MustCompile(`(?i)<br\s*/?>`)

// Document wraps a parsed page body for structural queries. A body that
// fails to parse yields a Document whose queries all return empty values.
type Document struct {
	raw string
	doc *goquery.Document
}

// Parse builds a Document from a raw page body. Line-break tags are folded
// to a comma-space separator first so multi-line values flatten cleanly.
func Parse(raw string) *Document {
	prepared := lineBreakTags.ReplaceAllString(raw, ", ")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(prepared))
	if err != nil {
		return &Document{raw: raw}
	}
	return &Document{raw: raw, doc: doc}
}

// Raw returns the unmodified page body.
func (d *Document) Raw() string {
	return d.raw
}

// LabelValue returns the text of the value container immediately following
// the first structural match of label. Markup is stripped, entities decoded,
// and internal whitespace collapsed. Missing labels resolve to "".
func (d *Document) LabelValue(label string) string {
	if d.doc == nil {
		return ""
	}
	want := collapse(label)
	var out string
	d.doc.Find("th, td, dt, b, strong").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if collapse(s.Text()) != want {
			return true
		}
		val := s.Next()
		if val.Length() == 0 {
			// Label nested inside a cell; the value lives in the next cell.
			val = s.Parent().Next()
		}
		if val.Length() == 0 {
			return true
		}
		out = collapse(val.Text())
		return false
	})
	return out
}

// MarkedLabels collects the label text of every styled cell that directly
// follows a marked ("X") cell, de-duplicated in first-seen order.
func (d *Document) MarkedLabels() []string {
	if d.doc == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	d.doc.Find("td").Each(func(_ int, s *goquery.Selection) {
		if !strings.EqualFold(collapse(s.Text()), "X") {
			return
		}
		next := s.Next()
		if next.Length() == 0 {
			return
		}
		if _, styled := next.Attr("class"); !styled {
			return
		}
		label := collapse(next.Text())
		if label == "" {
			return
		}
		if _, dup := seen[label]; dup {
			return
		}
		seen[label] = struct{}{}
		out = append(out, label)
	})
	return out
}

// FindLink returns the first anchor whose href or text contains any hint
// (case-insensitive), resolved against base. Returns "" when absent.
func (d *Document) FindLink(base string, hints ...string) string {
	if d.doc == nil {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		baseURL = nil
	}
	var out string
	d.doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		text := collapse(s.Text())
		for _, hint := range hints {
			if !containsFold(href, hint) && !containsFold(text, hint) {
				continue
			}
			out = resolveHref(baseURL, href)
			return false
		}
		return true
	})
	return out
}

func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// collapse trims a string and folds internal whitespace (including decoded
// non-breaking spaces) to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
