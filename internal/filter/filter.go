// Package filter applies the ordered eligibility predicates that decide
// whether an identifier proceeds to extraction and persistence.
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fleetlens/carrierscan/internal/carrier"
	"github.com/fleetlens/carrierscan/internal/extract"
)

// AuthPolicy selects how the authorization-status predicate reads the
// status value. The two policies differ on empty or unrecognized text:
// require-authorized fails closed, reject-not-authorized fails open.
type AuthPolicy string

// Authorization policies.
const (
	AuthRequireAuthorized   AuthPolicy = "require_authorized"
	AuthRejectNotAuthorized AuthPolicy = "reject_not_authorized"
)

// Config toggles each predicate independently.
type Config struct {
	NotFound      bool
	Authorization bool
	AuthPolicy    AuthPolicy
	Recency       bool
	MaxAgeDays    int
	FleetSize     bool
}

// Validate rejects incoherent predicate configuration.
func (c Config) Validate() error {
	if c.Authorization {
		switch c.AuthPolicy {
		case AuthRequireAuthorized, AuthRejectNotAuthorized:
		default:
			return fmt.Errorf("unknown auth policy %q", c.AuthPolicy)
		}
	}
	if c.Recency && c.MaxAgeDays <= 0 {
		return fmt.Errorf("max_age_days must be > 0 when the recency predicate is enabled")
	}
	return nil
}

var notFoundMarkers = []string{"record not found", "record inactive", "inactive"}

var formDateLayouts = []string{"01/02/2006", "2006-01-02"}

// Filter evaluates the predicate chain over a fetched document.
type Filter struct {
	cfg   Config
	clock carrier.Clock
}

// New builds a Filter.
func New(cfg Config, clock carrier.Clock) *Filter {
	return &Filter{cfg: cfg, clock: clock}
}

// Evaluate runs the enabled predicates in order and short-circuits on the
// first failure; its reason becomes the verdict's rejection reason.
func (f *Filter) Evaluate(doc *extract.Document) carrier.Verdict {
	if f.cfg.NotFound {
		if v := f.checkNotFound(doc.Raw()); !v.Accepted {
			return v
		}
	}
	if f.cfg.Authorization {
		if v := f.checkAuthorization(doc.LabelValue(extract.LabelOperatingStatus)); !v.Accepted {
			return v
		}
	}
	if f.cfg.Recency {
		if v := f.checkRecency(doc.LabelValue(extract.LabelFormDate)); !v.Accepted {
			return v
		}
	}
	if f.cfg.FleetSize {
		if v := f.checkFleetSize(doc.LabelValue(extract.LabelPowerUnits)); !v.Accepted {
			return v
		}
	}
	return carrier.Accept()
}

func (f *Filter) checkNotFound(document string) carrier.Verdict {
	lower := strings.ToLower(document)
	for _, marker := range notFoundMarkers {
		if strings.Contains(lower, marker) {
			return carrier.Reject(carrier.ReasonNotFound)
		}
	}
	return carrier.Accept()
}

func (f *Filter) checkAuthorization(status string) carrier.Verdict {
	upper := strings.ToUpper(status)
	switch f.cfg.AuthPolicy {
	case AuthRejectNotAuthorized:
		if strings.Contains(upper, "NOT AUTHORIZED") {
			return carrier.Reject(carrier.ReasonNotAuthorized)
		}
	default:
		if strings.Contains(upper, "NOT AUTHORIZED") || !strings.Contains(upper, "AUTHORIZED") {
			return carrier.Reject(carrier.ReasonNotAuthorized)
		}
	}
	return carrier.Accept()
}

// checkRecency accepts form dates up to MaxAgeDays old, boundary inclusive.
func (f *Filter) checkRecency(value string) carrier.Verdict {
	if value == "" {
		return carrier.Reject(carrier.ReasonMissingDate)
	}
	formDate, err := parseFormDate(value)
	if err != nil {
		return carrier.Reject(carrier.ReasonMissingDate)
	}
	now := f.clock.Now()
	days := daysBetween(formDate, now)
	if days > f.cfg.MaxAgeDays {
		return carrier.Reject(carrier.ReasonStale)
	}
	return carrier.Accept()
}

func (f *Filter) checkFleetSize(value string) carrier.Verdict {
	units, err := strconv.Atoi(strings.TrimSpace(value))
	if err == nil && units == 0 {
		return carrier.Reject(carrier.ReasonEmptyFleet)
	}
	return carrier.Accept()
}

func parseFormDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range formDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable form date %q", value)
}

// daysBetween returns the absolute whole-day difference between two times,
// comparing calendar days rather than 24h intervals.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(bd.Sub(ad).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
