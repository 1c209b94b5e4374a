// Package carrier defines the core types and interfaces shared across the
// scan pipeline.
package carrier

import (
	"context"
	"time"
)

// Field names populated by the extractor. A record may carry any subset;
// absent fields are empty strings, never missing keys in the output.
const (
	FieldLookupURL        = "lookup_url"
	FieldLegalName        = "legal_name"
	FieldDBAName          = "dba_name"
	FieldEntityType       = "entity_type"
	FieldOperatingStatus  = "operating_status"
	FieldUSDOTNumber      = "usdot_number"
	FieldDocketNumber     = "docket_number"
	FieldPhone            = "phone"
	FieldEmail            = "email"
	FieldPhysicalAddress  = "physical_address"
	FieldCity             = "city"
	FieldState            = "state"
	FieldZip              = "zip"
	FieldPowerUnits       = "power_units"
	FieldDrivers          = "drivers"
	FieldFormDate         = "mcs150_date"
	FieldCarrierOperation = "carrier_operation"
	FieldCategory         = "category"
)

// RejectReason explains why an identifier was filtered out.
type RejectReason string

// Reject reasons recorded by the eligibility filter.
const (
	ReasonNone          RejectReason = ""
	ReasonNotFound      RejectReason = "not_found"
	ReasonNotAuthorized RejectReason = "not_authorized"
	ReasonStale         RejectReason = "stale"
	ReasonMissingDate   RejectReason = "missing_date"
	ReasonEmptyFleet    RejectReason = "empty_fleet"
)

// Identifier is the caller-supplied lookup key for one carrier record.
type Identifier string

// Verdict is the accept/reject decision for one identifier. Exactly one
// verdict is produced per identifier and it is never revised.
type Verdict struct {
	Accepted bool
	Reason   RejectReason
}

// Accept returns an accepting verdict.
func Accept() Verdict {
	return Verdict{Accepted: true}
}

// Reject returns a rejecting verdict with the given reason.
func Reject(reason RejectReason) Verdict {
	return Verdict{Reason: reason}
}

// Record is the flat field map extracted for one accepted identifier. It
// always carries the originating lookup address and is immutable once the
// extractor returns it.
type Record struct {
	Address string
	Fields  map[string]string
}

// Get returns the named field value, or "" when absent.
func (r Record) Get(name string) string {
	if name == FieldLookupURL {
		return r.Address
	}
	return r.Fields[name]
}

// Status is the terminal state of one identifier's pipeline.
type Status string

// Pipeline terminal states.
const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusErrored  Status = "errored"
)

// Outcome is the settled result of one identifier's pipeline run.
type Outcome struct {
	Identifier Identifier
	Address    string
	Status     Status
	Reason     RejectReason
	Record     *Record
	Err        error
}

// Summary aggregates counts for a finished batch.
type Summary struct {
	RunID      string               `json:"run_id"`
	Label      string               `json:"label,omitempty"`
	Scanned    int                  `json:"scanned"`
	Accepted   int                  `json:"accepted"`
	Rejected   int                  `json:"rejected"`
	Errored    int                  `json:"errored"`
	Rejections map[RejectReason]int `json:"rejections,omitempty"`
	Started    time.Time            `json:"started_at"`
	Finished   time.Time            `json:"finished_at"`
}

// Fetcher retrieves the document body for a lookup address.
type Fetcher interface {
	Fetch(ctx context.Context, address string) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Publisher pushes batch completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// RecordStore persists accepted records.
type RecordStore interface {
	SaveRecord(ctx context.Context, runID string, record Record) error
}
