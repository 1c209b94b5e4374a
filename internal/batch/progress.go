package batch

import (
	"sync/atomic"

	"github.com/fleetlens/carrierscan/internal/carrier"
)

// Progress exposes live batch counters to the status API. All methods are
// safe for concurrent use.
type Progress struct {
	total    atomic.Int64
	scanned  atomic.Int64
	accepted atomic.Int64
	rejected atomic.Int64
	errored  atomic.Int64
}

// ProgressSnapshot is a point-in-time copy of the counters.
type ProgressSnapshot struct {
	Total    int64 `json:"total"`
	Scanned  int64 `json:"scanned"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
	Errored  int64 `json:"errored"`
}

// NewProgress returns zeroed progress counters.
func NewProgress() *Progress {
	return &Progress{}
}

func (p *Progress) begin(total int) {
	p.total.Store(int64(total))
}

func (p *Progress) observe(status carrier.Status) {
	p.scanned.Add(1)
	switch status {
	case carrier.StatusAccepted:
		p.accepted.Add(1)
	case carrier.StatusRejected:
		p.rejected.Add(1)
	default:
		p.errored.Add(1)
	}
}

// Snapshot returns the current counter values.
func (p *Progress) Snapshot() ProgressSnapshot {
	return ProgressSnapshot{
		Total:    p.total.Load(),
		Scanned:  p.scanned.Load(),
		Accepted: p.accepted.Load(),
		Rejected: p.rejected.Load(),
		Errored:  p.errored.Load(),
	}
}
