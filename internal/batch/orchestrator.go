// Package batch runs the fetch-validate-extract pipeline over an identifier
// list in fixed-size concurrency windows.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetlens/carrierscan/internal/carrier"
	"github.com/fleetlens/carrierscan/internal/extract"
	"github.com/fleetlens/carrierscan/internal/filter"
	"github.com/fleetlens/carrierscan/internal/metrics"
)

// Config controls orchestration.
type Config struct {
	// WindowSize is the concurrency limit: identifiers per window, all
	// in flight at once.
	WindowSize int
	// WindowDelay is the floor pause between windows, applied regardless
	// of how long the window itself took. Never applied after the last.
	WindowDelay time.Duration
	// AddressesOnly skips extraction; accepted identifiers contribute
	// their lookup address only.
	AddressesOnly bool
	// QueryTemplate derives lookup addresses; empty means the default.
	QueryTemplate string
	// Label is an opaque batch tag carried into the summary.
	Label string
}

// Result accumulates a finished batch.
type Result struct {
	Records   []carrier.Record
	Addresses []string
	Outcomes  []carrier.Outcome
	Summary   carrier.Summary
}

// ContactEnricher supplies email/phone from secondary detail pages.
type ContactEnricher interface {
	Enrich(ctx context.Context, address string, primary *extract.Document) (email, phone string)
}

// SnapshotArchiver persists the raw document of an accepted identifier.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, id carrier.Identifier, body string) error
}

// Orchestrator drives the per-identifier pipelines.
type Orchestrator struct {
	cfg       Config
	fetcher   carrier.Fetcher
	filter    *filter.Filter
	extractor *extract.Extractor
	scout     ContactEnricher
	store     carrier.RecordStore
	archive   SnapshotArchiver
	clock     carrier.Clock
	progress  *Progress
	logger    *zap.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithContactEnricher enables secondary-page contact enrichment.
func WithContactEnricher(scout ContactEnricher) Option {
	return func(o *Orchestrator) { o.scout = scout }
}

// WithRecordStore persists each accepted record as it settles.
func WithRecordStore(store carrier.RecordStore) Option {
	return func(o *Orchestrator) { o.store = store }
}

// WithSnapshotArchiver archives the raw document of accepted identifiers.
func WithSnapshotArchiver(archive SnapshotArchiver) Option {
	return func(o *Orchestrator) { o.archive = archive }
}

// WithProgress publishes live counters to the given Progress.
func WithProgress(progress *Progress) Option {
	return func(o *Orchestrator) { o.progress = progress }
}

// New builds an Orchestrator.
func New(
	cfg Config,
	fetcher carrier.Fetcher,
	f *filter.Filter,
	extractor *extract.Extractor,
	clock carrier.Clock,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		cfg:       cfg,
		fetcher:   fetcher,
		filter:    f,
		extractor: extractor,
		clock:     clock,
		progress:  NewProgress(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes every identifier and returns the accumulated result. A
// single identifier's failure never aborts the batch; only an empty input
// is an error.
func (o *Orchestrator) Run(ctx context.Context, ids []carrier.Identifier) (Result, error) {
	if len(ids) == 0 {
		return Result{}, fmt.Errorf("no identifiers to scan")
	}

	runID := uuid.NewString()
	started := o.clock.Now()
	o.progress.begin(len(ids))
	o.logger.Info("batch started",
		zap.String("run_id", runID),
		zap.String("label", o.cfg.Label),
		zap.Int("identifiers", len(ids)),
		zap.Int("window_size", o.cfg.WindowSize),
	)

	result := Result{Summary: carrier.Summary{
		RunID:      runID,
		Label:      o.cfg.Label,
		Rejections: make(map[carrier.RejectReason]int),
		Started:    started,
	}}

	for start := 0; start < len(ids); start += o.cfg.WindowSize {
		end := start + o.cfg.WindowSize
		if end > len(ids) {
			end = len(ids)
		}
		outcomes := o.runWindow(ctx, runID, ids[start:end])
		for _, oc := range outcomes {
			o.accumulate(&result, oc)
		}

		if end < len(ids) {
			o.pause(ctx, o.cfg.WindowDelay)
		}
	}

	result.Summary.Scanned = len(result.Outcomes)
	result.Summary.Finished = o.clock.Now()
	o.logger.Info("batch finished",
		zap.String("run_id", runID),
		zap.Int("accepted", result.Summary.Accepted),
		zap.Int("rejected", result.Summary.Rejected),
		zap.Int("errored", result.Summary.Errored),
	)
	return result, nil
}

// Progress returns the orchestrator's live counters.
func (o *Orchestrator) Progress() *Progress {
	return o.progress
}

// runWindow dispatches every identifier in the window concurrently and
// waits for all of them to settle before returning, preserving window order
// in the returned slice.
func (o *Orchestrator) runWindow(ctx context.Context, runID string, window []carrier.Identifier) []carrier.Outcome {
	outcomes := make([]carrier.Outcome, len(window))
	var wg sync.WaitGroup
	for i, id := range window {
		wg.Add(1)
		go func(slot int, id carrier.Identifier) {
			defer wg.Done()
			outcomes[slot] = o.runPipeline(ctx, runID, id)
		}(i, id)
	}
	wg.Wait()

	for i := range outcomes {
		o.progress.observe(outcomes[i].Status)
	}
	return outcomes
}

// runPipeline executes fetch -> evaluate -> extract for one identifier.
// All failures are contained here.
func (o *Orchestrator) runPipeline(ctx context.Context, runID string, id carrier.Identifier) carrier.Outcome {
	address := carrier.LookupURL(o.cfg.QueryTemplate, id)
	outcome := carrier.Outcome{Identifier: id, Address: address}

	body, err := o.fetcher.Fetch(ctx, address)
	if err != nil {
		metrics.PipelineErrors.Inc()
		o.logger.Error("identifier errored",
			zap.String("identifier", string(id)),
			zap.Error(err),
		)
		outcome.Status = carrier.StatusErrored
		outcome.Err = err
		return outcome
	}

	doc := extract.Parse(body)
	verdict := o.filter.Evaluate(doc)
	if !verdict.Accepted {
		metrics.Rejections.WithLabelValues(string(verdict.Reason)).Inc()
		o.logger.Debug("identifier rejected",
			zap.String("identifier", string(id)),
			zap.String("reason", string(verdict.Reason)),
		)
		outcome.Status = carrier.StatusRejected
		outcome.Reason = verdict.Reason
		return outcome
	}

	metrics.RecordsAccepted.Inc()
	outcome.Status = carrier.StatusAccepted

	if o.cfg.AddressesOnly {
		return outcome
	}

	record := o.extractor.ExtractParsed(address, doc)
	if o.scout != nil {
		email, phone := o.scout.Enrich(ctx, address, doc)
		if email != "" {
			record.Fields[carrier.FieldEmail] = email
		}
		if phone != "" {
			record.Fields[carrier.FieldPhone] = phone
		}
	}
	outcome.Record = &record

	// The raw body is dropped once the hooks have run.
	o.persist(ctx, runID, id, record, body)
	return outcome
}

// persist runs the optional per-record hooks inside the containment
// boundary: their failures are logged, never propagated.
func (o *Orchestrator) persist(ctx context.Context, runID string, id carrier.Identifier, record carrier.Record, body string) {
	if o.store != nil {
		if err := o.store.SaveRecord(ctx, runID, record); err != nil {
			o.logger.Warn("record store write failed",
				zap.String("identifier", string(id)),
				zap.Error(err),
			)
		}
	}
	if o.archive != nil {
		if err := o.archive.ArchiveSnapshot(ctx, id, body); err != nil {
			o.logger.Warn("snapshot archive failed",
				zap.String("identifier", string(id)),
				zap.Error(err),
			)
		}
	}
}

func (o *Orchestrator) accumulate(result *Result, oc carrier.Outcome) {
	result.Outcomes = append(result.Outcomes, oc)
	switch oc.Status {
	case carrier.StatusAccepted:
		result.Summary.Accepted++
		result.Addresses = append(result.Addresses, oc.Address)
		if oc.Record != nil {
			result.Records = append(result.Records, *oc.Record)
		}
	case carrier.StatusRejected:
		result.Summary.Rejected++
		result.Summary.Rejections[oc.Reason]++
	case carrier.StatusErrored:
		result.Summary.Errored++
	}
}

func (o *Orchestrator) pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
