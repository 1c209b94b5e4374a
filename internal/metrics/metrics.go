// Package metrics registers the Prometheus instruments for the scan
// pipeline. Counters use the default registry and are served by the status
// API's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchAttempts counts every dispatched HTTP attempt, including retries.
	FetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrierscan_fetch_attempts_total",
		Help: "The total number of HTTP fetch attempts dispatched.",
	})
	// FetchRetries counts attempts beyond the first for a given address.
	FetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrierscan_fetch_retries_total",
		Help: "The total number of fetch retries after transient failures.",
	})
	// FetchFailures counts fetches that exhausted every attempt.
	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrierscan_fetch_failures_total",
		Help: "The total number of terminally failed fetches.",
	})
	// RecordsAccepted counts identifiers that passed every predicate.
	RecordsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrierscan_records_accepted_total",
		Help: "The total number of identifiers accepted by the filter.",
	})
	// Rejections counts filtered identifiers by rejection reason.
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrierscan_rejections_total",
		Help: "The total number of rejected identifiers, by reason.",
	}, []string{"reason"})
	// PipelineErrors counts identifiers whose pipeline errored terminally.
	PipelineErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrierscan_pipeline_errors_total",
		Help: "The total number of identifiers that errored terminally.",
	})
	// RecordsWritten counts rows emitted by the record sink.
	RecordsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrierscan_records_written_total",
		Help: "The total number of records written to the output file.",
	})
)
