// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// It adapts the generic metrics.Backend interface to Prometheus by:
//
//   - using client_golang CounterVec and SummaryVec collectors,
//   - mapping the status and kind labels onto Prometheus labels; the job
//     name becomes the Pushgateway grouping key rather than a metric label
//     (the pusher rejects metrics that carry their own "job" label),
//   - pushing collected metrics to a Pushgateway instead of exposing an HTTP
//     scrape endpoint, which suits short-lived batch runs.
//
// All Prometheus-specific dependencies stay in this package so the rest of
// the project can swap backends without changes.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"recordopt/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	runCounter  *prometheus.CounterVec // "recordopt_runs_total"
	runDuration *prometheus.SummaryVec // "recordopt_run_duration_seconds"
	recCounter  *prometheus.CounterVec // "recordopt_records_total"
}

// NewBackend constructs a Pushgateway backend. jobName is the Pushgateway
// grouping key (usually the run's job name); gatewayURL is the base URL of
// the gateway.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "recordopt"
	}

	reg := prometheus.NewRegistry()

	runCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recordopt_runs_total",
			Help: "Total optimization runs, partitioned by status.",
		},
		[]string{"status"},
	)
	runDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "recordopt_run_duration_seconds",
			Help:       "Duration of optimization runs in seconds, partitioned by status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"status"},
	)
	recCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recordopt_records_total",
			Help: "Record-level counts per kind (in, out, duplicates).",
		},
		[]string{"kind"},
	)

	if err := reg.Register(runCounter); err != nil {
		return nil, fmt.Errorf("prompush: register run counter: %w", err)
	}
	if err := reg.Register(runDuration); err != nil {
		return nil, fmt.Errorf("prompush: register run summary: %w", err)
	}
	if err := reg.Register(recCounter); err != nil {
		return nil, fmt.Errorf("prompush: register record counter: %w", err)
	}

	return &Backend{
		gatewayURL:  gatewayURL,
		jobName:     jobName,
		reg:         reg,
		runCounter:  runCounter,
		runDuration: runDuration,
		recCounter:  recCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "recordopt_runs_total":
		if b.runCounter != nil {
			b.runCounter.WithLabelValues(labels["status"]).Add(delta)
		}
	case "recordopt_records_total":
		if b.recCounter != nil {
			b.recCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveDuration(name string, value float64, labels metrics.Labels) {
	if name != "recordopt_run_duration_seconds" || b.runDuration == nil {
		return
	}
	b.runDuration.WithLabelValues(labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
