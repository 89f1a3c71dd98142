// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from optimization runs.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) for counters and duration-style
//     observations.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete systems (Prometheus Pushgateway today) live in subpackages so
//     the rest of the codebase depends only on this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a value in a latency/duration style metric.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics stay optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                              { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordRun captures the common per-run pattern: one status-labeled counter
// increment plus the run duration.
func RecordRun(job string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "status": status}
	backend.IncCounter("recordopt_runs_total", 1, lbls)
	backend.ObserveDuration("recordopt_run_duration_seconds", d.Seconds(), lbls)
}

// RecordRecords increments a record-level counter for the given kind.
//
// Typical kinds mirror the optimizer's stats: "in", "out", "duplicates".
func RecordRecords(job, kind string, n int) {
	if n == 0 {
		return
	}
	backend.IncCounter("recordopt_records_total", float64(n), Labels{"job": job, "kind": kind})
}
