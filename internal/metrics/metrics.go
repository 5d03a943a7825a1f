// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the pipeline.
//
// It exposes a narrow Backend interface focused on counters and durations,
// with a global, pluggable backend defaulting to a no-op implementation so
// metric calls are always safe even when no real backend is configured.
// Concrete systems (Prometheus Pushgateway today) live in subpackages.
//
// These are push-style process metrics; the durable per-run quality metrics
// live in the quality package and are rows in etl_runs.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, seconds float64, labels Labels)
	// Flush pushes metrics if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)      {}
func (nopBackend) ObserveDuration(string, float64, Labels) {}
func (nopBackend) Flush() error                            { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error { return backend.Flush() }

// RecordStep measures latency plus success/failure for one pipeline step
// (extract, transform, validate, load, dead_letter, finalize).
func RecordStep(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"step": step, "status": status}
	backend.IncCounter("etl_step_total", 1, lbls)
	backend.ObserveDuration("etl_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a record-level counter for the given kind. Kinds
// mirror the run summary fields: processed, duplicates, valid, invalid,
// inserted, skipped, dead_lettered.
func RecordRows(kind string, n int64) {
	if n == 0 {
		return
	}
	backend.IncCounter("etl_records_total", float64(n), Labels{"kind": kind})
}
