// Package metrics records per-run pipeline metrics.
//
// Components receive a Recorder; the default NoopRecorder does nothing so the
// library never needs nil checks. The CLI swaps in a PrometheusRecorder when
// --metrics-file is set and writes the registry once at the end of the run in
// the node_exporter textfile format.
package metrics

import "time"

// Outcome enumerates final run states for the outcome counter.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeEmpty    Outcome = "empty"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Recorder defines observability hooks for a conversion run.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	SetDocuments(n int)
	IncRendered()
	ObserveRenderDuration(d time.Duration)
	SetPages(n int)
	IncOutcome(o Outcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) SetDocuments(int)                           {}
func (NoopRecorder) IncRendered()                               {}
func (NoopRecorder) ObserveRenderDuration(time.Duration)        {}
func (NoopRecorder) SetPages(int)                               {}
func (NoopRecorder) IncOutcome(Outcome)                         {}
