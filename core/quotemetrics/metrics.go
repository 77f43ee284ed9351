// Package quotemetrics defines the observability contract of the quoting
// engine. Sinks record recalculation events; implementations live under
// infra/quotemetrics.
package quotemetrics

import "time"

// RecalcEvent is one completed recalculation pass.
type RecalcEvent struct {
	SessionID       string
	Location        string
	Duration        time.Duration
	LineItems       int
	ProtectionItems int
	Diagnostics     int
	GrandTotal      float64
	Time            time.Time
}

// Sink records recalculation events for observability purposes.
type Sink interface {
	RecordRecalculation(ev RecalcEvent) error
}

// NopSink discards all events.
type NopSink struct{}

// RecordRecalculation implements Sink.
func (NopSink) RecordRecalculation(RecalcEvent) error { return nil }
