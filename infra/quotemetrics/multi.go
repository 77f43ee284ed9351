package quotemetrics

import coremetrics "github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/quotemetrics"

// MultiSink fans recalculation events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRecalculation forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordRecalculation(ev coremetrics.RecalcEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRecalculation(ev); err != nil {
			return err
		}
	}
	return nil
}
