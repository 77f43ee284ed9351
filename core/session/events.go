package session

import "time"

// RecalculatedEvent is published on the event bus after every completed
// recalculation pass.
type RecalculatedEvent struct {
	SessionID       string
	Location        string
	Duration        time.Duration
	LineItems       int
	ProtectionItems int
	Diagnostics     int
	GrandTotal      float64
	Time            time.Time
}

// DiagnosticEvent forwards one resolution diagnostic to bus subscribers.
type DiagnosticEvent struct {
	SessionID string
	Kind      string
	GroupID   string
	Detail    string
}
