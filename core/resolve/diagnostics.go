package resolve

// DiagKind classifies a resolution diagnostic.
type DiagKind string

const (
	// DiagNoProduct means the fallback chain was exhausted for a group.
	DiagNoProduct DiagKind = "no_product"
	// DiagMalformedFormula marks a formula term that was ignored, e.g. a
	// group reference cycling back onto its own rule.
	DiagMalformedFormula DiagKind = "malformed_formula"
	// DiagEnclosureOverflow means the required slots exceed the largest
	// enclosure tier; the largest tier is used anyway.
	DiagEnclosureOverflow DiagKind = "enclosure_overflow"
)

// Diagnostic is a non-fatal resolution event surfaced for operators. A
// diagnostic never aborts resolution of the rest of the configuration.
type Diagnostic struct {
	Kind       DiagKind
	GroupID    string
	PackageID  string
	InstanceID string
	Detail     string
}
