package diag

import "ripple/internal/source"

// Code identifies a diagnostic category. The inventory of codes belongs to
// the analysis pipeline; this core treats them as opaque labels.
type Code string

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one analysis finding. The core never interprets it beyond
// "present vs. absent"; rendering and gating are driven by Primary and
// Severity only.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}
