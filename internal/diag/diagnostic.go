package diag

import (
	"cstrict/internal/source"
)

// Note attaches a secondary location and message to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces the bytes covered by Span with NewText.
// OldText, when non-empty, is a guard: the edit only applies if the buffer
// still contains exactly that text.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Fix is a remediation attached to a diagnostic. A fix is applied
// atomically: either all of its edits go in or none do.
type Fix struct {
	ID    string
	Title string
	Edits []TextEdit
}

// Diagnostic is a single finding: rule code, severity, primary location,
// message, optional notes and fixes. Immutable once placed in a Bag.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Category returns the audit category of the diagnostic's code.
func (d Diagnostic) Category() Category {
	return CategoryOf(d.Code)
}

// WithFix returns a copy of the diagnostic with the fix appended.
func (d Diagnostic) WithFix(title string, edits ...TextEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}
