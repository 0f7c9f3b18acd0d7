package diag

import (
	"templint/internal/source"
)

// Note points at a related location, e.g. the other occurrences found by a
// duplicate-detection rule.
type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit replaces one span with new text.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a quick-fix suggestion attached to a diagnostic.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is one finding. Primary names the owning document even when the
// finding involves a second file; the other file shows up in Notes.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// JSONPath is the dotted/bracket path of the triggering node, used by
	// quick-fix consumers to target the manifest field.
	JSONPath string
	// Args carries structured values for quick-fix consumers, e.g. the
	// offending name and a suggested replacement.
	Args  map[string]string
	Notes []Note
	Fixes []Fix
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}

func (d Diagnostic) WithArg(key, value string) Diagnostic {
	if d.Args == nil {
		d.Args = make(map[string]string, 2)
	}
	d.Args[key] = value
	return d
}
