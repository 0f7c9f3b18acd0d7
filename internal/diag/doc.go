// Package diag defines the diagnostic model shared by every lint rule.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the manifest, variables, UI, rules, folder, auto-install and
//     layout rule groups.
//   - Offer light-weight utilities (Reporter, Bag) that let rules emit
//     diagnostics without coupling to concrete storage or formatting layers.
//   - Model quick-fix suggestions as structured edits that the CLI can apply.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – four-level enum (Hint, Info, Warning, Error) in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string
//     form; one constant per distinct rule violation.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span inside the owning document.
//   - JSONPath – the dotted/bracket path of the triggering manifest node.
//   - Args – structured key/value arguments for quick-fix consumers, e.g.
//     the offending name and a suggested replacement.
//   - Notes – related locations (e.g. the sibling occurrences found by a
//     duplicate-detection rule), sorted by position before attachment.
//   - Fixes – optional Fix records describing how to address the problem.
//
// Even a finding that spans two files is attributed to exactly one owning
// document: the referencing file carries the Primary span, the referenced
// file may appear in Notes.
//
// # Emitting diagnostics
//
// Rules construct a ReportBuilder via NewReportBuilder (or the helpers
// ReportError/ReportWarning/ReportInfo/ReportHint) and chain WithNote /
// WithArg / WithJSONPath / WithFix before calling Emit. diag.BagReporter
// aggregates diagnostics into a Bag, which supports sorting, deduplication,
// filtering, and transformation.
//
// # Consumers
//
//   - internal/diagfmt: renders Diagnostics into pretty/json/short/msgpack.
//   - internal/fix: applies Fix edits to documents.
//   - internal/lint: coordinates bag collection per document and transports
//     diagnostic data to CLI commands and host callbacks.
package diag
