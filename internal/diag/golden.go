package diag

import (
	"fmt"
	"sort"
	"strings"

	"templint/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShortDiagnostics renders diagnostics one per line in a stable order,
// suitable for golden assertions and the CLI short format:
//
//	SEVERITY CODE path:line:col message
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]shortDiagnostic, 0, len(diags))
	for _, d := range diags {
		rendered = appendShort(rendered, d, fs, includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendShort(out []shortDiagnostic, d Diagnostic, fs *source.FileSet, includeNotes bool) []shortDiagnostic {
	start, _ := fs.Resolve(d.Primary)
	path := fs.Get(d.Primary.File).FormatPath("relative", fs.BaseDir())
	out = append(out, shortDiagnostic{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Path:     path,
		Line:     start.Line,
		Column:   start.Col,
		Message:  d.Message,
	})
	if includeNotes {
		for _, n := range d.Notes {
			nStart, _ := fs.Resolve(n.Span)
			out = append(out, shortDiagnostic{
				Severity: "NOTE",
				Code:     d.Code.ID(),
				Path:     fs.Get(n.Span.File).FormatPath("relative", fs.BaseDir()),
				Line:     nStart.Line,
				Column:   nStart.Col,
				Message:  n.Msg,
			})
		}
	}
	return out
}
