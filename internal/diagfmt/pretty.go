package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"templint/internal/diag"
	"templint/internal/source"
)

// Pretty renders diagnostics in a human-readable form. Expects the bag to be
// sorted already. For each diagnostic it prints
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a caret underline covering the span, then
// notes and fixes when enabled.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		printHeader(w, fs, d.Primary, d.Severity.String(), d.Code.ID(), d.Message, opts)
		printUnderline(w, fs, d.Primary, opts)

		if opts.ShowNotes {
			for _, note := range d.Notes {
				printHeader(w, fs, note.Span, "note", "", note.Msg, opts)
				printUnderline(w, fs, note.Span, opts)
			}
		}
		if opts.ShowFixes {
			for _, fix := range d.Fixes {
				fmt.Fprintf(w, "  fix: %s\n", fix.Title)
			}
		}
	}
}

func printHeader(w io.Writer, fs *source.FileSet, span source.Span, sev, code, msg string, opts PrettyOpts) {
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)

	var path string
	switch opts.PathMode {
	case PathModeAbsolute:
		path = f.FormatPath("absolute", "")
	case PathModeRelative:
		path = f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		path = f.FormatPath("basename", "")
	default:
		path = f.FormatPath("auto", "")
	}

	label := sev
	if code != "" {
		label = sev + " " + code
	}
	if opts.Color {
		label = severityColor(sev).Sprint(label)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, start.Line, start.Col, label, msg)
}

func severityColor(sev string) *color.Color {
	switch sev {
	case "ERROR":
		return color.New(color.FgRed, color.Bold)
	case "WARNING":
		return color.New(color.FgYellow, color.Bold)
	case "INFO":
		return color.New(color.FgBlue)
	case "HINT", "note":
		return color.New(color.FgCyan)
	}
	return color.New()
}

// printUnderline shows the first line covered by the span with a gutter and
// a caret marker. Width accounting goes through runewidth so the carets line
// up under wide runes.
func printUnderline(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts) {
	if span.Empty() {
		return
	}
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	lineText := f.GetLine(start.Line)
	if lineText == "" {
		return
	}

	gutter := fmt.Sprintf("%5d | ", start.Line)
	fmt.Fprintf(w, "%s%s\n", gutter, lineText)

	// Columns are 1-based byte offsets within the line.
	startCol := int(start.Col)
	endCol := int(end.Col)
	if end.Line != start.Line || endCol <= startCol {
		endCol = startCol + 1
	}
	prefix := clampBytes(lineText, startCol-1)
	marked := clampBytes(lineText, endCol-1)

	pad := strings.Repeat(" ", runewidth.StringWidth(prefix))
	width := runewidth.StringWidth(marked) - runewidth.StringWidth(prefix)
	if width < 1 {
		width = 1
	}
	caret := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		caret = color.New(color.FgGreen, color.Bold).Sprint(caret)
	}
	fmt.Fprintf(w, "%s| %s%s\n", strings.Repeat(" ", len(gutter)-2), pad, caret)
}

// clampBytes returns the first n bytes of s, clamped to its length.
func clampBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
