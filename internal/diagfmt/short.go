package diagfmt

import (
	"fmt"
	"io"

	"templint/internal/diag"
	"templint/internal/source"
)

// Short writes the one-line-per-diagnostic format used in golden files.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) {
	out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes)
	if out == "" {
		return
	}
	fmt.Fprintln(w, out)
}
