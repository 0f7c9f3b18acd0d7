package diagfmt

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"templint/internal/diag"
	"templint/internal/source"
)

// MsgPack renders the diagnostics as msgpack, mirroring the JSON shape so
// both formats stay field-compatible for machine consumers.
func MsgPack(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output := BuildDiagnosticsOutput(bag, fs, opts)
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json")
	return encoder.Encode(output)
}
