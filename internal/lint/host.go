package lint

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// FileInfo is the stat result for one workspace path.
type FileInfo struct {
	Exists bool
	IsDir  bool
	Size   int64
}

// Host abstracts the editor or filesystem supplying documents. The default
// OSHost reads from disk; tests inject fakes to count loads and simulate
// missing files.
type Host interface {
	// OpenDocument returns the raw bytes of the document at path.
	OpenDocument(ctx context.Context, path string) ([]byte, error)
	// Stat reports existence and kind of path. A missing path is not an
	// error; it stats as non-existent.
	Stat(ctx context.Context, path string) (FileInfo, error)
}

// OSHost serves documents straight from the operating system.
type OSHost struct{}

func (OSHost) OpenDocument(_ context.Context, path string) ([]byte, error) {
	// #nosec G304 -- path is resolved against the template root by the caller
	return os.ReadFile(path)
}

func (OSHost) Stat(_ context.Context, path string) (FileInfo, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileInfo{}, nil
	}
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{Exists: true, IsDir: fi.IsDir(), Size: fi.Size()}, nil
}
