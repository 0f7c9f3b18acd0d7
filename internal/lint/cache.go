package lint

import (
	"context"
	"path/filepath"
	"sync"

	"templint/internal/jsontree"
	"templint/internal/rules"
	"templint/internal/source"
)

// docCache is the per-run document cache. One lint run owns it exclusively;
// a fresh run gets a fresh cache. Loads are single-flight per relative path,
// and failures are cached as absent so the filesystem is hit at most once
// per path per run.
type docCache struct {
	host Host
	root string

	mu    sync.Mutex
	files *source.FileSet
	docs  map[string]*docEntry
	stats map[string]*statEntry
}

type docEntry struct {
	once sync.Once
	doc  *rules.Doc
	ok   bool
}

type statEntry struct {
	once sync.Once
	stat rules.Stat
	ok   bool
}

func newDocCache(host Host, root string, files *source.FileSet) *docCache {
	return &docCache{
		host:  host,
		root:  root,
		files: files,
		docs:  make(map[string]*docEntry),
		stats: make(map[string]*statEntry),
	}
}

func (c *docCache) resolve(rel string) string {
	return filepath.Join(c.root, filepath.FromSlash(rel))
}

// LoadDoc implements rules.Loader. Paths failing validity never reach the
// cache; callers gate on source.IsValidRelativePath first, and this guard
// only backstops them.
func (c *docCache) LoadDoc(ctx context.Context, rel string) (*rules.Doc, bool) {
	if !source.IsValidRelativePath(rel) {
		return nil, false
	}

	c.mu.Lock()
	entry, found := c.docs[rel]
	if !found {
		entry = &docEntry{}
		c.docs[rel] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		content, err := c.host.OpenDocument(ctx, c.resolve(rel))
		if err != nil {
			return
		}

		c.mu.Lock()
		fileID := c.files.AddBytes(c.resolve(rel), content)
		file := c.files.Get(fileID)
		c.mu.Unlock()

		tree, err := jsontree.Parse(file)
		if err != nil {
			return
		}
		entry.doc = &rules.Doc{File: file, Tree: tree}
		entry.ok = true
	})
	return entry.doc, entry.ok
}

// StatFile implements rules.Loader with the same caching discipline.
func (c *docCache) StatFile(ctx context.Context, rel string) (rules.Stat, bool) {
	if !source.IsValidRelativePath(rel) {
		return rules.Stat{}, false
	}

	c.mu.Lock()
	entry, found := c.stats[rel]
	if !found {
		entry = &statEntry{}
		c.stats[rel] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		fi, err := c.host.Stat(ctx, c.resolve(rel))
		if err != nil {
			return
		}
		entry.stat = rules.Stat{Exists: fi.Exists, IsDir: fi.IsDir, Size: fi.Size}
		entry.ok = true
	})
	return entry.stat, entry.ok
}
