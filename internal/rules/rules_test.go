package rules

import (
	"context"
	"path/filepath"
	"testing"

	"templint/internal/diag"
	"templint/internal/jsontree"
	"templint/internal/source"
	"templint/internal/template"
)

// fakeLoader serves satellite documents from a map, standing in for the
// orchestrator's per-run cache.
type fakeLoader struct {
	fs    *source.FileSet
	docs  map[string]string
	stats map[string]Stat
}

func (l *fakeLoader) LoadDoc(_ context.Context, rel string) (*Doc, bool) {
	content, ok := l.docs[rel]
	if !ok {
		return nil, false
	}
	f := l.fs.Get(l.fs.AddBytes(rel, []byte(content)))
	tree, err := jsontree.Parse(f)
	if err != nil {
		return nil, false
	}
	return &Doc{File: f, Tree: tree}, true
}

func (l *fakeLoader) StatFile(_ context.Context, rel string) (Stat, bool) {
	if st, ok := l.stats[rel]; ok {
		return st, true
	}
	if content, ok := l.docs[rel]; ok {
		return Stat{Exists: true, Size: int64(len(content))}, true
	}
	return Stat{}, true
}

// harness builds a rule Context from a manifest body and satellite contents.
// Malformed manifests keep their partial tree, matching the orchestrator.
func harness(t *testing.T, root, manifest string, docs map[string]string) (*Context, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSetWithBase(root)
	manifestPath := filepath.Join(root, "template-info.json")
	f := fs.Get(fs.AddBytes(manifestPath, []byte(manifest)))
	tree, _ := jsontree.Parse(f)

	bag := diag.NewBag(256)
	c := &Context{
		Ctx:      context.Background(),
		Manifest: &Doc{File: f, Tree: tree},
		Dir:      template.NewDir(root, manifestPath, tree),
		Load:     &fakeLoader{fs: fs, docs: docs},
		Report:   diag.BagReporter{Bag: bag},
	}
	return c, bag
}

func codeIDs(bag *diag.Bag) []string {
	out := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID())
	}
	return out
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func itemsWithCode(bag *diag.Bag, code diag.Code) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func TestReportDuplicatesGroups(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("doc.json", []byte(`{"a": 1, "a": 2, "b": 3}`)))
	tree, err := jsontree.Parse(f)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	root := tree.Get(tree.Root)
	var occs []occurrence
	for _, propID := range root.Children {
		key, _ := tree.PropertyKey(propID)
		keyID := tree.PropertyKeyNode(propID)
		occs = append(occs, occurrence{Key: key, Tree: tree, Node: propID, Span: tree.ValueSpan(keyID)})
	}

	bag := diag.NewBag(16)
	reportDuplicates(diag.BagReporter{Bag: bag}, occs, diag.SevWarning, diag.VarDuplicateDefinition,
		func(key string) string { return key + " duplicated" },
		"also here")

	dups := itemsWithCode(bag, diag.VarDuplicateDefinition)
	if len(dups) != 2 {
		t.Fatalf("expected one diagnostic per duplicate member, got %d: %v", len(dups), codeIDs(bag))
	}
	for _, d := range dups {
		if d.Message != "a duplicated" {
			t.Fatalf("message = %q", d.Message)
		}
		if len(d.Notes) != 1 {
			t.Fatalf("each member should note its sibling, got %d notes", len(d.Notes))
		}
		if d.Notes[0].Msg != "also here" {
			t.Fatalf("note = %q", d.Notes[0].Msg)
		}
	}
	// The unique key produced nothing.
	if bag.Len() != 2 {
		t.Fatalf("bag has %d items, want 2", bag.Len())
	}
}
