package lint

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"templint/internal/diag"
	"templint/internal/jsontree"
)

// fakeHost serves documents from memory and counts every open so tests can
// prove the cache hits the host at most once per path.
type fakeHost struct {
	mu    sync.Mutex
	docs  map[string]string
	dirs  map[string]bool
	opens map[string]int
}

func newFakeHost(root string, docs map[string]string) *fakeHost {
	h := &fakeHost{
		docs:  make(map[string]string),
		dirs:  map[string]bool{root: true},
		opens: make(map[string]int),
	}
	for rel, content := range docs {
		h.docs[filepath.Join(root, rel)] = content
	}
	return h
}

func (h *fakeHost) OpenDocument(_ context.Context, path string) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opens[path]++
	content, ok := h.docs[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(content), nil
}

func (h *fakeHost) Stat(_ context.Context, path string) (FileInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dirs[path] {
		return FileInfo{Exists: true, IsDir: true}, nil
	}
	if content, ok := h.docs[path]; ok {
		return FileInfo{Exists: true, Size: int64(len(content))}, nil
	}
	return FileInfo{}, nil
}

const testRoot = "/work/T"

func templateDocs() map[string]string {
	return map[string]string{
		ManifestName: `{
			"name": "T",
			"label": "Sales",
			"templateType": "app",
			"dashboards": [{"file": "d.json"}],
			"datasetFiles": [{"file": "ds.json"}],
			"variableDefinition": "variables.json",
			"uiDefinition": "ui.json"
		}`,
		"d.json":         `{}`,
		"ds.json":        `{}`,
		"variables.json": `{"SalesDataset": {"variableType": {"type": "DatasetType"}}}`,
		"ui.json":        `{"pages": [{"variables": [{"name": "SalesDatset"}]}]}`,
	}
}

func TestRunMissingTarget(t *testing.T) {
	l := &Linter{Host: newFakeHost(testRoot, nil)}
	_, err := l.Run(context.Background(), "/work/nope")
	if err == nil || !strings.Contains(err.Error(), "no such file or directory") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunUnparseableManifestShortCircuits(t *testing.T) {
	host := newFakeHost(testRoot, map[string]string{ManifestName: ""})
	l := &Linter{Host: host}
	res, err := l.Run(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Dir == nil {
		t.Fatal("Dir should be set even without a manifest tree")
	}
	if res.Manifest != nil {
		t.Fatalf("Manifest = %+v, want nil", res.Manifest)
	}
	if res.Diagnostics.Len() != 0 {
		t.Fatalf("diagnostics = %d", res.Diagnostics.Len())
	}
}

func TestRunFullTemplate(t *testing.T) {
	host := newFakeHost(testRoot, templateDocs())

	var (
		mu       sync.Mutex
		events   int
		totals   = map[int]bool{}
		groups   = map[string]bool{}
		hookSeen bool
	)
	l := &Linter{
		Host: host,
		Jobs: 4,
		ManifestHook: func(tree *jsontree.Tree) {
			if tree != nil && tree.Root != jsontree.NoNode {
				hookSeen = true
			}
		},
		Progress: func(group string, completed, total int) {
			mu.Lock()
			events++
			totals[total] = true
			groups[group] = true
			mu.Unlock()
		},
	}

	res, err := l.Run(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !hookSeen {
		t.Fatal("manifest hook not invoked")
	}
	if events != len(ruleGroups) || !totals[len(ruleGroups)] {
		t.Fatalf("progress events = %d, totals = %v", events, totals)
	}
	for _, name := range GroupNames() {
		if !groups[name] {
			t.Fatalf("no progress event for group %q", name)
		}
	}

	// variables.json is consulted by several rule groups, but the host sees
	// exactly one open per document.
	for path, n := range host.opens {
		if n != 1 {
			t.Fatalf("%s opened %d times", path, n)
		}
	}
	if host.opens[filepath.Join(testRoot, "variables.json")] != 1 {
		t.Fatal("variables.json never loaded")
	}

	var typo *diag.Diagnostic
	for _, d := range res.Diagnostics.Items() {
		if d.Code == diag.UIUnknownVariable {
			typo = &d
			break
		}
	}
	if typo == nil {
		t.Fatalf("expected a UIUnknownVariable diagnostic, got %d items", res.Diagnostics.Len())
	}

	byDoc := res.ByDocument()
	uiPath := filepath.Join(testRoot, "ui.json")
	if len(byDoc[uiPath]) == 0 {
		t.Fatalf("ByDocument missing %s: %v", uiPath, keysOf(byDoc))
	}
}

func TestRunIsRepeatable(t *testing.T) {
	host := newFakeHost(testRoot, templateDocs())
	l := &Linter{Host: host, Jobs: 2}

	first, err := l.Run(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := l.Run(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	a, b := first.Diagnostics.Items(), second.Diagnostics.Items()
	if len(a) != len(b) {
		t.Fatalf("runs disagree: %d vs %d diagnostics", len(a), len(b))
	}
	for i := range a {
		if a[i].Code != b[i].Code || a[i].Message != b[i].Message {
			t.Fatalf("item %d differs: %v vs %v", i, a[i], b[i])
		}
	}

	// Fixing the typo clears the run entirely; nothing leaks from earlier
	// invocations of the same Linter.
	host.mu.Lock()
	host.docs[filepath.Join(testRoot, "ui.json")] = `{"pages": [{"variables": [{"name": "SalesDataset"}]}]}`
	host.mu.Unlock()

	third, err := l.Run(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.Diagnostics.Len() != 0 {
		t.Fatalf("clean template produced %d diagnostics", third.Diagnostics.Len())
	}
}

func TestRunTargetsManifestFile(t *testing.T) {
	host := newFakeHost(testRoot, templateDocs())
	l := &Linter{Host: host}
	res, err := l.Run(context.Background(), filepath.Join(testRoot, ManifestName))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Dir.Root != testRoot {
		t.Fatalf("root = %q", res.Dir.Root)
	}
}

func TestRunBagIsSorted(t *testing.T) {
	docs := templateDocs()
	// Two typos so the bag has multiple entries to order.
	docs["ui.json"] = `{"pages": [{"variables": [{"name": "zz"}, {"name": "SalesDatset"}]}]}`
	l := &Linter{Host: newFakeHost(testRoot, docs)}

	res, err := l.Run(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	items := res.Diagnostics.Items()
	for i := 1; i < len(items); i++ {
		if items[i-1].Primary.File == items[i].Primary.File &&
			items[i-1].Primary.Start > items[i].Primary.Start {
			t.Fatalf("bag not sorted at %d: %v after %v", i, items[i-1].Primary, items[i].Primary)
		}
	}
}

func keysOf(m map[string][]diag.Diagnostic) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
