package jsonpath

import (
	"testing"

	"templint/internal/jsontree"
	"templint/internal/source"
)

func parse(t *testing.T, content string) *jsontree.Tree {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("doc.json", []byte(content)))
	tree, err := jsontree.Parse(f)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return tree
}

func stringsOf(t *testing.T, tree *jsontree.Tree, ids []jsontree.NodeID) []string {
	t.Helper()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		s, ok := tree.StringValue(id)
		if !ok {
			t.Fatalf("node %d is not a string", id)
		}
		out = append(out, s)
	}
	return out
}

func TestMatchLiteralKeys(t *testing.T) {
	tree := parse(t, `{"a": {"b": {"c": "deep"}}}`)

	got := Match(tree, tree.Root, Path("a", "b", "c"))
	if len(got) != 1 {
		t.Fatalf("Match returned %d nodes, want 1", len(got))
	}
	if s, _ := tree.StringValue(got[0]); s != "deep" {
		t.Fatalf("matched value = %q, want deep", s)
	}

	if got := Match(tree, tree.Root, Path("a", "x")); len(got) != 0 {
		t.Fatalf("missing key matched %d nodes", len(got))
	}
	if got := Match(tree, tree.Root, Path("a", "b", "c", "d")); len(got) != 0 {
		t.Fatalf("descending past a scalar matched %d nodes", len(got))
	}
}

func TestMatchWildcardFanOut(t *testing.T) {
	tree := parse(t, `{
		"pages": [
			{"variables": [{"name": "one"}, {"name": "two"}]},
			{"variables": [{"name": "three"}]},
			{"title": "no variables"}
		]
	}`)

	got := Match(tree, tree.Root, Path("pages", "*", "variables", "*", "name"))
	names := stringsOf(t, tree, got)
	want := []string{"one", "two", "three"}
	if len(names) != len(want) {
		t.Fatalf("matched %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("document order broken: matched %v, want %v", names, want)
		}
	}
}

func TestMatchWildcardOverObjectValues(t *testing.T) {
	tree := parse(t, `{"vals": {"x": "1", "y": "2"}}`)
	got := Match(tree, tree.Root, Path("vals", "*"))
	if len(got) != 2 {
		t.Fatalf("wildcard over object matched %d values, want 2", len(got))
	}
	// Values, not keys.
	if s, _ := tree.StringValue(got[0]); s != "1" {
		t.Fatalf("first value = %q, want 1", s)
	}
}

func TestMatchIndexBounds(t *testing.T) {
	tree := parse(t, `{"arr": ["a", "b"]}`)

	if got := Match(tree, tree.Root, Path("arr", 1)); len(got) != 1 {
		t.Fatalf("index 1 matched %d nodes", len(got))
	}
	if got := Match(tree, tree.Root, Path("arr", 2)); len(got) != 0 {
		t.Fatalf("out-of-range index matched %d nodes", len(got))
	}
	if got := Match(tree, tree.Root, Path("arr", -1)); len(got) != 0 {
		t.Fatalf("negative index matched %d nodes", len(got))
	}
	// Index segment against an object contributes nothing.
	if got := Match(tree, tree.Root, Path(0)); len(got) != 0 {
		t.Fatalf("index on object matched %d nodes", len(got))
	}
}

func TestMatchFirstStopsEarly(t *testing.T) {
	tree := parse(t, `{"arr": ["a", "b", "c"]}`)

	id, ok := MatchFirst(tree, tree.Root, Path("arr", "*"), nil)
	if !ok {
		t.Fatalf("MatchFirst found nothing")
	}
	if s, _ := tree.StringValue(id); s != "a" {
		t.Fatalf("MatchFirst = %q, want a", s)
	}

	id, ok = MatchFirst(tree, tree.Root, Path("arr", "*"), func(n jsontree.NodeID) bool {
		s, _ := tree.StringValue(n)
		return s == "b"
	})
	if !ok {
		t.Fatalf("predicated MatchFirst found nothing")
	}
	if s, _ := tree.StringValue(id); s != "b" {
		t.Fatalf("predicated MatchFirst = %q, want b", s)
	}

	if _, ok := MatchFirst(tree, tree.Root, Path("missing"), nil); ok {
		t.Fatalf("MatchFirst on missing path reported ok")
	}
}

func TestMatchPropertiesIncludesDuplicates(t *testing.T) {
	tree := parse(t, `{"obj": {"k": 1, "k": 2, "other": 3}}`)

	got := MatchProperties(tree, tree.Root, Path("obj", "k"))
	if len(got) != 2 {
		t.Fatalf("MatchProperties found %d properties, want both duplicates", len(got))
	}
	for _, propID := range got {
		if key, _ := tree.PropertyKey(propID); key != "k" {
			t.Fatalf("unexpected property key %q", key)
		}
	}
}

func TestFindProperty(t *testing.T) {
	tree := parse(t, `{"icons": {"appBadge": "badge.png"}}`)

	propID := FindProperty(tree, tree.Root, Path("icons", "appBadge"))
	if propID == jsontree.NoNode {
		t.Fatalf("FindProperty found nothing")
	}
	if key, _ := tree.PropertyKey(propID); key != "appBadge" {
		t.Fatalf("FindProperty key = %q", key)
	}

	if id := FindProperty(tree, tree.Root, Path("icons", "missing")); id != jsontree.NoNode {
		t.Fatalf("FindProperty on missing key = %d", id)
	}
	// Patterns ending in a non-key segment have no property to find.
	if id := FindProperty(tree, tree.Root, Path("icons", 0)); id != jsontree.NoNode {
		t.Fatalf("FindProperty on index tail = %d", id)
	}
}

func TestNodeDisplayPath(t *testing.T) {
	tree := parse(t, `{"pages": [{"variables": [{"name": "v"}]}], "weird key": {"x": 1}}`)

	nameID := Match(tree, tree.Root, Path("pages", "*", "variables", "*", "name"))[0]
	if got := NodeDisplayPath(tree, nameID); got != "pages[0].variables[0].name" {
		t.Fatalf("NodeDisplayPath = %q", got)
	}

	// Property nodes report the path of their key.
	propID := tree.MemberProperty(tree.Root, "pages")
	if got := NodeDisplayPath(tree, propID); got != "pages" {
		t.Fatalf("property display path = %q", got)
	}

	xID := Match(tree, tree.Root, Path("weird key", "x"))[0]
	if got := NodeDisplayPath(tree, xID); got != `["weird key"].x` {
		t.Fatalf("non-identifier key path = %q", got)
	}
}

func TestDisplayString(t *testing.T) {
	cases := []struct {
		pat  Pattern
		want string
	}{
		{Path("a", "b"), "a.b"},
		{Path("a", 0, "b"), "a[0].b"},
		{Path("a", "*", "b"), "a.*.b"},
		{Path("has space", "x"), `["has space"].x`},
		{Path(), ""},
	}
	for _, tc := range cases {
		if got := DisplayString(tc.pat); got != tc.want {
			t.Errorf("DisplayString = %q, want %q", got, tc.want)
		}
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	tree := parse(t, `{
		"pages": [
			{"variables": [{"name": "a"}, {"name": "b"}]},
			{"variables": [{"name": "c"}]}
		]
	}`)
	pat := Path("pages", "*", "variables", "*", "name")

	first := Match(tree, tree.Root, pat)
	second := Match(tree, tree.Root, pat)
	if len(first) != len(second) {
		t.Fatalf("repeated match differs in size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated match differs at %d: %v vs %v", i, first[i], second[i])
		}
	}
	if got := stringsOf(t, tree, first); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("matched names = %v", got)
	}
}
