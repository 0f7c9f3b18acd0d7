package jsontree_test

import (
	"strings"
	"testing"

	. "templint/internal/jsontree"
	"templint/internal/source"
	"templint/internal/testkit"
)

func parseDoc(t *testing.T, content string) (*Tree, *source.File, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("doc.json", []byte(content))
	f := fs.Get(id)
	tree, err := Parse(f)
	return tree, f, err
}

func mustParse(t *testing.T, content string) (*Tree, *source.File) {
	t.Helper()
	tree, f, err := parseDoc(t, content)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return tree, f
}

func TestParseSpansAndInvariants(t *testing.T) {
	src := `{
  "name": "MyTemplate",
  "count": 3,
  "active": true,
  "missing": null,
  "tags": ["a", "b"]
}`
	tree, f := mustParse(t, src)
	if err := testkit.CheckTreeInvariants(tree, f); err != nil {
		t.Fatalf("tree invariants violated: %v", err)
	}

	root := tree.Get(tree.Root)
	if root.Kind != KindObject {
		t.Fatalf("root kind = %s, want object", root.Kind)
	}
	if root.Span.Start != 0 || int(root.Span.End) != len(src) {
		t.Fatalf("root span = %v, want 0-%d", root.Span, len(src))
	}

	nameID := tree.Member(tree.Root, "name")
	name, ok := tree.StringValue(nameID)
	if !ok || name != "MyTemplate" {
		t.Fatalf("name = %q ok=%v", name, ok)
	}
	raw := src[tree.Get(nameID).Span.Start:tree.Get(nameID).Span.End]
	if raw != `"MyTemplate"` {
		t.Fatalf("string span captures %q", raw)
	}
	vs := tree.ValueSpan(nameID)
	if src[vs.Start:vs.End] != "MyTemplate" {
		t.Fatalf("ValueSpan captures %q, want the unquoted text", src[vs.Start:vs.End])
	}

	countID := tree.Member(tree.Root, "count")
	if n := tree.Get(countID); n.Kind != KindNumber || n.Num != 3 {
		t.Fatalf("count node = %+v", n)
	}
	activeID := tree.Member(tree.Root, "active")
	if n := tree.Get(activeID); n.Kind != KindBool || !n.Bool {
		t.Fatalf("active node = %+v", n)
	}
	if n := tree.Get(tree.Member(tree.Root, "missing")); n.Kind != KindNull {
		t.Fatalf("missing node kind = %s", n.Kind)
	}
	tags := tree.Get(tree.Member(tree.Root, "tags"))
	if tags.Kind != KindArray || len(tags.Children) != 2 {
		t.Fatalf("tags node = %+v", tags)
	}
}

func TestParseDuplicateKeysPreserved(t *testing.T) {
	tree, _ := mustParse(t, `{"k": 1, "k": 2, "other": 3}`)

	root := tree.Get(tree.Root)
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(root.Children))
	}

	// Member returns the first occurrence.
	first := tree.Get(tree.Member(tree.Root, "k"))
	if first.Num != 1 {
		t.Fatalf("Member returned value %v, want first occurrence 1", first.Num)
	}
}

func TestParseStringEscapes(t *testing.T) {
	cases := map[string]string{
		`{"s": "a\nb"}`:              "a\nb",
		`{"s": "tab\there"}`:         "tab\there",
		`{"s": "quote\"end"}`:        `quote"end`,
		`{"s": "back\\slash"}`:       `back\slash`,
		`{"s": "\u0041\u0042\u0043"}`: "ABC",
		`{"s": "\uD83D\uDE00"}`:    "\U0001F600",
		`{"s": "sol\/idus"}`:         "sol/idus",
	}
	for src, want := range cases {
		tree, _ := mustParse(t, src)
		got, ok := tree.StringValue(tree.Member(tree.Root, "s"))
		if !ok || got != want {
			t.Errorf("Parse(%s): s = %q, want %q", src, got, want)
		}
	}
}

func TestParseCommentsAndTrailingCommas(t *testing.T) {
	src := `{
  // line comment
  "a": 1, /* block */
  "b": [1, 2,],
}`
	tree, f, err := parseDoc(t, src)
	if err != nil {
		t.Fatalf("jsonc input failed to parse: %v", err)
	}
	if err := testkit.CheckTreeInvariants(tree, f); err != nil {
		t.Fatalf("tree invariants violated: %v", err)
	}
	b := tree.Get(tree.Member(tree.Root, "b"))
	if b == nil || b.Kind != KindArray || len(b.Children) != 2 {
		t.Fatalf("b = %+v", b)
	}
}

func TestParseMalformedKeepsPartialTree(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unterminated object", `{"a": 1, "b": 2`},
		{"unterminated string", `{"a": "oops`},
		{"missing colon", `{"a" 1}`},
		{"bare value garbage", `{"a": @}`},
	}
	for _, tc := range cases {
		tree, _, err := parseDoc(t, tc.src)
		if err == nil {
			t.Errorf("%s: expected parse error", tc.name)
			continue
		}
		if tree == nil || tree.Root == NoNode {
			t.Errorf("%s: expected a partial tree", tc.name)
			continue
		}
		// The first property should have survived in every case.
		if _, ok := tree.PropertyKey(tree.Get(tree.Root).Children[0]); !ok {
			t.Errorf("%s: first property lost", tc.name)
		}
	}
}

func TestParseEmptyDocument(t *testing.T) {
	tree, _, err := parseDoc(t, "   \n\t ")
	if err == nil {
		t.Fatalf("expected error for empty document")
	}
	if tree == nil || tree.Root != NoNode {
		t.Fatalf("empty document should yield a rootless tree")
	}
}

func TestParseTrailingContent(t *testing.T) {
	_, _, err := parseDoc(t, `{"a": 1} {"b": 2}`)
	if err == nil || !strings.Contains(err.Error(), "trailing") {
		t.Fatalf("expected trailing content error, got %v", err)
	}
}

func TestNilSafeAccessors(t *testing.T) {
	var tree *Tree
	if tree.Get(0) != nil {
		t.Fatalf("nil tree Get should return nil")
	}
	if tree.Len() != 0 {
		t.Fatalf("nil tree Len should be 0")
	}

	full, _ := mustParse(t, `{"a": 1}`)
	if full.Get(NoNode) != nil {
		t.Fatalf("Get(NoNode) should return nil")
	}
	if id := full.Member(NoNode, "a"); id != NoNode {
		t.Fatalf("Member(NoNode) = %d, want NoNode", id)
	}
	if id := full.PropertyValue(NoNode); id != NoNode {
		t.Fatalf("PropertyValue(NoNode) = %d, want NoNode", id)
	}
}
