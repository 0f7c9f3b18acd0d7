package template

import (
	"testing"

	"templint/internal/jsontree"
	"templint/internal/source"
)

func parseManifest(t *testing.T, content string) *jsontree.Tree {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("template-info.json", []byte(content)))
	tree, err := jsontree.Parse(f)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return tree
}

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"app":          TypeApp,
		"App":          TypeApp,
		"dashboard":    TypeDashboard,
		"DASHBOARD":    TypeDashboard,
		"data":         TypeData,
		"embeddedapp":  TypeEmbeddedApp,
		"EmbeddedApp":  TypeEmbeddedApp,
		" dashboard ":  TypeDashboard,
		"":             TypeApp,
		"somethingNew": TypeApp,
	}
	for input, want := range cases {
		if got := ParseType(input); got != want {
			t.Errorf("ParseType(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewDirSatellites(t *testing.T) {
	tree := parseManifest(t, `{
		"templateType": "dashboard",
		"name": "Sales",
		"variableDefinition": "variables.json",
		"uiDefinition": "ui.json",
		"ruleDefinition": "legacy-rules.json",
		"rules": [
			{"type": "templateToApp", "file": "rules1.json"},
			{"type": "appToTemplate", "file": "rules2.json"}
		]
	}`)
	d := NewDir("/work/Sales", "/work/Sales/template-info.json", tree)

	if d.Type != TypeDashboard {
		t.Fatalf("Type = %v, want dashboard", d.Type)
	}
	if d.Name != "Sales" {
		t.Fatalf("Name = %q", d.Name)
	}

	if ref, ok := d.Satellite(KindVariables); !ok || ref.RelPath != "variables.json" {
		t.Fatalf("variables satellite = %+v ok=%v", ref, ok)
	}
	if ref, ok := d.Satellite(KindUI); !ok || ref.RelPath != "ui.json" {
		t.Fatalf("ui satellite = %+v ok=%v", ref, ok)
	}
	if _, ok := d.Satellite(KindFolder); ok {
		t.Fatalf("folder satellite should be absent")
	}

	rules := d.SatellitesOf(KindRules)
	if len(rules) != 3 {
		t.Fatalf("rules satellites = %d, want legacy + 2 entries", len(rules))
	}
	paths := map[string]bool{}
	for _, ref := range rules {
		paths[ref.RelPath] = true
		if ref.Field == jsontree.NoNode {
			t.Fatalf("satellite %q has no referencing field", ref.RelPath)
		}
	}
	for _, want := range []string{"legacy-rules.json", "rules1.json", "rules2.json"} {
		if !paths[want] {
			t.Fatalf("rules satellites missing %q: %v", want, paths)
		}
	}
}

func TestNewDirSkipsInvalidPaths(t *testing.T) {
	tree := parseManifest(t, `{
		"variableDefinition": "../outside.json",
		"uiDefinition": "",
		"layoutDefinition": 42,
		"folderDefinition": "folder.json"
	}`)
	d := NewDir("/work/T", "/work/T/template-info.json", tree)

	if len(d.Satellites) != 1 {
		t.Fatalf("satellites = %+v, want only the folder", d.Satellites)
	}
	if d.Satellites[0].Kind != KindFolder {
		t.Fatalf("surviving satellite kind = %v", d.Satellites[0].Kind)
	}
}

func TestNewDirNilTree(t *testing.T) {
	d := NewDir("/work/T", "/work/T/template-info.json", nil)
	if d.Type != TypeApp {
		t.Fatalf("nil tree Type = %v, want the app default", d.Type)
	}
	if len(d.Satellites) != 0 {
		t.Fatalf("nil tree produced satellites: %+v", d.Satellites)
	}
}
