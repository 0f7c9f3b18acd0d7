package rules

import (
	"strings"
	"testing"

	"templint/internal/diag"
)

func TestRulesFilesCrossFileDuplicates(t *testing.T) {
	manifest := `{
		"dashboards": [{"file": "d.json"}],
		"rules": [
			{"type": "templateToApp", "file": "rules-a.json"},
			{"type": "appToTemplate", "file": "rules-b.json"}
		]
	}`
	c, bag := harness(t, "/work/T", manifest, map[string]string{
		"d.json": `{}`,
		"rules-a.json": `{
			"constants": [{"name": "Threshold", "value": 10}],
			"rules": [{"name": "renameFields", "appliesTo": []}]
		}`,
		"rules-b.json": `{
			"constants": [{"name": "Threshold", "value": 20}],
			"rules": [{"name": "renameFields", "appliesTo": []}]
		}`,
	})
	RulesFiles(c)

	constants := itemsWithCode(bag, diag.RulDuplicateConstant)
	if len(constants) != 2 {
		t.Fatalf("RulDuplicateConstant = %d, want one per file (%v)", len(constants), codeIDs(bag))
	}
	for _, d := range constants {
		if d.Severity != diag.SevWarning {
			t.Fatalf("constant severity = %v", d.Severity)
		}
		if len(d.Notes) != 1 {
			t.Fatalf("constant notes = %+v", d.Notes)
		}
		if d.Notes[0].Span.File == d.Primary.File {
			t.Fatalf("note should point into the other file")
		}
	}

	names := itemsWithCode(bag, diag.RulDuplicateRuleName)
	if len(names) != 2 {
		t.Fatalf("RulDuplicateRuleName = %d (%v)", len(names), codeIDs(bag))
	}
	if names[0].Severity != diag.SevHint {
		t.Fatalf("rule name severity = %v, want hint", names[0].Severity)
	}
}

func TestRulesFilesDuplicateMacros(t *testing.T) {
	manifest := `{
		"dashboards": [{"file": "d.json"}],
		"ruleDefinition": "rules.json"
	}`
	c, bag := harness(t, "/work/T", manifest, map[string]string{
		"d.json": `{}`,
		"rules.json": `{
			"macros": [
				{
					"namespace": "strings",
					"definitions": [
						{"name": "upper", "returns": "x"},
						{"name": "upper", "returns": "y"}
					]
				},
				{
					"namespace": "numbers",
					"definitions": [{"name": "upper", "returns": "z"}]
				}
			]
		}`,
	})
	RulesFiles(c)

	// Same name under different namespaces is not a duplicate.
	macros := itemsWithCode(bag, diag.RulDuplicateMacro)
	if len(macros) != 2 {
		t.Fatalf("RulDuplicateMacro = %d (%v)", len(macros), codeIDs(bag))
	}
	for _, d := range macros {
		if !strings.Contains(d.Message, `"strings:upper"`) {
			t.Fatalf("message = %q", d.Message)
		}
	}
}

func TestRulesFilesNoOpMacro(t *testing.T) {
	manifest := `{
		"dashboards": [{"file": "d.json"}],
		"ruleDefinition": "rules.json"
	}`
	c, bag := harness(t, "/work/T", manifest, map[string]string{
		"d.json": `{}`,
		"rules.json": `{
			"macros": [{
				"namespace": "ns",
				"definitions": [
					{"name": "doesNothing"},
					{"name": "emptyActions", "actions": []},
					{"name": "hasReturns", "returns": "${value}"},
					{"name": "hasActions", "actions": [{"action": "delete"}]}
				]
			}]
		}`,
	})
	RulesFiles(c)

	noop := itemsWithCode(bag, diag.RulNoOpMacro)
	if len(noop) != 2 {
		t.Fatalf("RulNoOpMacro = %d (%v)", len(noop), codeIDs(bag))
	}
	for _, d := range noop {
		if d.Severity != diag.SevInfo {
			t.Fatalf("severity = %v", d.Severity)
		}
		if !strings.HasPrefix(d.Message, `macro "ns:`) {
			t.Fatalf("message = %q", d.Message)
		}
	}
}

func TestRulesFilesDedupesRepeatedPaths(t *testing.T) {
	// The same file reachable through ruleDefinition and rules[*].file is
	// read once; its entries must not self-duplicate.
	manifest := `{
		"dashboards": [{"file": "d.json"}],
		"ruleDefinition": "rules.json",
		"rules": [{"type": "templateToApp", "file": "rules.json"}]
	}`
	c, bag := harness(t, "/work/T", manifest, map[string]string{
		"d.json":     `{}`,
		"rules.json": `{"constants": [{"name": "Threshold", "value": 1}]}`,
	})
	RulesFiles(c)

	if n := countCode(bag, diag.RulDuplicateConstant); n != 0 {
		t.Fatalf("repeated path self-duplicated constants (%v)", codeIDs(bag))
	}
}
