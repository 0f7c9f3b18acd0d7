package rules

import (
	"fmt"

	"templint/internal/diag"
	"templint/internal/jsonpath"
	"templint/internal/jsontree"
	"templint/internal/template"
)

// RulesFiles validates every rules satellite: the legacy ruleDefinition file
// plus each rules[*].file entry. Uniqueness rules group across all of them,
// since the runtime merges the files into one rule set.
func RulesFiles(c *Context) {
	var constants, names, macros []occurrence

	seen := make(map[string]bool)
	for _, ref := range c.Dir.SatellitesOf(template.KindRules) {
		if seen[ref.RelPath] {
			continue
		}
		seen[ref.RelPath] = true
		doc, ok := c.Load.LoadDoc(c.Ctx, ref.RelPath)
		if !ok || doc.Tree == nil || doc.Tree.Root == jsontree.NoNode {
			continue
		}
		t := doc.Tree
		constants = append(constants, namedEntries(t, jsonpath.Path("constants", "*"))...)
		names = append(names, namedEntries(t, jsonpath.Path("rules", "*"))...)
		macros = append(macros, macroEntries(c, t)...)
	}

	reportDuplicates(c.Report, constants, diag.SevWarning, diag.RulDuplicateConstant,
		func(key string) string { return fmt.Sprintf("constant %q is defined more than once", key) },
		"also defined here")
	reportDuplicates(c.Report, names, diag.SevHint, diag.RulDuplicateRuleName,
		func(key string) string { return fmt.Sprintf("rule name %q is used more than once", key) },
		"also used here")
	reportDuplicates(c.Report, macros, diag.SevWarning, diag.RulDuplicateMacro,
		func(key string) string { return fmt.Sprintf("macro %q is defined more than once", key) },
		"also defined here")
}

// namedEntries collects the name member of every object matched by pattern.
func namedEntries(t *jsontree.Tree, pat jsonpath.Pattern) []occurrence {
	var out []occurrence
	for _, entryID := range jsonpath.Match(t, t.Root, pat) {
		nameID := t.Member(entryID, "name")
		name, ok := t.StringValue(nameID)
		if !ok {
			continue
		}
		out = append(out, occurrence{Key: name, Tree: t, Node: nameID, Span: t.ValueSpan(nameID)})
	}
	return out
}

// macroEntries collects macro definitions keyed by namespace:name and flags
// no-op definitions along the way.
func macroEntries(c *Context, t *jsontree.Tree) []occurrence {
	var out []occurrence
	for _, nsID := range jsonpath.Match(t, t.Root, jsonpath.Path("macros", "*")) {
		namespace, _ := t.StringValue(t.Member(nsID, "namespace"))
		for _, defID := range jsonpath.Match(t, nsID, jsonpath.Path("definitions", "*")) {
			nameID := t.Member(defID, "name")
			name, ok := t.StringValue(nameID)
			if ok {
				out = append(out, occurrence{
					Key:  namespace + ":" + name,
					Tree: t,
					Node: nameID,
					Span: t.ValueSpan(nameID),
				})
			}
			checkNoOpMacro(c, t, defID, namespace, name)
		}
	}
	return out
}

// checkNoOpMacro reports definitions with neither a returns value nor a
// non-empty actions array; expanding such a macro does nothing.
func checkNoOpMacro(c *Context, t *jsontree.Tree, defID jsontree.NodeID, namespace, name string) {
	if t.Member(defID, "returns") != jsontree.NoNode {
		return
	}
	if actions := t.Get(t.Member(defID, "actions")); actions != nil &&
		actions.Kind == jsontree.KindArray && len(actions.Children) > 0 {
		return
	}
	anchor := defID
	if nameProp := t.MemberProperty(defID, "name"); nameProp != jsontree.NoNode {
		anchor = nameProp
	}
	label := name
	if namespace != "" {
		label = namespace + ":" + name
	}
	report(c.Report, t, anchor, diag.SevInfo, diag.RulNoOpMacro,
		fmt.Sprintf("macro %q has no returns value and no actions", label)).Emit()
}
