package rules

import (
	"templint/internal/diag"
	"templint/internal/jsonpath"
	"templint/internal/jsontree"
	"templint/internal/template"
)

// Layout validates the layout-definition satellite. Layout panels bind
// variables through typed items; only items with type Variable carry a
// variable name.
func Layout(c *Context) {
	ref, ok := c.Dir.Satellite(template.KindLayout)
	if !ok {
		return
	}
	doc, ok := c.Load.LoadDoc(c.Ctx, ref.RelPath)
	if !ok || doc.Tree == nil || doc.Tree.Root == jsontree.NoNode {
		return
	}
	t := doc.Tree
	idx := variableIndex(c)

	itemsPat := jsonpath.Path("pages", "*", "layout", "rows", "*", "panels", "*", "items", "*")
	for _, itemID := range jsonpath.Match(t, t.Root, itemsPat) {
		item := t.Get(itemID)
		if item == nil || item.Kind != jsontree.KindObject {
			continue
		}
		kind, _ := t.StringValue(t.Member(itemID, "type"))
		if kind != "Variable" {
			continue
		}
		nameID := t.Member(itemID, "name")
		name, ok := t.StringValue(nameID)
		if !ok {
			continue
		}
		checkVariableRef(c, t, nameID, name, idx, diag.LayUnknownVariable, diag.LayUnsupportedVariableType)
	}
}
