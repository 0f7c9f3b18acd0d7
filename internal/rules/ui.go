package rules

import (
	"templint/internal/diag"
	"templint/internal/jsonpath"
	"templint/internal/jsontree"
	"templint/internal/template"
)

// UI validates the ui-definition satellite: every page variable must resolve
// to a declared variable of a type usable on pages, and embedded-app
// templates only carry visualforce pages.
func UI(c *Context) {
	ref, ok := c.Dir.Satellite(template.KindUI)
	if !ok {
		return
	}
	doc, ok := c.Load.LoadDoc(c.Ctx, ref.RelPath)
	if !ok || doc.Tree == nil || doc.Tree.Root == jsontree.NoNode {
		return
	}
	t := doc.Tree
	idx := variableIndex(c)

	for _, nameID := range jsonpath.Match(t, t.Root, jsonpath.Path("pages", "*", "variables", "*", "name")) {
		name, ok := t.StringValue(nameID)
		if !ok {
			continue
		}
		checkVariableRef(c, t, nameID, name, idx, diag.UIUnknownVariable, diag.UIUnsupportedVariableType)
	}

	if c.Dir.Type == template.TypeEmbeddedApp {
		checkEmbeddedAppPages(c, t)
	}
}

// checkEmbeddedAppPages flags pages without a vfPage member. Embedded apps
// render inside a host page and cannot show the standard wizard pages.
func checkEmbeddedAppPages(c *Context, t *jsontree.Tree) {
	for _, pageID := range jsonpath.Match(t, t.Root, jsonpath.Path("pages", "*")) {
		page := t.Get(pageID)
		if page == nil || page.Kind != jsontree.KindObject {
			continue
		}
		if t.MemberProperty(pageID, "vfPage") != jsontree.NoNode {
			continue
		}
		anchor := pageID
		if titleID := t.MemberProperty(pageID, "title"); titleID != jsontree.NoNode {
			anchor = titleID
		}
		report(c.Report, t, anchor, diag.SevWarning, diag.TplEmbeddedAppPages,
			"embedded app pages must be visualforce pages").Emit()
	}
}
