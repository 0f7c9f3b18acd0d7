package rules

import (
	"templint/internal/diag"
	"templint/internal/jsonpath"
	"templint/internal/jsontree"
	"templint/internal/template"
)

// AutoInstall validates the auto-install satellite: every key under
// configuration.appConfiguration.values must name a declared variable.
// Values are opaque; only the binding names are checked.
func AutoInstall(c *Context) {
	ref, ok := c.Dir.Satellite(template.KindAutoInstall)
	if !ok {
		return
	}
	doc, ok := c.Load.LoadDoc(c.Ctx, ref.RelPath)
	if !ok || doc.Tree == nil || doc.Tree.Root == jsontree.NoNode {
		return
	}
	t := doc.Tree
	idx := variableIndex(c)

	valuesPat := jsonpath.Path("configuration", "appConfiguration", "values")
	for _, valuesID := range jsonpath.Match(t, t.Root, valuesPat) {
		values := t.Get(valuesID)
		if values == nil || values.Kind != jsontree.KindObject {
			continue
		}
		for _, propID := range values.Children {
			name, ok := t.PropertyKey(propID)
			if !ok {
				continue
			}
			keyID := t.PropertyKeyNode(propID)
			checkVariableRef(c, t, keyID, name, idx, diag.AinUnknownVariable, diag.UnknownCode)
		}
	}
}
