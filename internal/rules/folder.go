package rules

import (
	"fmt"
	"sort"
	"strings"

	"templint/internal/diag"
	"templint/internal/jsonpath"
	"templint/internal/jsontree"
	"templint/internal/template"
)

var validAccessTypes = map[string]bool{
	"View":   true,
	"Edit":   true,
	"Manage": true,
}

var validShareTypes = map[string]bool{
	"Organization":        true,
	"Role":                true,
	"RoleAndSubordinates": true,
	"Group":               true,
	"User":                true,
}

// Folder validates the folder-definition satellite: each share entry must
// carry a known accessType and shareType.
func Folder(c *Context) {
	ref, ok := c.Dir.Satellite(template.KindFolder)
	if !ok {
		return
	}
	doc, ok := c.Load.LoadDoc(c.Ctx, ref.RelPath)
	if !ok || doc.Tree == nil || doc.Tree.Root == jsontree.NoNode {
		return
	}
	t := doc.Tree

	for _, shareID := range jsonpath.Match(t, t.Root, jsonpath.Path("shares", "*")) {
		share := t.Get(shareID)
		if share == nil || share.Kind != jsontree.KindObject {
			continue
		}
		checkShareField(c, t, shareID, "accessType", validAccessTypes, diag.FldInvalidAccessType)
		checkShareField(c, t, shareID, "shareType", validShareTypes, diag.FldInvalidShareType)
	}
}

func checkShareField(c *Context, t *jsontree.Tree, shareID jsontree.NodeID, field string, valid map[string]bool, code diag.Code) {
	valID := t.Member(shareID, field)
	if valID == jsontree.NoNode {
		return
	}
	value, ok := t.StringValue(valID)
	if ok && valid[value] {
		return
	}
	if !ok {
		value = ""
	}
	report(c.Report, t, valID, diag.SevError, code,
		fmt.Sprintf("%q is not a valid %s, expected one of %s", value, field, joinSorted(valid))).
		WithArg(field, value).
		Emit()
}

func joinSorted(set map[string]bool) string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
