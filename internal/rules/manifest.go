package rules

import (
	"fmt"
	"path"
	"path/filepath"

	"templint/internal/diag"
	"templint/internal/jsonpath"
	"templint/internal/jsontree"
	"templint/internal/source"
	"templint/internal/template"
)

// Manifest runs every rule that needs only the template-info tree plus
// filesystem stats: relative-path fields, type minimums, deprecated pairs,
// the folder-name check, and CSV size limits.
func Manifest(c *Context) {
	t := c.Manifest.Tree
	if t == nil || t.Root == jsontree.NoNode {
		return
	}
	checkRelPathFields(c, t)
	checkTypeContent(c, t)
	checkDeprecatedPairs(c, t)
	checkNameMatchesFolder(c, t)
}

func checkRelPathFields(c *Context, t *jsontree.Tree) {
	var occs []occurrence
	for _, field := range template.RelPathFields {
		for _, propID := range jsonpath.MatchProperties(t, t.Root, field.Pattern) {
			valID := t.PropertyValue(propID)
			rel, isString := t.StringValue(valID)
			if !isString || rel == "" {
				key, _ := t.PropertyKey(propID)
				report(c.Report, t, propID, diag.SevError, diag.TplRelPathValueMissing,
					fmt.Sprintf("%s must hold a file path", key)).Emit()
				continue
			}
			if !source.IsValidRelativePath(rel) {
				report(c.Report, t, valID, diag.SevError, diag.TplRelPathInvalid,
					fmt.Sprintf("%q is not a valid relative path", rel)).Emit()
				continue
			}

			st, ok := c.Load.StatFile(c.Ctx, rel)
			switch {
			case !ok || !st.Exists:
				report(c.Report, t, valID, diag.SevError, diag.TplRelPathFileNotFound,
					fmt.Sprintf("file %q does not exist", rel)).Emit()
			case st.IsDir:
				report(c.Report, t, valID, diag.SevError, diag.TplRelPathNotAFile,
					fmt.Sprintf("%q is a directory, not a file", rel)).Emit()
			case field.Kind == template.FileCSV && st.Size > c.csvLimit():
				report(c.Report, t, valID, diag.SevError, diag.TplCSVTooLarge,
					fmt.Sprintf("CSV file %q is %d bytes, over the %d byte limit", rel, st.Size, c.csvLimit())).Emit()
			}

			occs = append(occs, occurrence{
				Key:  path.Clean(rel),
				Tree: t,
				Node: valID,
				Span: t.ValueSpan(valID),
			})
		}
	}

	reportDuplicates(c.Report, occs, diag.SevWarning, diag.TplRelPathDuplicate,
		func(key string) string { return fmt.Sprintf("file %q is referenced more than once", key) },
		"also referenced here")
}

// appContentFields are the manifest arrays that count toward the app-type
// minimum. dataContentFields is the subset that counts for data templates.
var appContentFields = []string{
	"dashboards", "datasetFiles", "eltDataflows", "recipes",
	"externalFiles", "lenses", "components", "extendedTypes",
}

var dataContentFields = []string{
	"datasetFiles", "eltDataflows", "recipes", "externalFiles",
}

func checkTypeContent(c *Context, t *jsontree.Tree) {
	anchor := t.Root
	if propID := t.MemberProperty(t.Root, "templateType"); propID != jsontree.NoNode {
		anchor = propID
	}

	switch c.Dir.Type {
	case template.TypeDashboard:
		n := contentCount(t, "dashboards")
		if n != 1 {
			report(c.Report, t, anchor, diag.SevError, diag.TplDashboardCount,
				fmt.Sprintf("dashboard templates must define exactly one dashboard, found %d", n)).Emit()
		}
	case template.TypeData:
		reportEmptyContent(c, t, anchor, dataContentFields, diag.TplMissingDataObjects,
			"data templates must define at least one dataset, dataflow, recipe or external file")
	default:
		// App and embedded-app templates share the aggregate minimum.
		reportEmptyContent(c, t, anchor, appContentFields, diag.TplMissingAppObjects,
			"app templates must define at least one dashboard, dataset, dataflow, recipe, external file, lens or component")
	}
}

func reportEmptyContent(c *Context, t *jsontree.Tree, anchor jsontree.NodeID, fields []string, code diag.Code, msg string) {
	total := 0
	var empties []jsontree.NodeID
	for _, field := range fields {
		propID := t.MemberProperty(t.Root, field)
		if propID == jsontree.NoNode {
			continue
		}
		n := contentCount(t, field)
		total += n
		if n == 0 {
			empties = append(empties, propID)
		}
	}
	if total > 0 {
		return
	}
	b := report(c.Report, t, anchor, diag.SevError, code, msg)
	for _, propID := range empties {
		key, _ := t.PropertyKey(propID)
		b.WithNote(t.ValueSpan(propID), fmt.Sprintf("%s is empty", key))
	}
	b.Emit()
}

// contentCount counts the entries of one content field: array length for
// plain arrays, the summed length of nested arrays for extendedTypes, which
// groups entries by type name.
func contentCount(t *jsontree.Tree, field string) int {
	id := t.Member(t.Root, field)
	n := t.Get(id)
	if n == nil {
		return 0
	}
	switch n.Kind {
	case jsontree.KindArray:
		return len(n.Children)
	case jsontree.KindObject:
		total := 0
		for _, propID := range n.Children {
			if val := t.Get(t.PropertyValue(propID)); val != nil && val.Kind == jsontree.KindArray {
				total += len(val.Children)
			}
		}
		return total
	}
	return 0
}

// deprecatedPair flags the legacy field when its replacement is also present.
type deprecatedPair struct {
	Deprecated  string
	Replacement jsonpath.Pattern
	Severity    diag.Severity
	Code        diag.Code
}

var deprecatedPairs = []deprecatedPair{
	{
		Deprecated:  "ruleDefinition",
		Replacement: jsonpath.Path("rules"),
		Severity:    diag.SevError,
		Code:        diag.TplDeprecatedRuleDefinition,
	},
	{
		Deprecated:  "assetIcon",
		Replacement: jsonpath.Path("icons", "appBadge"),
		Severity:    diag.SevWarning,
		Code:        diag.TplDeprecatedAssetIcon,
	},
	{
		Deprecated:  "templateIcon",
		Replacement: jsonpath.Path("icons", "templateDetail"),
		Severity:    diag.SevWarning,
		Code:        diag.TplDeprecatedTemplateIcon,
	},
}

func checkDeprecatedPairs(c *Context, t *jsontree.Tree) {
	for _, pair := range deprecatedPairs {
		propID := t.MemberProperty(t.Root, pair.Deprecated)
		if propID == jsontree.NoNode {
			continue
		}
		replID := jsonpath.FindProperty(t, t.Root, pair.Replacement)
		if replID == jsontree.NoNode {
			continue
		}
		b := report(c.Report, t, propID, pair.Severity, pair.Code,
			fmt.Sprintf("%s is deprecated in favor of %s", pair.Deprecated, jsonpath.DisplayString(pair.Replacement)))
		b.WithNote(t.ValueSpan(replID), "replacement defined here")
		if rm := removalSpan(c.Manifest.File, t.Get(propID).Span); !rm.Empty() {
			b.WithFix(fmt.Sprintf("Remove %s", pair.Deprecated), diag.FixEdit{Span: rm})
		}
		b.Emit()
	}
}

// removalSpan widens a property span to swallow one adjacent comma plus the
// whitespace between, so deleting it leaves valid JSON.
func removalSpan(f *source.File, sp source.Span) source.Span {
	if f == nil {
		return sp
	}
	content := f.Content
	end := sp.End
	for end < uint32(len(content)) && isJSONSpace(content[end]) {
		end++
	}
	if end < uint32(len(content)) && content[end] == ',' {
		sp.End = end + 1
		return sp
	}
	start := sp.Start
	for start > 0 && isJSONSpace(content[start-1]) {
		start--
	}
	if start > 0 && content[start-1] == ',' {
		sp.Start = start - 1
	}
	return sp
}

func isJSONSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func checkNameMatchesFolder(c *Context, t *jsontree.Tree) {
	name, nameID, ok := stringAt(t, t.Root, "name")
	if !ok || c.Dir.Root == "" {
		return
	}
	folder := filepath.Base(c.Dir.Root)
	if name == folder {
		return
	}
	report(c.Report, t, nameID, diag.SevWarning, diag.TplNameMismatch,
		fmt.Sprintf("template name %q does not match its folder %q", name, folder)).
		WithArg("name", name).
		WithArg("folder", folder).
		WithFix(fmt.Sprintf("Rename to %q", folder), diag.FixEdit{Span: t.ValueSpan(nameID), NewText: folder}).
		Emit()
}
