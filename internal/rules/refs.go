package rules

import (
	"fmt"
	"sort"

	"templint/internal/diag"
	"templint/internal/jsontree"
	"templint/internal/suggest"
	"templint/internal/template"
)

// pageVariableTypes that cannot be bound on UI pages or in layouts. They are
// resolved at install time and have no input widget.
var unsupportedPageVariableTypes = map[string]bool{
	"ObjectType":          true,
	"DateTimeType":        true,
	"DatasetAnyFieldType": true,
}

// variableIndex loads the variables satellite through the run cache and
// builds the name to declaration map. Missing or broken satellites yield an
// empty index; reference checks then report every name as unknown, which
// matches what the runtime would do.
func variableIndex(c *Context) map[string]VariableInfo {
	ref, ok := c.Dir.Satellite(template.KindVariables)
	if !ok {
		return nil
	}
	doc, ok := c.Load.LoadDoc(c.Ctx, ref.RelPath)
	if !ok {
		return nil
	}
	return VariableIndex(doc)
}

// checkVariableRef validates one referenced variable name against the index,
// emitting unknownCode with a fuzzy suggestion when the name is undeclared
// and typeCode when the declared type cannot be used in this context.
// typeCode zero skips the type check.
func checkVariableRef(c *Context, t *jsontree.Tree, nameID jsontree.NodeID, name string, idx map[string]VariableInfo, unknownCode, typeCode diag.Code) {
	info, declared := idx[name]
	if !declared {
		msg := fmt.Sprintf("variable %q is not defined", name)
		match, hasMatch := suggest.Best(indexNames(idx), name)
		if hasMatch {
			msg = fmt.Sprintf("variable %q is not defined, did you mean %q?", name, match)
		}
		b := report(c.Report, t, nameID, diag.SevError, unknownCode, msg).
			WithArg("name", name)
		if hasMatch {
			b.WithArg("match", match).
				WithFix(fmt.Sprintf("Replace with %q", match),
					diag.FixEdit{Span: t.ValueSpan(nameID), NewText: match})
		}
		b.Emit()
		return
	}
	if typeCode != diag.UnknownCode && unsupportedPageVariableTypes[info.Type] {
		report(c.Report, t, nameID, diag.SevError, typeCode,
			fmt.Sprintf("variable %q has type %s, which cannot be used here", name, info.Type)).
			WithArg("name", name).
			WithArg("type", info.Type).
			Emit()
	}
}

func indexNames(idx map[string]VariableInfo) []string {
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
