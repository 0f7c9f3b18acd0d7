package rules

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"templint/internal/diag"
	"templint/internal/jsontree"
	"templint/internal/source"
	"templint/internal/template"
)

// regexFlags is the allowed flag alphabet for pseudo-regex excludes, matching
// the JavaScript RegExp flag set.
const regexFlags = "dgimsuy"

// VariableInfo is one declared variable, as consumed by the cross-file
// reference rules.
type VariableInfo struct {
	Name string
	// Type is variableType.type, empty when undeclared.
	Type string
	// Def is the property node of the definition.
	Def jsontree.NodeID
}

// VariableIndex builds the name to declaration map from a variables tree.
// The first definition wins for duplicated names; the duplicate rule flags
// the rest.
func VariableIndex(doc *Doc) map[string]VariableInfo {
	idx := make(map[string]VariableInfo)
	if doc == nil || doc.Tree == nil || doc.Tree.Root == jsontree.NoNode {
		return idx
	}
	t := doc.Tree
	root := t.Get(t.Root)
	if root == nil || root.Kind != jsontree.KindObject {
		return idx
	}
	for _, propID := range root.Children {
		name, ok := t.PropertyKey(propID)
		if !ok {
			continue
		}
		if _, seen := idx[name]; seen {
			continue
		}
		info := VariableInfo{Name: name, Def: propID}
		if varObj := t.PropertyValue(propID); varObj != jsontree.NoNode {
			if typeID := t.Member(t.Member(varObj, "variableType"), "type"); typeID != jsontree.NoNode {
				info.Type, _ = t.StringValue(typeID)
			}
		}
		idx[name] = info
	}
	return idx
}

// Variables validates the variables-definition satellite: identifier names,
// duplicate definitions, and pseudo-regex excludes.
func Variables(c *Context) {
	ref, ok := c.Dir.Satellite(template.KindVariables)
	if !ok {
		return
	}
	doc, ok := c.Load.LoadDoc(c.Ctx, ref.RelPath)
	if !ok || doc.Tree == nil || doc.Tree.Root == jsontree.NoNode {
		return
	}
	t := doc.Tree
	root := t.Get(t.Root)
	if root == nil || root.Kind != jsontree.KindObject {
		return
	}

	var occs []occurrence
	for _, propID := range root.Children {
		name, ok := t.PropertyKey(propID)
		if !ok {
			continue
		}
		keyID := t.PropertyKeyNode(propID)
		if !source.IsValidIdentifierName(name) {
			report(c.Report, t, keyID, diag.SevError, diag.VarInvalidName,
				fmt.Sprintf("%q is not a valid variable name", name)).
				WithArg("name", name).
				Emit()
		}
		occs = append(occs, occurrence{Key: name, Tree: t, Node: propID, Span: t.ValueSpan(keyID)})

		if varObj := t.PropertyValue(propID); varObj != jsontree.NoNode {
			checkExcludes(c, t, varObj)
		}
	}

	reportDuplicates(c.Report, occs, diag.SevWarning, diag.VarDuplicateDefinition,
		func(key string) string { return fmt.Sprintf("variable %q is defined more than once", key) },
		"also defined here")
}

// checkExcludes validates the excludes list of one variable definition.
// Entries starting with a slash are /pattern/flags pseudo-regexes; everything
// else is a literal and always fine.
func checkExcludes(c *Context, t *jsontree.Tree, varObj jsontree.NodeID) {
	listProp := t.MemberProperty(varObj, "excludes")
	if listProp == jsontree.NoNode {
		return
	}
	list := t.Get(t.PropertyValue(listProp))
	if list == nil || list.Kind != jsontree.KindArray {
		return
	}

	var regexEntries []jsontree.NodeID
	for _, entryID := range list.Children {
		raw, ok := t.StringValue(entryID)
		if !ok || !strings.HasPrefix(raw, "/") {
			continue
		}
		regexEntries = append(regexEntries, entryID)
		checkPseudoRegex(c, t, entryID, raw)
	}

	// The runtime compiles at most one regex per excludes list.
	if len(regexEntries) > 1 {
		b := report(c.Report, t, listProp, diag.SevInfo, diag.VarRegexMultiple,
			fmt.Sprintf("excludes lists %d regexes, only the first is honored", len(regexEntries)))
		for _, entryID := range regexEntries {
			b.WithNote(t.ValueSpan(entryID), "regex exclude")
		}
		b.Emit()
	}
}

func checkPseudoRegex(c *Context, t *jsontree.Tree, entryID jsontree.NodeID, raw string) {
	slash := strings.LastIndexByte(raw, '/')
	if slash == 0 {
		report(c.Report, t, entryID, diag.SevError, diag.VarRegexMissingSlash,
			fmt.Sprintf("regex exclude %q is missing its closing slash", raw)).Emit()
		return
	}
	pattern := raw[1:slash]
	flags := raw[slash+1:]

	if !validRegexFlags(flags) {
		report(c.Report, t, entryID, diag.SevError, diag.VarRegexBadFlags,
			fmt.Sprintf("invalid regex flags %q, allowed flags are %q without repeats", flags, regexFlags)).Emit()
		return
	}

	if _, err := regexp2.Compile(pattern, regexOptions(flags)); err != nil {
		report(c.Report, t, entryID, diag.SevError, diag.VarRegexCompile,
			fmt.Sprintf("invalid regular expression: %s", engineError(err))).Emit()
	}
}

// validRegexFlags accepts any subset of the allowed alphabet with no
// character repeated.
func validRegexFlags(flags string) bool {
	var seen [len(regexFlags)]bool
	for _, r := range flags {
		i := strings.IndexRune(regexFlags, r)
		if i < 0 || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}

// regexOptions maps the JavaScript flags that affect compilation; g, y and d
// only change match iteration and carry no engine option.
func regexOptions(flags string) regexp2.RegexOptions {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, r := range flags {
		switch r {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'u':
			opts |= regexp2.Unicode
		}
	}
	return opts
}

// engineError trims the engine's own "error parsing regexp:" preamble and any
// leading "invalid regular expression" phrase so the message carries it once.
func engineError(err error) string {
	msg := strings.TrimSpace(err.Error())
	msg = strings.TrimPrefix(msg, "error parsing regexp:")
	msg = strings.TrimSpace(msg)
	lower := strings.ToLower(msg)
	if strings.HasPrefix(lower, "invalid regular expression") {
		msg = strings.TrimSpace(msg[len("invalid regular expression"):])
		msg = strings.TrimPrefix(msg, ":")
		msg = strings.TrimSpace(msg)
	}
	return msg
}
