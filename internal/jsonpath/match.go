package jsonpath

import (
	"templint/internal/jsontree"
)

// Predicate can reject a structurally matched node. Returning false only
// omits the node from the result; traversal continues.
type Predicate func(id jsontree.NodeID) bool

// Match returns every node under root reached by pattern, in document order.
// A pattern that cannot descend (wrong node kind, out-of-range index) simply
// contributes no matches.
func Match(t *jsontree.Tree, root jsontree.NodeID, pat Pattern) []jsontree.NodeID {
	return MatchFunc(t, root, pat, nil)
}

// MatchFunc is Match with an optional per-node predicate.
func MatchFunc(t *jsontree.Tree, root jsontree.NodeID, pat Pattern, pred Predicate) []jsontree.NodeID {
	if t == nil || root == jsontree.NoNode {
		return nil
	}
	var out []jsontree.NodeID
	walk(t, root, pat, func(id jsontree.NodeID) bool {
		if pred == nil || pred(id) {
			out = append(out, id)
		}
		return false // keep going
	})
	return out
}

// MatchFirst returns the first node accepted by pred (or the first structural
// match when pred is nil), terminating traversal early.
func MatchFirst(t *jsontree.Tree, root jsontree.NodeID, pat Pattern, pred Predicate) (jsontree.NodeID, bool) {
	if t == nil || root == jsontree.NoNode {
		return jsontree.NoNode, false
	}
	found := jsontree.NoNode
	walk(t, root, pat, func(id jsontree.NodeID) bool {
		if pred != nil && !pred(id) {
			return false
		}
		found = id
		return true // stop
	})
	return found, found != jsontree.NoNode
}

// walk recurses segment-by-segment; visit returns true to stop traversal.
func walk(t *jsontree.Tree, id jsontree.NodeID, pat Pattern, visit func(jsontree.NodeID) bool) bool {
	if len(pat) == 0 {
		return visit(id)
	}
	n := t.Get(id)
	if n == nil {
		return false
	}

	seg, rest := pat[0], pat[1:]
	switch seg.kind {
	case segKey:
		if n.Kind != jsontree.KindObject {
			return false
		}
		for _, propID := range n.Children {
			key, ok := t.PropertyKey(propID)
			if !ok || key != seg.key {
				continue
			}
			valID := t.PropertyValue(propID)
			if valID == jsontree.NoNode {
				continue
			}
			if walk(t, valID, rest, visit) {
				return true
			}
		}
		return false

	case segIndex:
		if n.Kind != jsontree.KindArray {
			return false
		}
		if seg.index < 0 || seg.index >= len(n.Children) {
			return false
		}
		return walk(t, n.Children[seg.index], rest, visit)

	case segWildcard:
		switch n.Kind {
		case jsontree.KindArray:
			for _, elemID := range n.Children {
				if walk(t, elemID, rest, visit) {
					return true
				}
			}
		case jsontree.KindObject:
			// Keys are skipped; the wildcard fans out over values.
			for _, propID := range n.Children {
				valID := t.PropertyValue(propID)
				if valID == jsontree.NoNode {
					continue
				}
				if walk(t, valID, rest, visit) {
					return true
				}
			}
		}
		return false
	}
	return false
}

// FindProperty resolves pattern to the property node holding its final key
// segment, for diagnostics that point at a field rather than its value.
func FindProperty(t *jsontree.Tree, root jsontree.NodeID, pat Pattern) jsontree.NodeID {
	if len(pat) == 0 || pat[len(pat)-1].kind != segKey {
		return jsontree.NoNode
	}
	last := pat[len(pat)-1]
	parents := []jsontree.NodeID{root}
	if len(pat) > 1 {
		parents = Match(t, root, pat[:len(pat)-1])
	}
	for _, objID := range parents {
		if propID := t.MemberProperty(objID, last.key); propID != jsontree.NoNode {
			return propID
		}
	}
	return jsontree.NoNode
}

// MatchProperties resolves pattern to every property node holding its final
// key segment, duplicates included, in document order.
func MatchProperties(t *jsontree.Tree, root jsontree.NodeID, pat Pattern) []jsontree.NodeID {
	if len(pat) == 0 || pat[len(pat)-1].kind != segKey {
		return nil
	}
	last := pat[len(pat)-1]
	parents := []jsontree.NodeID{root}
	if len(pat) > 1 {
		parents = Match(t, root, pat[:len(pat)-1])
	}
	var out []jsontree.NodeID
	for _, objID := range parents {
		obj := t.Get(objID)
		if obj == nil || obj.Kind != jsontree.KindObject {
			continue
		}
		for _, propID := range obj.Children {
			if key, ok := t.PropertyKey(propID); ok && key == last.key {
				out = append(out, propID)
			}
		}
	}
	return out
}

// NodePath computes the pattern addressing a node. Property nodes report the
// path of their key (the field itself), so a diagnostic's path points at
// foo.bar rather than at bar's value.
func NodePath(t *jsontree.Tree, id jsontree.NodeID) Pattern {
	n := t.Get(id)
	if n == nil {
		return nil
	}

	var rev []Segment
	if n.Kind == jsontree.KindProperty {
		if key, ok := t.PropertyKey(id); ok {
			rev = append(rev, Key(key))
		}
	}

	cur := id
	for {
		curNode := t.Get(cur)
		if curNode == nil || curNode.Parent == jsontree.NoNode {
			break
		}
		par := curNode.Parent
		parNode := t.Get(par)
		switch parNode.Kind {
		case jsontree.KindProperty:
			// cur is the property's value (or key): one key segment.
			if t.PropertyKeyNode(par) != cur {
				if key, ok := t.PropertyKey(par); ok {
					rev = append(rev, Key(key))
				}
			}
		case jsontree.KindArray:
			for i, child := range parNode.Children {
				if child == cur {
					rev = append(rev, Index(i))
					break
				}
			}
		case jsontree.KindObject:
			// The enclosing property contributes the key segment.
		}
		cur = par
	}

	out := make(Pattern, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

// NodeDisplayPath is NodePath rendered for a diagnostic.
func NodeDisplayPath(t *jsontree.Tree, id jsontree.NodeID) string {
	return DisplayString(NodePath(t, id))
}
