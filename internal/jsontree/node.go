package jsontree

import (
	"templint/internal/source"
)

// NodeID addresses a node inside a Tree's arena.
type NodeID uint32

// NoNode is the absent-node sentinel (root's parent, failed lookups).
const NoNode NodeID = ^NodeID(0)

// Kind discriminates the node variants of a parsed document.
type Kind uint8

const (
	KindObject Kind = iota
	KindArray
	KindProperty
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindProperty:
		return "property"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindNull:
		return "null"
	}
	return "unknown"
}

// Node is one element of the parsed tree. Scalar payloads share the struct;
// only the field matching Kind is meaningful.
type Node struct {
	Kind     Kind
	Span     source.Span
	Parent   NodeID
	Children []NodeID

	Str  string  // KindString: decoded value
	Num  float64 // KindNumber
	Bool bool    // KindBool
}

// Tree owns the node arena for one parsed document.
type Tree struct {
	File  *source.File
	Root  NodeID
	nodes []Node
}

// Get returns the node for id, or nil for NoNode / out-of-range ids.
func (t *Tree) Get(id NodeID) *Node {
	if t == nil || id == NoNode || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// PropertyKey returns the decoded key of a property node.
func (t *Tree) PropertyKey(id NodeID) (string, bool) {
	n := t.Get(id)
	if n == nil || n.Kind != KindProperty || len(n.Children) == 0 {
		return "", false
	}
	key := t.Get(n.Children[0])
	if key == nil || key.Kind != KindString {
		return "", false
	}
	return key.Str, true
}

// PropertyKeyNode returns the key child of a property node.
func (t *Tree) PropertyKeyNode(id NodeID) NodeID {
	n := t.Get(id)
	if n == nil || n.Kind != KindProperty || len(n.Children) == 0 {
		return NoNode
	}
	return n.Children[0]
}

// PropertyValue returns the value child of a property node, or NoNode when
// the property has no value (broken input).
func (t *Tree) PropertyValue(id NodeID) NodeID {
	n := t.Get(id)
	if n == nil || n.Kind != KindProperty || len(n.Children) < 2 {
		return NoNode
	}
	return n.Children[1]
}

// Member returns the value node of the object member named key. Only the
// first occurrence is returned when keys are duplicated.
func (t *Tree) Member(objID NodeID, key string) NodeID {
	obj := t.Get(objID)
	if obj == nil || obj.Kind != KindObject {
		return NoNode
	}
	for _, propID := range obj.Children {
		if k, ok := t.PropertyKey(propID); ok && k == key {
			return t.PropertyValue(propID)
		}
	}
	return NoNode
}

// MemberProperty returns the property node of the object member named key.
func (t *Tree) MemberProperty(objID NodeID, key string) NodeID {
	obj := t.Get(objID)
	if obj == nil || obj.Kind != KindObject {
		return NoNode
	}
	for _, propID := range obj.Children {
		if k, ok := t.PropertyKey(propID); ok && k == key {
			return propID
		}
	}
	return NoNode
}

// StringValue returns the decoded string value of a string node.
func (t *Tree) StringValue(id NodeID) (string, bool) {
	n := t.Get(id)
	if n == nil || n.Kind != KindString {
		return "", false
	}
	return n.Str, true
}

// ValueSpan returns the span to report for a node: string nodes exclude their
// quote characters, everything else reports the raw span verbatim.
func (t *Tree) ValueSpan(id NodeID) source.Span {
	n := t.Get(id)
	if n == nil {
		return source.Span{}
	}
	if n.Kind == KindString {
		return n.Span.Shrink(1)
	}
	return n.Span
}
