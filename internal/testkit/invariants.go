package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"templint/internal/jsontree"
	"templint/internal/source"
)

// CheckTreeInvariants runs a minimal set of span invariants on a parsed tree:
// 1) the root span is non-empty and within file content bounds
// 2) every node span is non-empty and fully contained in its parent's span
// 3) property nodes carry a string key child followed by at most one value
func CheckTreeInvariants(t *jsontree.Tree, sf *source.File) error {
	if t == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	root := t.Get(t.Root)
	if root == nil {
		return fmt.Errorf("root node not found")
	}

	// 1) root span sanity
	if root.Span.End <= root.Span.Start {
		return fmt.Errorf("root span is empty: %v", root.Span)
	}
	if root.Span.File != sf.ID {
		return fmt.Errorf("root span points to different file id: got=%d want=%d", root.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if root.Span.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", root.Span.End, lenContent)
	}

	return checkNode(t, t.Root, sf.ID)
}

func checkNode(t *jsontree.Tree, id jsontree.NodeID, file source.FileID) error {
	n := t.Get(id)
	if n == nil {
		return fmt.Errorf("nil node for id=%d", id)
	}
	sp := n.Span
	if sp.End <= sp.Start {
		return fmt.Errorf("empty node span: %v (kind=%s)", sp, n.Kind)
	}
	if sp.File != file {
		return fmt.Errorf("node span file mismatch: got=%d want=%d", sp.File, file)
	}

	if n.Kind == jsontree.KindProperty {
		if len(n.Children) == 0 || len(n.Children) > 2 {
			return fmt.Errorf("property %d has %d children", id, len(n.Children))
		}
		key := t.Get(n.Children[0])
		if key == nil || key.Kind != jsontree.KindString {
			return fmt.Errorf("property %d key is not a string", id)
		}
	}

	for _, childID := range n.Children {
		child := t.Get(childID)
		if child == nil {
			return fmt.Errorf("nil child for id=%d", childID)
		}
		if child.Parent != id {
			return fmt.Errorf("child %d parent pointer mismatch: got=%d want=%d", childID, child.Parent, id)
		}
		// child inside parent
		if child.Span.Start < sp.Start || child.Span.End > sp.End {
			return fmt.Errorf("child span %v is outside parent span %v", child.Span, sp)
		}
		if err := checkNode(t, childID, file); err != nil {
			return err
		}
	}
	return nil
}
