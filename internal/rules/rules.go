// Package rules implements the validation rules for every template source
// kind. Rules are side-effect-free apart from diagnostic emission: each one
// inspects parsed trees and appends findings to a reporter. A rule must
// tolerate absent or partial trees without crashing: a broken satellite file
// yields fewer diagnostics, never a failed run.
package rules

import (
	"context"
	"sort"

	"templint/internal/diag"
	"templint/internal/jsonpath"
	"templint/internal/jsontree"
	"templint/internal/source"
	"templint/internal/template"
)

// Doc is one loaded document: its text plus parsed tree. Tree may be nil or
// partial for malformed input.
type Doc struct {
	File *source.File
	Tree *jsontree.Tree
}

// Stat describes a referenced path in the workspace.
type Stat struct {
	Exists bool
	IsDir  bool
	Size   int64
}

// Loader supplies satellite documents and filesystem facts. The lint
// orchestrator backs it with a per-run cache; rules never load directly.
type Loader interface {
	// LoadDoc resolves rel against the template root and returns the
	// parsed document, or ok=false when it is missing or unreadable.
	LoadDoc(ctx context.Context, rel string) (*Doc, bool)
	// StatFile resolves rel against the template root.
	StatFile(ctx context.Context, rel string) (Stat, bool)
}

// Context carries everything a rule group needs for one lint run.
type Context struct {
	Ctx      context.Context
	Manifest *Doc
	Dir      *template.Dir
	Load     Loader
	Report   diag.Reporter
	// MaxCSVSize overrides template.MaxCSVSizeBytes when positive.
	MaxCSVSize int64
}

func (c *Context) csvLimit() int64 {
	if c.MaxCSVSize > 0 {
		return c.MaxCSVSize
	}
	return template.MaxCSVSizeBytes
}

// report starts a builder for a finding on node, stamping the value span and
// JSON path per the diagnostic model: string nodes lose their quotes,
// property nodes report the path of their key.
func report(r diag.Reporter, t *jsontree.Tree, id jsontree.NodeID, sev diag.Severity, code diag.Code, msg string) *diag.ReportBuilder {
	return diag.NewReportBuilder(r, sev, code, t.ValueSpan(id), msg).
		WithJSONPath(jsonpath.NodeDisplayPath(t, id))
}

// occurrence is one member of a duplicate group. Occurrences may come from
// different documents, so each carries its own tree.
type occurrence struct {
	Key  string
	Tree *jsontree.Tree
	Node jsontree.NodeID
	Span source.Span
}

// reportDuplicates groups occurrences by key and emits one diagnostic per
// member of every group with 2+ entries, each carrying related locations for
// its siblings sorted by position.
func reportDuplicates(r diag.Reporter, occs []occurrence, sev diag.Severity, code diag.Code, message func(key string) string, noteMsg string) {
	groups := make(map[string][]occurrence)
	for _, o := range occs {
		groups[o.Key] = append(groups[o.Key], o)
	}
	keys := make([]string, 0, len(groups))
	for k, g := range groups {
		if len(g) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Span.File != group[j].Span.File {
				return group[i].Span.File < group[j].Span.File
			}
			return group[i].Span.Start < group[j].Span.Start
		})
		for i, o := range group {
			b := report(r, o.Tree, o.Node, sev, code, message(k))
			for j, other := range group {
				if j == i {
					continue
				}
				b.WithNote(other.Span, noteMsg)
			}
			b.Emit()
		}
	}
}

// stringAt returns the decoded string for the member named key of obj.
func stringAt(t *jsontree.Tree, obj jsontree.NodeID, key string) (string, jsontree.NodeID, bool) {
	id := t.Member(obj, key)
	if id == jsontree.NoNode {
		return "", jsontree.NoNode, false
	}
	s, ok := t.StringValue(id)
	return s, id, ok
}
