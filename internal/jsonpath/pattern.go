// Package jsonpath queries parsed trees with patterns of literal keys,
// array indices, and wildcards, and renders node paths for diagnostics.
package jsonpath

import (
	"fmt"
	"strings"

	"templint/internal/source"
)

type segKind uint8

const (
	segKey segKind = iota
	segIndex
	segWildcard
)

// Segment is one step of a pattern: a literal object key, a literal array
// index, or the wildcard.
type Segment struct {
	kind  segKind
	key   string
	index int
}

// Key returns a literal object-key segment.
func Key(s string) Segment {
	return Segment{kind: segKey, key: s}
}

// Index returns a literal array-index segment.
func Index(i int) Segment {
	return Segment{kind: segIndex, index: i}
}

// Wildcard fans out over all array elements or all object property values.
var Wildcard = Segment{kind: segWildcard}

// Pattern is an ordered sequence of segments.
type Pattern []Segment

// Path is a convenience constructor: strings become key segments, ints
// become index segments, "*" becomes the wildcard.
func Path(parts ...any) Pattern {
	pat := make(Pattern, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			if v == "*" {
				pat = append(pat, Wildcard)
			} else {
				pat = append(pat, Key(v))
			}
		case int:
			pat = append(pat, Index(v))
		case Segment:
			pat = append(pat, v)
		default:
			panic(fmt.Sprintf("jsonpath: unsupported segment type %T", part))
		}
	}
	return pat
}

// DisplayString renders the pattern as a dotted/bracket expression:
// identifier-like keys are dotted, everything else is bracket-quoted, and
// indices are bracketed unquoted. Used for diagnostic JSON-path fields.
func DisplayString(pat Pattern) string {
	var b strings.Builder
	for i, seg := range pat {
		switch seg.kind {
		case segKey:
			if source.IsValidIdentifierName(seg.key) {
				if i > 0 {
					b.WriteByte('.')
				}
				b.WriteString(seg.key)
			} else {
				fmt.Fprintf(&b, "[%q]", seg.key)
			}
		case segIndex:
			fmt.Fprintf(&b, "[%d]", seg.index)
		case segWildcard:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteByte('*')
		}
	}
	return b.String()
}
