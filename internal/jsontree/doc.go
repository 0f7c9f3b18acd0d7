// Package jsontree parses JSONC documents into an offset-carrying node tree.
//
// Nodes live in a flat arena addressed by NodeID. Ownership flows strictly
// parent→children (children are stored as owned indices); Parent is a plain
// index kept only for upward traversal and never used for ownership or
// cleanup. Object members are Property nodes whose two children are the key
// string node and the value node, and duplicate keys are preserved as sibling
// properties so duplicate-detection rules can see them.
//
// Comments and trailing commas are stripped with tidwall/jsonc before
// scanning. The stripping is offset-preserving (comments become whitespace),
// so every node span indexes into the original document text.
//
// A syntactically broken document yields a partial tree or none; consumers
// must tolerate both.
package jsontree
