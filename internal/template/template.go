// Package template holds the domain model of an analytics template: the
// closed set of source-file kinds, the manifest's registry of relative-path
// fields, template types, and the per-directory context tracking satellite
// files.
package template

import (
	"strings"

	"templint/internal/jsonpath"
	"templint/internal/jsontree"
	"templint/internal/source"
)

// SourceKind is the closed set of file roles a template lint pass knows
// about. Rule dispatch switches on this tag, never on field sniffing.
type SourceKind uint8

const (
	KindManifest SourceKind = iota
	KindVariables
	KindUI
	KindRules
	KindFolder
	KindAutoInstall
	KindLayout
)

func (k SourceKind) String() string {
	switch k {
	case KindManifest:
		return "manifest"
	case KindVariables:
		return "variables"
	case KindUI:
		return "ui"
	case KindRules:
		return "rules"
	case KindFolder:
		return "folder"
	case KindAutoInstall:
		return "auto-install"
	case KindLayout:
		return "layout"
	}
	return "unknown"
}

// FileKind is the expected content type of a referenced satellite file.
type FileKind uint8

const (
	FileJSON FileKind = iota
	FileHTML
	FileImage
	FileCSV
)

func (k FileKind) String() string {
	switch k {
	case FileJSON:
		return "json"
	case FileHTML:
		return "html"
	case FileImage:
		return "image"
	case FileCSV:
		return "csv"
	}
	return "unknown"
}

// MaxCSVSizeBytes is the size ceiling for referenced CSV files. Violations
// are reported against the referencing manifest field.
const MaxCSVSizeBytes = 10 * 1024 * 1024

// RelPathField registers one manifest field that points to another file.
type RelPathField struct {
	Pattern jsonpath.Pattern
	Kind    FileKind
}

// RelPathFields is the fixed registry of manifest fields holding relative
// paths, grouped by expected file kind. It is configuration data: rules
// iterate it, nothing computes it.
var RelPathFields = []RelPathField{
	{Pattern: jsonpath.Path("variableDefinition"), Kind: FileJSON},
	{Pattern: jsonpath.Path("uiDefinition"), Kind: FileJSON},
	{Pattern: jsonpath.Path("layoutDefinition"), Kind: FileJSON},
	{Pattern: jsonpath.Path("folderDefinition"), Kind: FileJSON},
	{Pattern: jsonpath.Path("autoInstallDefinition"), Kind: FileJSON},
	{Pattern: jsonpath.Path("ruleDefinition"), Kind: FileJSON},
	{Pattern: jsonpath.Path("rules", "*", "file"), Kind: FileJSON},
	{Pattern: jsonpath.Path("dashboards", "*", "file"), Kind: FileJSON},
	{Pattern: jsonpath.Path("lenses", "*", "file"), Kind: FileJSON},
	{Pattern: jsonpath.Path("eltDataflows", "*", "file"), Kind: FileJSON},
	{Pattern: jsonpath.Path("recipes", "*", "file"), Kind: FileJSON},
	{Pattern: jsonpath.Path("components", "*", "file"), Kind: FileJSON},
	{Pattern: jsonpath.Path("datasetFiles", "*", "userXmd"), Kind: FileJSON},
	{Pattern: jsonpath.Path("datasetFiles", "*", "conversionMetadata"), Kind: FileJSON},
	{Pattern: jsonpath.Path("externalFiles", "*", "schema"), Kind: FileJSON},
	{Pattern: jsonpath.Path("externalFiles", "*", "userXmd"), Kind: FileJSON},
	{Pattern: jsonpath.Path("extendedTypes", "*", "*", "file"), Kind: FileJSON},
	{Pattern: jsonpath.Path("releaseInfo", "notesFile"), Kind: FileHTML},
	{Pattern: jsonpath.Path("imageFiles", "*", "file"), Kind: FileImage},
	{Pattern: jsonpath.Path("templateIcon"), Kind: FileImage},
	{Pattern: jsonpath.Path("assetIcon"), Kind: FileImage},
	{Pattern: jsonpath.Path("externalFiles", "*", "file"), Kind: FileCSV},
}

// satelliteFields maps the single-valued manifest fields to the source kind
// of the file they reference.
var satelliteFields = map[string]SourceKind{
	"variableDefinition":    KindVariables,
	"uiDefinition":          KindUI,
	"layoutDefinition":      KindLayout,
	"folderDefinition":      KindFolder,
	"autoInstallDefinition": KindAutoInstall,
	"ruleDefinition":        KindRules,
}

// Type is the declared template type. Parsing is case-insensitive and an
// unrecognized or absent type behaves like App, the most permissive kind.
type Type uint8

const (
	TypeApp Type = iota
	TypeDashboard
	TypeData
	TypeEmbeddedApp
)

func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dashboard":
		return TypeDashboard
	case "data":
		return TypeData
	case "embeddedapp":
		return TypeEmbeddedApp
	default:
		return TypeApp
	}
}

func (t Type) String() string {
	switch t {
	case TypeDashboard:
		return "dashboard"
	case TypeData:
		return "data"
	case TypeEmbeddedApp:
		return "embeddedapp"
	default:
		return "app"
	}
}

// SatelliteRef is one satellite file discovered from the manifest.
type SatelliteRef struct {
	Kind SourceKind
	// RelPath as written in the manifest (validated by the caller).
	RelPath string
	// Field is the property node that referenced the file.
	Field jsontree.NodeID
}

// Dir is the context for one template directory: the manifest plus the
// satellite files it references. The satellite set is refreshed on every
// manifest parse; a Dir is superseded, never mutated, when the manifest
// changes.
type Dir struct {
	Root         string
	ManifestPath string
	Type         Type
	Name         string
	Satellites   []SatelliteRef
}

// NewDir builds the context from a parsed manifest tree.
func NewDir(root, manifestPath string, tree *jsontree.Tree) *Dir {
	d := &Dir{Root: root, ManifestPath: manifestPath, Type: TypeApp}
	if tree == nil || tree.Root == jsontree.NoNode {
		return d
	}

	if typeID := tree.Member(tree.Root, "templateType"); typeID != jsontree.NoNode {
		if s, ok := tree.StringValue(typeID); ok {
			d.Type = ParseType(s)
		}
	}
	if nameID := tree.Member(tree.Root, "name"); nameID != jsontree.NoNode {
		if s, ok := tree.StringValue(nameID); ok {
			d.Name = s
		}
	}

	for field, kind := range satelliteFields {
		propID := tree.MemberProperty(tree.Root, field)
		if propID == jsontree.NoNode {
			continue
		}
		valID := tree.PropertyValue(propID)
		rel, ok := tree.StringValue(valID)
		if !ok || !source.IsValidRelativePath(rel) {
			continue
		}
		d.Satellites = append(d.Satellites, SatelliteRef{Kind: kind, RelPath: rel, Field: propID})
	}

	// The rules array supplements (and supersedes) the legacy single
	// ruleDefinition field; both may be present and both are loaded.
	for _, fileID := range jsonpath.Match(tree, tree.Root, jsonpath.Path("rules", "*", "file")) {
		rel, ok := tree.StringValue(fileID)
		if !ok || !source.IsValidRelativePath(rel) {
			continue
		}
		n := tree.Get(fileID)
		d.Satellites = append(d.Satellites, SatelliteRef{Kind: KindRules, RelPath: rel, Field: n.Parent})
	}

	return d
}

// Satellite returns the first satellite of the given kind, if any.
func (d *Dir) Satellite(kind SourceKind) (SatelliteRef, bool) {
	for _, s := range d.Satellites {
		if s.Kind == kind {
			return s, true
		}
	}
	return SatelliteRef{}, false
}

// SatellitesOf returns every satellite of the given kind in manifest order.
func (d *Dir) SatellitesOf(kind SourceKind) []SatelliteRef {
	var out []SatelliteRef
	for _, s := range d.Satellites {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
