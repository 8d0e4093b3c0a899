/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package packagejson provides a typed view of package.json files,
// including the Node.js "exports" and "imports" algorithms and the
// bundler "alias", "source" and "browser" maps.
package packagejson

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"bennypowers.dev/modresolve/internal/jsonc"
)

// ModuleType is the module format of a file.
type ModuleType int

const (
	// CommonJS is the default for .js files without "type": "module".
	CommonJS ModuleType = iota
	// Module is an ES module.
	Module
	// JSON is a .json file.
	JSON
)

func (m ModuleType) String() string {
	switch m {
	case Module:
		return "module"
	case JSON:
		return "json"
	default:
		return "commonjs"
	}
}

// Fields selects package.json entry and alias fields.
type Fields uint8

const (
	FieldMain Fields = 1 << iota
	FieldModule
	FieldSource
	FieldBrowser
	FieldAlias
	FieldTypes
	FieldTsConfig
)

type namedField struct {
	name  string
	field Fields
}

var fieldNames = []namedField{
	{"main", FieldMain},
	{"module", FieldModule},
	{"source", FieldSource},
	{"browser", FieldBrowser},
	{"alias", FieldAlias},
	{"types", FieldTypes},
	{"tsconfig", FieldTsConfig},
}

// Has reports whether every field in f2 is selected.
func (f Fields) Has(f2 Fields) bool {
	return f&f2 == f2
}

// String returns the package.json keys of the selected fields.
func (f Fields) String() string {
	var names []string
	for _, n := range fieldNames {
		if f.Has(n.field) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseFields parses package.json field names such as "main" or "browser".
func ParseFields(names []string) (Fields, error) {
	var f Fields
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		i := slices.IndexFunc(fieldNames, func(n namedField) bool { return n.name == name })
		if i < 0 {
			return 0, fmt.Errorf("unknown package.json field %q", raw)
		}
		f |= fieldNames[i].field
	}
	return f, nil
}

// SourceKind is the shape of the "source" field.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourcePath
	SourceArray
	SourceMap
	SourceBool
)

// Source is the "source" field: an entry path, a list of entry paths,
// an alias map, or a boolean.
type Source struct {
	Kind  SourceKind
	Paths []string
	Map   AliasMap
	Bool  bool
}

// Browser is the "browser" field: either a replacement entry path or an
// alias map.
type Browser struct {
	Path string
	Map  AliasMap
}

// SideEffectsKind is the shape of the "sideEffects" field.
type SideEffectsKind int

const (
	SideEffectsUnset SideEffectsKind = iota
	SideEffectsBool
	SideEffectsGlobs
)

// SideEffects is the "sideEffects" field.
type SideEffects struct {
	Kind  SideEffectsKind
	Bool  bool
	Globs []string
}

// PackageJSON is an immutable, parsed package.json.
type PackageJSON struct {
	// Path is the absolute path of the package.json file itself.
	Path string

	Name     string
	Type     ModuleType
	Main     string
	Module   string
	Types    string
	TsConfig string

	Source      Source
	Browser     Browser
	Alias       AliasMap
	Exports     ExportsNode
	Imports     ExportsNode
	SideEffects SideEffects
}

// Dir returns the package root directory.
func (p *PackageJSON) Dir() string {
	return filepath.Dir(p.Path)
}

// HasExports reports whether the package declares an "exports" field.
func (p *PackageJSON) HasExports() bool {
	return p.Exports.Kind != ExportsAbsent
}

// Parse parses package.json contents read from path. Comments and trailing
// commas are accepted; syntax errors are returned as *jsonc.SyntaxError.
func Parse(path string, data []byte) (*PackageJSON, error) {
	root, err := jsonc.Parse(path, data)
	if err != nil {
		return nil, err
	}
	if root.Kind != jsonc.Object {
		return nil, fmt.Errorf("%w: %s: expected an object, got %s", ErrInvalidPackageJSON, path, root.Kind)
	}

	pkg := &PackageJSON{
		Path:     path,
		Name:     stringField(root, "name"),
		Main:     stringField(root, "main"),
		Module:   stringField(root, "module"),
		Types:    stringField(root, "types"),
		TsConfig: stringField(root, "tsconfig"),
	}
	if pkg.Types == "" {
		pkg.Types = stringField(root, "typings")
	}
	if stringField(root, "type") == "module" {
		pkg.Type = Module
	}

	if v, ok := root.Get("source"); ok {
		pkg.Source = parseSource(v)
	}
	if v, ok := root.Get("browser"); ok {
		switch v.Kind {
		case jsonc.String:
			pkg.Browser.Path = v.Str
		case jsonc.Object:
			pkg.Browser.Map = parseAliasMap(v)
		}
	}
	if v, ok := root.Get("alias"); ok && v.Kind == jsonc.Object {
		pkg.Alias = parseAliasMap(v)
	}
	// A null exports field is treated as absent, unlike a null target.
	if v, ok := root.Get("exports"); ok && v.Kind != jsonc.Null {
		pkg.Exports = parseExports(v)
	}
	if v, ok := root.Get("imports"); ok && v.Kind == jsonc.Object {
		pkg.Imports = parseExports(v)
	}
	if v, ok := root.Get("sideEffects"); ok {
		pkg.SideEffects = parseSideEffects(v)
	}
	return pkg, nil
}

func stringField(v jsonc.Value, key string) string {
	if f, ok := v.Get(key); ok && f.Kind == jsonc.String {
		return f.Str
	}
	return ""
}

func parseSource(v jsonc.Value) Source {
	switch v.Kind {
	case jsonc.String:
		return Source{Kind: SourcePath, Paths: []string{v.Str}}
	case jsonc.Array:
		var paths []string
		for _, item := range v.Items {
			if item.Kind == jsonc.String {
				paths = append(paths, item.Str)
			}
		}
		return Source{Kind: SourceArray, Paths: paths}
	case jsonc.Object:
		return Source{Kind: SourceMap, Map: parseAliasMap(v)}
	case jsonc.Bool:
		return Source{Kind: SourceBool, Bool: v.Bool}
	}
	return Source{}
}

func parseSideEffects(v jsonc.Value) SideEffects {
	switch v.Kind {
	case jsonc.Bool:
		return SideEffects{Kind: SideEffectsBool, Bool: v.Bool}
	case jsonc.String:
		return SideEffects{Kind: SideEffectsGlobs, Globs: []string{v.Str}}
	case jsonc.Array:
		var globs []string
		for _, item := range v.Items {
			if item.Kind == jsonc.String {
				globs = append(globs, item.Str)
			}
		}
		return SideEffects{Kind: SideEffectsGlobs, Globs: globs}
	}
	return SideEffects{}
}

// Entry is a candidate entry point named by a package.json field.
type Entry struct {
	Field Fields
	Path  string
}

// Entries lists the entry points named by the selected fields, as
// absolute paths, in priority order: source, types, browser, module,
// main, tsconfig.
func (p *PackageJSON) Entries(fields Fields) []Entry {
	dir := p.Dir()
	var entries []Entry
	add := func(field Fields, rel string) {
		if rel != "" {
			entries = append(entries, Entry{Field: field, Path: filepath.Join(dir, rel)})
		}
	}

	if fields.Has(FieldSource) {
		for _, s := range p.Source.Paths {
			add(FieldSource, s)
		}
	}
	if fields.Has(FieldTypes) {
		add(FieldTypes, p.Types)
	}
	if fields.Has(FieldBrowser) {
		if p.Browser.Path != "" {
			add(FieldBrowser, p.Browser.Path)
		} else if p.Name != "" {
			// {"browser": {"pkg-name": "./browser.js"}} replaces the main entry.
			if v, ok := p.Browser.Map.lookupExact(packageKey(p.Name)); ok && v.Kind == AliasSpecifier {
				add(FieldBrowser, v.Specifier)
			}
		}
	}
	if fields.Has(FieldModule) {
		add(FieldModule, p.Module)
	}
	if fields.Has(FieldMain) {
		add(FieldMain, p.Main)
	}
	if fields.Has(FieldTsConfig) {
		add(FieldTsConfig, p.TsConfig)
	}
	return entries
}
