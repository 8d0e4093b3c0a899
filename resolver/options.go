/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"slices"

	"bennypowers.dev/modresolve/packagejson"
	"bennypowers.dev/modresolve/specifier"
)

// IncludeKind selects how IncludeNodeModules decides.
type IncludeKind int

const (
	// IncludeAll resolves every package. This is the zero value.
	IncludeAll IncludeKind = iota
	// IncludeNone treats every package as external.
	IncludeNone
	// IncludeList resolves only the listed packages.
	IncludeList
	// IncludeMap resolves packages mapped to true; unlisted packages are resolved.
	IncludeMap
)

// IncludeNodeModules decides which packages are resolved and which are
// left external.
type IncludeNodeModules struct {
	Kind    IncludeKind
	Modules []string
	Map     map[string]bool
}

// Includes reports whether module should be resolved.
func (inc IncludeNodeModules) Includes(module string) bool {
	switch inc.Kind {
	case IncludeNone:
		return false
	case IncludeList:
		return slices.Contains(inc.Modules, module)
	case IncludeMap:
		if v, ok := inc.Map[module]; ok {
			return v
		}
		return true
	}
	return true
}

// ModuleDirResolver locates the directory of an installed package,
// replacing the node_modules search. Its errors are returned unchanged.
type ModuleDirResolver func(module, from string) (string, error)

// Options configures a Resolver.
type Options struct {
	// ProjectRoot bounds ancestor searches and anchors absolute and tilde
	// specifiers. Its package.json may declare project-wide aliases.
	ProjectRoot string

	Flags specifier.Flags

	// Extensions are tried in order when OptionalExtensions is set,
	// without a leading dot.
	Extensions []string

	// IndexFile is the stem of directory index files, usually "index".
	IndexFile string

	// Entries selects the package.json entry fields, and which of the
	// "source" and "browser" alias maps apply.
	Entries packagejson.Fields

	Conditions       packagejson.Conditions
	CustomConditions []string

	IncludeNodeModules IncludeNodeModules

	ModuleDirResolver ModuleDirResolver

	// StrictURLExtensions stops url() specifiers from gaining extensions,
	// so url(foo) only matches a file named exactly "foo".
	StrictURLExtensions bool
}

// NodeCJSOptions mirrors require() in Node.js.
func NodeCJSOptions(root string) Options {
	return Options{
		ProjectRoot: root,
		Flags:       specifier.NodeCJS,
		Extensions:  []string{"js", "json", "node"},
		IndexFile:   "index",
		Entries:     packagejson.FieldMain,
		Conditions:  packagejson.ConditionNode,
	}
}

// NodeESMOptions mirrors import in Node.js: fully specified paths only.
func NodeESMOptions(root string) Options {
	return Options{
		ProjectRoot: root,
		Flags:       specifier.NodeESM,
		IndexFile:   "index",
		Entries:     packagejson.FieldMain,
		Conditions:  packagejson.ConditionNode,
	}
}

// BundlerOptions enables every feature, targeting browsers.
func BundlerOptions(root string) Options {
	return Options{
		ProjectRoot: root,
		Flags:       specifier.Bundler,
		Extensions:  []string{"ts", "tsx", "mjs", "js", "jsx", "cjs", "json"},
		IndexFile:   "index",
		Entries:     packagejson.FieldSource | packagejson.FieldBrowser | packagejson.FieldModule | packagejson.FieldMain,
		Conditions:  packagejson.ConditionBrowser | packagejson.ConditionModule,
	}
}

// TypeScriptOptions finds declarations the way the TypeScript compiler
// does with "moduleResolution": "bundler".
func TypeScriptOptions(root string) Options {
	return Options{
		ProjectRoot: root,
		Flags:       specifier.TypeScript,
		Extensions:  []string{"ts", "tsx", "d.ts", "js", "jsx", "json"},
		IndexFile:   "index",
		Entries:     packagejson.FieldTypes | packagejson.FieldMain,
		Conditions:  packagejson.ConditionTypes,
	}
}

// aliasFields returns the alias maps that apply under these options.
func (o *Options) aliasFields() packagejson.Fields {
	return packagejson.FieldAlias | o.Entries&(packagejson.FieldSource|packagejson.FieldBrowser)
}
