/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"errors"
	"path/filepath"
	"strings"

	"bennypowers.dev/modresolve/cache"
	"bennypowers.dev/modresolve/packagejson"
	"bennypowers.dev/modresolve/specifier"
)

// tsSwaps maps a JavaScript extension to the TypeScript sources that
// compile to it.
var tsSwaps = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

func (q *request) canDir() bool {
	return q.r.opts.Flags.Has(specifier.DirIndex) && q.typ != specifier.URL
}

// loadPath resolves p as a file, then as a directory. A path written with
// a trailing slash is only tried as a directory.
func (q *request) loadPath(p string, dirOnly bool, pkg *packagejson.PackageJSON) (Resolution, bool, error) {
	if dirOnly {
		if !q.canDir() {
			return Resolution{}, false, nil
		}
		return q.loadDirectory(p, pkg)
	}
	if res, ok, err := q.loadFile(p, pkg); ok || err != nil {
		return res, ok, err
	}
	if q.canDir() {
		return q.loadDirectory(p, pkg)
	}
	return Resolution{}, false, nil
}

// loadFile tries p as written, then with the extensions the options allow.
func (q *request) loadFile(p string, pkg *packagejson.PackageJSON) (Resolution, bool, error) {
	if res, ok, err := q.tryWithSuffixes(p, pkg); ok || err != nil {
		return res, ok, err
	}
	if q.typ == specifier.URL && q.r.opts.StrictURLExtensions {
		return Resolution{}, false, nil
	}

	flags := q.r.opts.Flags
	typescript := flags.Has(specifier.TypeScriptExtensions) && !inNodeModules(q.from)
	var candidates []string

	// import "./foo.js" may name the TypeScript source "./foo.ts".
	if typescript {
		ext := filepath.Ext(p)
		stem := strings.TrimSuffix(p, ext)
		for _, swap := range tsSwaps[ext] {
			candidates = append(candidates, stem+swap)
		}
	}

	if flags.Has(specifier.OptionalExtensions) {
		if q.priorityExt != "" {
			candidates = append(candidates, p+"."+q.priorityExt)
		}
		if typescript {
			candidates = append(candidates, p+".ts", p+".tsx")
		}
		for _, ext := range q.r.opts.Extensions {
			candidates = append(candidates, p+"."+strings.TrimPrefix(ext, "."))
		}
	}

	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		if res, ok, err := q.tryWithSuffixes(c, pkg); ok || err != nil {
			return res, ok, err
		}
	}
	return Resolution{}, false, nil
}

// tryWithSuffixes applies tsconfig "moduleSuffixes", inserting each before
// the final extension.
func (q *request) tryWithSuffixes(p string, pkg *packagejson.PackageJSON) (Resolution, bool, error) {
	ts, err := q.tsconfigFor()
	if err != nil {
		return Resolution{}, false, err
	}
	if ts == nil || ts.ModuleSuffixes == nil {
		return q.tryFile(p, pkg)
	}
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	for _, suffix := range ts.ModuleSuffixes {
		if res, ok, err := q.tryFile(stem+suffix+ext, pkg); ok || err != nil {
			return res, ok, err
		}
	}
	return Resolution{}, false, nil
}

// tryFile applies the project's and then the owning package's aliases to
// p before checking that it exists.
func (q *request) tryFile(p string, pkg *packagejson.PackageJSON) (Resolution, bool, error) {
	if q.r.opts.Flags.Has(specifier.Aliases) {
		root, err := q.rootPackage()
		if err != nil {
			return Resolution{}, false, err
		}
		if root != nil {
			if res, ok, err := q.fileAlias(p, root); ok || err != nil {
				return res, ok, err
			}
		}
		if pkg == nil {
			if pkg, err = q.nearestPackage(p); err != nil {
				return Resolution{}, false, err
			}
		}
		if pkg != nil && (root == nil || pkg.Path != root.Path) {
			if res, ok, err := q.fileAlias(p, pkg); ok || err != nil {
				return res, ok, err
			}
		}
	}
	return q.tryFileWithoutAliases(p)
}

func (q *request) fileAlias(p string, pkg *packagejson.PackageJSON) (Resolution, bool, error) {
	if q.from == pkg.Path {
		return Resolution{}, false, nil
	}
	rel, err := filepath.Rel(pkg.Dir(), p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Resolution{}, false, nil
	}
	v, ok := pkg.ResolveAliases(specifier.Relative(filepath.ToSlash(rel)), q.fieldsFor(pkg, q.r.opts.aliasFields()))
	if !ok {
		return Resolution{}, false, nil
	}
	return q.followAlias(v, pkg, "./"+filepath.ToSlash(rel))
}

// tryFileWithoutAliases returns the canonical path of p if it is a file,
// and otherwise records that its creation would matter.
func (q *request) tryFileWithoutAliases(p string) (Resolution, bool, error) {
	if !q.r.cache.IsFile(p) {
		q.inv.InvalidateOnFileCreate(p)
		return Resolution{}, false, nil
	}
	canonical, err := q.r.cache.Canonicalize(p)
	if err != nil {
		return Resolution{}, false, &Error{Kind: ErrorIO, Path: p, From: q.from, Err: err}
	}
	return Resolution{Kind: ResolutionPath, Path: canonical}, true, nil
}

// loadDirectory resolves dir through its package.json entry fields, then
// its index file.
func (q *request) loadDirectory(dir string, parent *packagejson.PackageJSON) (Resolution, bool, error) {
	pkg, err := q.readPackage(filepath.Join(dir, "package.json"))
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		return Resolution{}, false, err
	}
	if pkg != nil {
		if res, ok, err := q.tryEntries(pkg, dir); ok || err != nil {
			return res, ok, err
		}
	} else {
		pkg = parent
	}
	if q.r.opts.Flags.Has(specifier.DirIndex) {
		return q.loadFile(filepath.Join(dir, q.r.opts.IndexFile), pkg)
	}
	return Resolution{}, false, nil
}

// tryEntries resolves the first entry field that names an existing file,
// or a directory with an index file.
func (q *request) tryEntries(pkg *packagejson.PackageJSON, dir string) (Resolution, bool, error) {
	for _, entry := range pkg.Entries(q.fieldsFor(pkg, q.r.opts.Entries)) {
		if res, ok, err := q.loadFile(entry.Path, pkg); ok || err != nil {
			return res, ok, err
		}
		if entry.Path != dir && q.canDir() {
			if res, ok, err := q.loadFile(filepath.Join(entry.Path, q.r.opts.IndexFile), pkg); ok || err != nil {
				return res, ok, err
			}
		}
	}
	return Resolution{}, false, nil
}
