/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/modresolve/cache"
	"bennypowers.dev/modresolve/internal/logger"
	"bennypowers.dev/modresolve/packagejson"
	"bennypowers.dev/modresolve/specifier"
)

func (q *request) resolveBare(spec specifier.Specifier) (Resolution, error) {
	if !q.r.opts.IncludeNodeModules.Includes(spec.Module) {
		return Resolution{Kind: ResolutionExternal}, nil
	}
	if res, ok, err := q.loadAlias(spec); ok || err != nil {
		return res, err
	}
	if res, ok, err := q.tsconfigPaths(spec); ok || err != nil {
		return res, err
	}
	dir, err := q.findNodeModule(spec.Module)
	if err != nil {
		return Resolution{}, err
	}
	return q.resolvePackage(dir, spec)
}

func (q *request) resolveBuiltin(spec specifier.Specifier) (Resolution, error) {
	if res, ok, err := q.loadAlias(spec); ok || err != nil {
		return res, err
	}
	if res, ok, err := q.tsconfigPaths(spec); ok || err != nil {
		return res, err
	}
	return Resolution{Kind: ResolutionBuiltin, Name: spec.Name}, nil
}

// resolveHash maps a "#name" import through the nearest package.json.
func (q *request) resolveHash(name string) (Resolution, error) {
	if q.typ == specifier.URL {
		return Resolution{Kind: ResolutionExternal}, nil
	}
	if q.typ != specifier.ESM || !q.r.opts.Flags.Has(specifier.Exports) {
		return Resolution{}, &Error{
			Kind:      ErrorInvalidSpecifier,
			Specifier: name,
			From:      q.from,
			Err:       errors.New("package imports need ESM with exports enabled"),
		}
	}

	pkg, err := q.nearestPackage(q.from)
	if err != nil {
		return Resolution{}, err
	}
	if pkg == nil {
		return Resolution{}, &Error{Kind: ErrorPackageJSONNotFound, Specifier: name, From: q.from}
	}

	target, err := pkg.ResolveImports(name, q.conditions, q.r.opts.CustomConditions)
	if err != nil {
		return Resolution{}, &Error{Kind: ErrorPackageJSONError, Specifier: name, Path: pkg.Path, From: q.from, Err: err}
	}

	switch target.Kind {
	case packagejson.ResolutionPath:
		res, ok, err := q.tryFileWithoutAliases(target.Path)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			return Resolution{}, &Error{Kind: ErrorFileNotFound, Path: target.Path, From: q.from}
		}
		return res, nil
	case packagejson.ResolutionPackage:
		logger.Debug("imports redirect", "specifier", name, "target", target.Specifier, "package", pkg.Path)
		spec, _, err := specifier.Parse(target.Specifier, specifier.ESM, q.r.opts.Flags)
		if err != nil {
			return Resolution{}, &Error{Kind: ErrorInvalidSpecifier, Specifier: target.Specifier, Path: pkg.Path, Err: err}
		}
		if spec.Kind != specifier.KindPackage && spec.Kind != specifier.KindBuiltin {
			return Resolution{}, &Error{Kind: ErrorInvalidSpecifier, Specifier: target.Specifier, Path: pkg.Path}
		}
		return q.resolve(spec)
	}
	return Resolution{}, &Error{Kind: ErrorPackageJSONError, Specifier: name, Path: pkg.Path, From: q.from}
}

// loadAlias applies the nearest package's aliases, then the project root's.
func (q *request) loadAlias(spec specifier.Specifier) (Resolution, bool, error) {
	if !q.r.opts.Flags.Has(specifier.Aliases) {
		return Resolution{}, false, nil
	}
	fields := q.r.opts.aliasFields()

	pkg, err := q.nearestPackage(q.from)
	if err != nil {
		return Resolution{}, false, err
	}
	if pkg != nil && q.from != pkg.Path {
		if v, ok := pkg.ResolveAliases(spec, q.fieldsFor(pkg, fields)); ok {
			return q.followAlias(v, pkg, spec.String())
		}
	}

	root, err := q.rootPackage()
	if err != nil {
		return Resolution{}, false, err
	}
	if root != nil && (pkg == nil || root.Path != pkg.Path) && q.from != root.Path {
		if v, ok := root.ResolveAliases(spec, q.fieldsFor(root, fields)); ok {
			return q.followAlias(v, root, spec.String())
		}
	}
	return Resolution{}, false, nil
}

// followAlias resolves an alias target. Specifier targets are resolved as
// require() calls from the package.json that declared them.
func (q *request) followAlias(v packagejson.AliasValue, pkg *packagejson.PackageJSON, key string) (Resolution, bool, error) {
	switch v.Kind {
	case packagejson.AliasDisabled:
		return Resolution{Kind: ResolutionEmpty}, true, nil
	case packagejson.AliasGlobal:
		return Resolution{Kind: ResolutionGlobal, Name: v.Global}, true, nil
	}

	if q.depth >= maxRedirects {
		return Resolution{}, false, &Error{Kind: ErrorInvalidSpecifier, Specifier: key, Path: pkg.Path, From: q.from, Err: errRedirectLimit}
	}
	logger.Debug("alias", "specifier", key, "target", v.Specifier, "package", pkg.Path)

	spec, _, err := specifier.Parse(v.Specifier, specifier.CJS, q.r.opts.Flags)
	if err != nil {
		return Resolution{}, false, &Error{Kind: ErrorInvalidSpecifier, Specifier: v.Specifier, Path: pkg.Path, Err: err}
	}
	sub := q.r.newRequest(pkg.Path, specifier.CJS, q.inv, q.depth+1)
	sub.conditions = q.conditions
	sub.priorityExt = q.priorityExt
	res, err := sub.resolve(spec)
	if err != nil {
		return Resolution{}, false, err
	}
	return res, true, nil
}

// tsconfigPaths tries each tsconfig "paths" candidate in turn. Candidates
// that fail are skipped.
func (q *request) tsconfigPaths(spec specifier.Specifier) (Resolution, bool, error) {
	ts, err := q.tsconfigFor()
	if err != nil || ts == nil {
		return Resolution{}, false, err
	}
	for _, candidate := range ts.PathsFor(spec) {
		res, ok, err := q.loadPath(candidate, false, nil)
		if err == nil && ok {
			logger.Debug("tsconfig paths", "specifier", spec.String(), "path", candidate, "tsconfig", ts.Path)
			return res, true, nil
		}
	}
	return Resolution{}, false, nil
}

// fieldsFor drops "source" for packages whose real location is inside
// node_modules. Only packages linked in from elsewhere, such as workspace
// siblings, are built from source.
func (q *request) fieldsFor(pkg *packagejson.PackageJSON, fields packagejson.Fields) packagejson.Fields {
	if pkg != nil && inNodeModules(pkg.Dir()) {
		return fields &^ packagejson.FieldSource
	}
	return fields
}

// findNodeModule locates the directory of an installed package.
func (q *request) findNodeModule(module string) (string, error) {
	if hook := q.r.opts.ModuleDirResolver; hook != nil {
		return hook(module, q.from)
	}

	start := filepath.Dir(q.from)
	q.inv.InvalidateOnFileCreateAbove(filepath.Join(nodeModules, filepath.FromSlash(module)), start)
	for dir := range ancestors(start) {
		if filepath.Base(dir) == nodeModules {
			continue
		}
		candidate := filepath.Join(dir, nodeModules, filepath.FromSlash(module))
		if q.r.cache.IsDir(candidate) {
			return candidate, nil
		}
	}
	return "", &Error{Kind: ErrorModuleNotFound, Specifier: module, From: q.from}
}

// resolvePackage resolves a package specifier inside its package directory.
func (q *request) resolvePackage(dir string, spec specifier.Specifier) (Resolution, error) {
	module, subpath := spec.Module, spec.Subpath
	flags := q.r.opts.Flags

	pkg, err := q.readPackage(filepath.Join(dir, "package.json"))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			return Resolution{}, err
		}
		if subpath == "" {
			res, ok, err := q.loadFile(filepath.Join(dir, q.r.opts.IndexFile), nil)
			if err != nil || ok {
				return res, err
			}
			return Resolution{}, &Error{Kind: ErrorModuleNotFound, Specifier: module, Path: dir, From: q.from}
		}
		target := filepath.Join(dir, filepath.FromSlash(subpath))
		res, ok, err := q.loadPath(target, strings.HasSuffix(subpath, "/"), nil)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			return Resolution{}, &Error{Kind: ErrorModuleSubpathNotFound, Specifier: module, Path: target, From: q.from}
		}
		return res, nil
	}

	fields := q.fieldsFor(pkg, q.r.opts.Entries)
	if subpath == "" && fields.Has(packagejson.FieldSource) {
		for _, entry := range pkg.Entries(packagejson.FieldSource) {
			if res, ok, err := q.loadFile(entry.Path, pkg); ok || err != nil {
				return res, err
			}
		}
	}

	if flags.Has(specifier.Exports) && pkg.HasExports() {
		target, err := pkg.ResolveExports(subpath, q.conditions, q.r.opts.CustomConditions)
		if err != nil {
			return Resolution{}, &Error{Kind: ErrorPackageJSONError, Specifier: module, Path: pkg.Path, From: q.from, Err: err}
		}
		var res Resolution
		var ok bool
		if flags.Has(specifier.ExportsOptionalExtensions) {
			res, ok, err = q.loadFile(target, pkg)
		} else {
			res, ok, err = q.tryFileWithoutAliases(target)
		}
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			return Resolution{}, &Error{Kind: ErrorModuleSubpathNotFound, Specifier: module, Path: target, From: q.from}
		}
		return res, nil
	}

	if subpath != "" {
		target := filepath.Join(dir, filepath.FromSlash(subpath))
		res, ok, err := q.loadPath(target, strings.HasSuffix(subpath, "/"), pkg)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			return Resolution{}, &Error{Kind: ErrorModuleSubpathNotFound, Specifier: module, Path: target, From: q.from}
		}
		return res, nil
	}

	if res, ok, err := q.tryEntries(pkg, dir); ok || err != nil {
		return res, err
	}
	if res, ok, err := q.loadFile(filepath.Join(dir, q.r.opts.IndexFile), pkg); ok || err != nil {
		return res, err
	}

	if declared := pkg.Entries(fields); len(declared) > 0 {
		return Resolution{}, &Error{
			Kind:      ErrorModuleEntryNotFound,
			Specifier: module,
			Path:      declared[0].Path,
			Field:     declared[0].Field.String(),
			From:      q.from,
		}
	}
	return Resolution{}, &Error{Kind: ErrorModuleNotFound, Specifier: module, Path: dir, From: q.from, Err: fmt.Errorf("%s has no entry point", pkg.Path)}
}
