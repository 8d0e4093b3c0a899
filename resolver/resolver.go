/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package resolver resolves import, require and url() specifiers to files,
// following the Node.js CommonJS and ESM algorithms, TypeScript path
// mapping, and common bundler extensions.
//
// A Resolver is stateless apart from its shared cache, so one instance may
// serve any number of concurrent Resolve calls.
package resolver

import (
	"errors"
	"path/filepath"
	"strings"

	"bennypowers.dev/modresolve/cache"
	"bennypowers.dev/modresolve/internal/jsonc"
	"bennypowers.dev/modresolve/invalidation"
	"bennypowers.dev/modresolve/packagejson"
	"bennypowers.dev/modresolve/specifier"
	"bennypowers.dev/modresolve/tsconfig"
)

// maxRedirects bounds alias chains.
const maxRedirects = 32

// Resolver resolves specifiers against a filesystem cache.
type Resolver struct {
	opts  Options
	root  string
	cache *cache.Cache

	// extends resolves package specifiers in tsconfig "extends".
	extends *Resolver
}

// New creates a resolver. Resolvers with different options may share a cache.
func New(opts Options, c *cache.Cache) *Resolver {
	if opts.IndexFile == "" {
		opts.IndexFile = "index"
	}
	root := ""
	if opts.ProjectRoot != "" {
		root = filepath.Clean(opts.ProjectRoot)
	}
	r := &Resolver{opts: opts, root: root, cache: c}
	r.extends = &Resolver{
		opts: Options{
			ProjectRoot:       opts.ProjectRoot,
			Flags:             specifier.NodeCJS,
			Extensions:        []string{"json"},
			IndexFile:         "tsconfig.json",
			Entries:           packagejson.FieldTsConfig,
			Conditions:        opts.Conditions,
			CustomConditions:  opts.CustomConditions,
			ModuleDirResolver: opts.ModuleDirResolver,
		},
		root:  root,
		cache: c,
	}
	return r
}

// Resolve resolves raw as written in the file from. The result always
// carries the invalidations gathered, including on failure.
func (r *Resolver) Resolve(raw, from string, typ specifier.Type) Result {
	inv := invalidation.New()
	res, query, err := r.resolve(raw, from, typ, inv)
	return Result{Resolution: res, Query: query, Err: err, Invalidations: inv}
}

func (r *Resolver) resolve(raw, from string, typ specifier.Type, inv *invalidation.Invalidations) (Resolution, string, error) {
	spec, query, err := specifier.Parse(raw, typ, r.opts.Flags)
	if err != nil {
		return Resolution{}, "", &Error{Kind: ErrorInvalidSpecifier, Specifier: raw, From: from, Err: err}
	}
	res, err := r.newRequest(from, typ, inv, 0).resolve(spec)
	if err != nil {
		return Resolution{}, "", err
	}
	return res, query, nil
}

// ResolveSideEffects reports whether the file at path may have side
// effects, according to its nearest package.json.
func (r *Resolver) ResolveSideEffects(path string, inv *invalidation.Invalidations) (bool, error) {
	q := r.newRequest(path, specifier.ESM, inv, 0)
	pkg, err := q.nearestPackage(q.from)
	if err != nil {
		return true, err
	}
	if pkg == nil {
		return true, nil
	}
	return pkg.HasSideEffects(q.from), nil
}

// ResolveModuleType reports the module format of the file at path. Only
// .js files consult the nearest package.json "type" field.
func (r *Resolver) ResolveModuleType(path string, inv *invalidation.Invalidations) (packagejson.ModuleType, error) {
	switch filepath.Ext(path) {
	case ".mjs", ".mts":
		return packagejson.Module, nil
	case ".cjs", ".cts", ".node":
		return packagejson.CommonJS, nil
	case ".json":
		return packagejson.JSON, nil
	case ".js":
		q := r.newRequest(path, specifier.ESM, inv, 0)
		pkg, err := q.nearestPackage(q.from)
		if err != nil {
			return packagejson.CommonJS, err
		}
		if pkg != nil {
			return pkg.Type, nil
		}
	}
	return packagejson.CommonJS, nil
}

// request is the state of one resolution. Alias targets and imports
// redirects run as nested requests sharing the same recorder.
type request struct {
	r           *Resolver
	from        string
	typ         specifier.Type
	inv         *invalidation.Invalidations
	conditions  packagejson.Conditions
	priorityExt string
	depth       int

	packages       map[string]*packagejson.PackageJSON
	tsconfigLoaded bool
	tsconfig       *tsconfig.TsConfig
	tsconfigErr    error
}

func (r *Resolver) newRequest(from string, typ specifier.Type, inv *invalidation.Invalidations, depth int) *request {
	q := &request{
		r:          r,
		from:       filepath.Clean(from),
		typ:        typ,
		inv:        inv,
		conditions: r.opts.Conditions,
		depth:      depth,
		packages:   make(map[string]*packagejson.PackageJSON),
	}
	switch typ {
	case specifier.ESM:
		q.conditions |= packagejson.ConditionImport
	case specifier.CJS:
		q.conditions |= packagejson.ConditionRequire
	}
	if r.opts.Flags.Has(specifier.ParentExtension) {
		q.priorityExt = strings.TrimPrefix(filepath.Ext(from), ".")
	}
	return q
}

func (q *request) resolve(spec specifier.Specifier) (Resolution, error) {
	switch spec.Kind {
	case specifier.KindRelative:
		return q.resolvePath(filepath.Join(filepath.Dir(q.from), filepath.FromSlash(spec.Path)), spec.Path)

	case specifier.KindTilde:
		return q.resolvePath(filepath.Join(q.tildeRoot(q.from), filepath.FromSlash(spec.Path)), spec.Path)

	case specifier.KindAbsolute:
		p := filepath.FromSlash(spec.Path)
		if q.r.opts.Flags.Has(specifier.AbsoluteSpecifiers) && q.r.root != "" {
			p = filepath.Join(q.r.root, strings.TrimPrefix(spec.Path, "/"))
		}
		return q.resolvePath(p, spec.Path)

	case specifier.KindHash:
		return q.resolveHash(spec.Name)

	case specifier.KindPackage:
		return q.resolveBare(spec)

	case specifier.KindBuiltin:
		return q.resolveBuiltin(spec)

	case specifier.KindURL:
		if q.typ == specifier.URL {
			return Resolution{Kind: ResolutionExternal}, nil
		}
		return Resolution{}, &Error{Kind: ErrorUnknownScheme, Specifier: spec.Name, From: q.from}
	}
	return Resolution{}, &Error{Kind: ErrorInvalidSpecifier, Specifier: spec.String(), From: q.from}
}

func (q *request) resolvePath(p, raw string) (Resolution, error) {
	dirOnly := strings.HasSuffix(raw, "/")
	res, ok, err := q.loadPath(p, dirOnly, nil)
	if err != nil {
		return Resolution{}, err
	}
	if !ok {
		return Resolution{}, &Error{Kind: ErrorFileNotFound, Path: p, From: q.from}
	}
	return res, nil
}

// readPackage reads a package.json, recording the read. A missing file is
// returned as the cache's not-found error for callers to handle.
func (q *request) readPackage(path string) (*packagejson.PackageJSON, error) {
	pkg, err := invalidation.Read(q.inv, path, func() (*packagejson.PackageJSON, error) {
		return q.r.cache.ReadPackage(path)
	})
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, err
		}
		return nil, fileError(path, err)
	}
	return pkg, nil
}

// nearestPackage returns the package.json governing from, or nil.
func (q *request) nearestPackage(from string) (*packagejson.PackageJSON, error) {
	dir := filepath.Dir(from)
	if pkg, ok := q.packages[dir]; ok {
		return pkg, nil
	}
	var pkg *packagejson.PackageJSON
	if p, found := q.findAncestorFile("package.json", from); found {
		var err error
		pkg, err = q.readPackage(p)
		if err != nil && !errors.Is(err, cache.ErrNotFound) {
			return nil, err
		}
	}
	q.packages[dir] = pkg
	return pkg, nil
}

// rootPackage returns the project root's package.json, or nil.
func (q *request) rootPackage() (*packagejson.PackageJSON, error) {
	if q.r.root == "" {
		return nil, nil
	}
	pkg, err := q.readPackage(filepath.Join(q.r.root, "package.json"))
	if err != nil && errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	}
	return pkg, err
}

// tsconfigFor returns the merged tsconfig.json governing the request, or nil.
// Files inside node_modules never use one.
func (q *request) tsconfigFor() (*tsconfig.TsConfig, error) {
	if !q.r.opts.Flags.Has(specifier.TsConfig) || inNodeModules(q.from) {
		return nil, nil
	}
	if !q.tsconfigLoaded {
		q.tsconfigLoaded = true
		if p, ok := q.findAncestorFile("tsconfig.json", q.from); ok {
			q.tsconfig, q.tsconfigErr = q.r.loadTsConfig(p, q.inv, nil)
		}
	}
	return q.tsconfig, q.tsconfigErr
}

func fileError(path string, err error) error {
	var syntaxErr *jsonc.SyntaxError
	if errors.As(err, &syntaxErr) ||
		errors.Is(err, packagejson.ErrInvalidPackageJSON) ||
		errors.Is(err, tsconfig.ErrInvalidTsConfig) {
		return &Error{Kind: ErrorJSON, Path: path, Err: err}
	}
	return &Error{Kind: ErrorIO, Path: path, Err: err}
}
