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
	"slices"
	"strings"

	"bennypowers.dev/modresolve/cache"
	"bennypowers.dev/modresolve/internal/logger"
	"bennypowers.dev/modresolve/invalidation"
	"bennypowers.dev/modresolve/specifier"
	"bennypowers.dev/modresolve/tsconfig"
)

// loadTsConfig returns the tsconfig.json at path with its extends chain
// applied. stack holds the configs currently being merged, outermost
// first. Cycles are reported, and never cached, since the same config
// merges cleanly when reached from elsewhere.
func (r *Resolver) loadTsConfig(path string, inv *invalidation.Invalidations, stack []string) (*tsconfig.TsConfig, error) {
	path = filepath.Clean(path)
	if slices.Contains(stack, path) {
		chain := append(slices.Clip(stack), path)
		return nil, fmt.Errorf("%w: %s", errExtendsCycle, strings.Join(chain, " -> "))
	}

	if m, ok := r.cache.MergedTsConfig(path); ok {
		inv.Merge(m.Invalidations)
		return m.Config, m.Err
	}

	local := invalidation.New()
	cfg, err := r.buildTsConfig(path, local, append(slices.Clip(stack), path))
	if !errors.Is(err, errExtendsCycle) {
		m := r.cache.StoreMergedTsConfig(path, &cache.Merged{Config: cfg, Err: err, Invalidations: local})
		cfg, err, local = m.Config, m.Err, m.Invalidations
	}
	inv.Merge(local)
	return cfg, err
}

func (r *Resolver) buildTsConfig(path string, inv *invalidation.Invalidations, stack []string) (*tsconfig.TsConfig, error) {
	cfg, err := invalidation.Read(inv, path, func() (*tsconfig.TsConfig, error) {
		return r.cache.ReadTsConfig(path)
	})
	if err != nil {
		return nil, fileError(path, err)
	}
	if len(cfg.Extends) == 0 {
		return cfg, nil
	}

	// Later entries in an extends array override earlier ones.
	var base *tsconfig.TsConfig
	for _, ext := range cfg.Extends {
		parent, err := r.loadExtends(ext, path, inv, stack)
		if err != nil {
			return nil, &Error{Kind: ErrorTsConfigExtendsNotFound, Specifier: ext, Path: path, Err: err}
		}
		if base == nil {
			base = parent
		} else {
			base = parent.Extend(base)
		}
	}
	return cfg.Extend(base), nil
}

func (r *Resolver) loadExtends(ext, from string, inv *invalidation.Invalidations, stack []string) (*tsconfig.TsConfig, error) {
	target, err := r.resolveExtends(ext, from, inv)
	if err != nil {
		return nil, err
	}
	logger.Debug("tsconfig extends", "tsconfig", from, "extends", target)
	return r.loadTsConfig(target, inv, stack)
}

// resolveExtends locates the file an "extends" entry names. Paths may omit
// ".json" and may name a directory holding a tsconfig.json. Package
// specifiers resolve like require() calls that prefer "tsconfig" entries.
func (r *Resolver) resolveExtends(ext, from string, inv *invalidation.Invalidations) (string, error) {
	spec, _, err := specifier.Parse(ext, specifier.CJS, specifier.NodeCJS)
	if err != nil {
		return "", err
	}

	var p string
	switch spec.Kind {
	case specifier.KindRelative:
		p = filepath.Join(filepath.Dir(from), filepath.FromSlash(spec.Path))
	case specifier.KindAbsolute:
		p = filepath.FromSlash(spec.Path)
	case specifier.KindPackage:
		res, err := r.extends.newRequest(from, specifier.CJS, inv, 0).resolve(spec)
		if err != nil {
			return "", err
		}
		if res.Kind != ResolutionPath {
			return "", fmt.Errorf("%q resolved to %s", ext, res)
		}
		return res.Path, nil
	default:
		return "", fmt.Errorf("unsupported extends %q", ext)
	}

	if ext == "." || ext == ".." || strings.HasSuffix(ext, "/") {
		p = filepath.Join(p, "tsconfig.json")
	}
	candidates := []string{p}
	if filepath.Ext(p) != ".json" {
		candidates = append(candidates, p+".json")
	}
	for _, c := range candidates {
		if r.cache.IsFile(c) {
			return c, nil
		}
		inv.InvalidateOnFileCreate(c)
	}
	return "", &Error{Kind: ErrorFileNotFound, Path: p, From: from}
}
