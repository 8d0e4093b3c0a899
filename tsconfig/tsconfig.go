/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package tsconfig provides a typed view of the parts of tsconfig.json that
// affect module resolution: baseUrl, paths, moduleSuffixes and extends.
package tsconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/modresolve/internal/jsonc"
	"bennypowers.dev/modresolve/specifier"
)

// ErrInvalidTsConfig indicates a tsconfig.json that is not a JSON object.
var ErrInvalidTsConfig = errors.New("invalid tsconfig.json")

// PathMapping is one "paths" entry, in declaration order.
type PathMapping struct {
	Key     string
	Targets []string
}

// TsConfig is an immutable tsconfig.json. After Extend, it also reflects
// the options inherited through "extends".
type TsConfig struct {
	// Path is the absolute path of the tsconfig.json file.
	Path string

	// BaseURL is absolute, or empty when unset.
	BaseURL string

	// Paths is nil when no config in the chain declares "paths".
	Paths []PathMapping

	// PathsBase is the directory of the config that declared Paths.
	PathsBase string

	// ModuleSuffixes is nil when unset.
	ModuleSuffixes []string

	// Extends lists the raw "extends" specifiers, in order.
	Extends []string
}

// Parse parses tsconfig.json contents read from path.
func Parse(path string, data []byte) (*TsConfig, error) {
	root, err := jsonc.Parse(path, data)
	if err != nil {
		return nil, err
	}
	if root.Kind != jsonc.Object {
		return nil, fmt.Errorf("%w: %s: expected an object, got %s", ErrInvalidTsConfig, path, root.Kind)
	}

	dir := filepath.Dir(path)
	ts := &TsConfig{Path: path}

	switch ext, _ := root.Get("extends"); ext.Kind {
	case jsonc.String:
		ts.Extends = []string{ext.Str}
	case jsonc.Array:
		for _, item := range ext.Items {
			if item.Kind == jsonc.String {
				ts.Extends = append(ts.Extends, item.Str)
			}
		}
	}

	opts, ok := root.Get("compilerOptions")
	if !ok || opts.Kind != jsonc.Object {
		return ts, nil
	}

	if v, ok := opts.Get("baseUrl"); ok && v.Kind == jsonc.String {
		ts.BaseURL = filepath.Join(dir, filepath.FromSlash(v.Str))
	}
	if v, ok := opts.Get("paths"); ok && v.Kind == jsonc.Object {
		ts.Paths = []PathMapping{}
		ts.PathsBase = dir
		for _, m := range v.Members {
			var targets []string
			for _, item := range m.Value.Items {
				if item.Kind == jsonc.String {
					targets = append(targets, item.Str)
				}
			}
			ts.Paths = append(ts.Paths, PathMapping{Key: m.Key, Targets: targets})
		}
	}
	if v, ok := opts.Get("moduleSuffixes"); ok && v.Kind == jsonc.Array {
		ts.ModuleSuffixes = []string{}
		for _, item := range v.Items {
			if item.Kind == jsonc.String {
				ts.ModuleSuffixes = append(ts.ModuleSuffixes, item.Str)
			}
		}
	}
	return ts, nil
}

// Extend returns a copy of t with any option it leaves unset taken from base.
func (t *TsConfig) Extend(base *TsConfig) *TsConfig {
	merged := *t
	if merged.BaseURL == "" {
		merged.BaseURL = base.BaseURL
	}
	if merged.Paths == nil {
		merged.Paths = base.Paths
		merged.PathsBase = base.PathsBase
	}
	if merged.ModuleSuffixes == nil {
		merged.ModuleSuffixes = base.ModuleSuffixes
	}
	return &merged
}

// PathsFor returns candidate paths for a bare specifier, in order: the
// targets of the exact "paths" key, or else of the first matching
// pattern key, followed by the baseUrl candidate.
func (t *TsConfig) PathsFor(spec specifier.Specifier) []string {
	var name string
	switch spec.Kind {
	case specifier.KindPackage:
		name = spec.String()
	case specifier.KindBuiltin:
		name = spec.Name
	default:
		return nil
	}

	var candidates []string
	if t.Paths != nil {
		base := t.BaseURL
		if base == "" {
			base = t.PathsBase
		}
		if targets, capture, ok := t.matchPaths(name); ok {
			for _, target := range targets {
				target = strings.Replace(target, "*", capture, 1)
				candidates = append(candidates, filepath.Join(base, filepath.FromSlash(target)))
			}
		}
	}
	if t.BaseURL != "" {
		candidates = append(candidates, filepath.Join(t.BaseURL, filepath.FromSlash(name)))
	}
	return candidates
}

func (t *TsConfig) matchPaths(name string) ([]string, string, bool) {
	for _, m := range t.Paths {
		if m.Key == name && !strings.Contains(m.Key, "*") {
			return m.Targets, "", true
		}
	}
	for _, m := range t.Paths {
		prefix, suffix, ok := strings.Cut(m.Key, "*")
		if !ok {
			continue
		}
		if len(name) >= len(prefix)+len(suffix) && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			return m.Targets, name[len(prefix) : len(name)-len(suffix)], true
		}
	}
	return nil, "", false
}
