/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package packagejson

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"bennypowers.dev/modresolve/internal/jsonc"
)

// ExportsKind is the shape of an exports or imports node.
type ExportsKind int

const (
	// ExportsAbsent means the field was not declared.
	ExportsAbsent ExportsKind = iota
	// ExportsNull is an explicit null, which blocks a path.
	ExportsNull
	// ExportsString is a target path or bare specifier.
	ExportsString
	// ExportsArray is an ordered list of fallbacks.
	ExportsArray
	// ExportsMap is a map of subpath patterns or conditions.
	ExportsMap
	// ExportsInvalid is a number or boolean, which is never a valid target.
	ExportsInvalid
)

// KeyKind classifies keys of an exports map.
type KeyKind int

const (
	// KeyMain is ".".
	KeyMain KeyKind = iota
	// KeyPattern is a "./subpath" or "#name" key, possibly containing one "*".
	KeyPattern
	// KeyCondition is a well-known condition such as "import".
	KeyCondition
	// KeyCustomCondition is any other condition name.
	KeyCustomCondition
)

// ExportsKey is a classified exports map key. For patterns, Name has its
// leading "./" removed; "#" import keys are kept as written.
type ExportsKey struct {
	Kind      KeyKind
	Name      string
	Condition Conditions
}

// ExportsEntry is one member of an exports map, in declaration order.
type ExportsEntry struct {
	Key   ExportsKey
	Value ExportsNode
}

// ExportsNode is a node of the "exports" or "imports" tree.
type ExportsNode struct {
	Kind    ExportsKind
	Target  string
	Items   []ExportsNode
	Entries []ExportsEntry
}

func parseExports(v jsonc.Value) ExportsNode {
	switch v.Kind {
	case jsonc.Null:
		return ExportsNode{Kind: ExportsNull}
	case jsonc.String:
		return ExportsNode{Kind: ExportsString, Target: v.Str}
	case jsonc.Array:
		items := make([]ExportsNode, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, parseExports(item))
		}
		return ExportsNode{Kind: ExportsArray, Items: items}
	case jsonc.Object:
		entries := make([]ExportsEntry, 0, len(v.Members))
		for _, m := range v.Members {
			entries = append(entries, ExportsEntry{Key: parseExportsKey(m.Key), Value: parseExports(m.Value)})
		}
		return ExportsNode{Kind: ExportsMap, Entries: entries}
	}
	return ExportsNode{Kind: ExportsInvalid}
}

func parseExportsKey(key string) ExportsKey {
	switch {
	case key == ".":
		return ExportsKey{Kind: KeyMain, Name: key}
	case strings.HasPrefix(key, "./"):
		return ExportsKey{Kind: KeyPattern, Name: key[2:]}
	case strings.HasPrefix(key, "#"):
		return ExportsKey{Kind: KeyPattern, Name: key}
	}
	if c, ok := conditionNames[key]; ok {
		return ExportsKey{Kind: KeyCondition, Name: key, Condition: c}
	}
	return ExportsKey{Kind: KeyCustomCondition, Name: key}
}

func (n ExportsNode) get(kind KeyKind, name string) (ExportsNode, bool) {
	for _, e := range n.Entries {
		if e.Key.Kind == kind && e.Key.Name == name {
			return e.Value, true
		}
	}
	return ExportsNode{}, false
}

// keyShape reports whether the map has "." or pattern keys, and
// whether it has condition keys.
func (n ExportsNode) keyShape() (subpaths, conditions bool) {
	for _, e := range n.Entries {
		switch e.Key.Kind {
		case KeyMain, KeyPattern:
			subpaths = true
		default:
			conditions = true
		}
	}
	return subpaths, conditions
}

// ResolutionKind is the outcome of an exports or imports lookup.
type ResolutionKind int

const (
	// ResolutionNone means no target matched.
	ResolutionNone ResolutionKind = iota
	// ResolutionPath is an absolute file path inside the package.
	ResolutionPath
	// ResolutionPackage is a bare specifier to resolve in turn (imports only).
	ResolutionPackage
)

// ExportsResolution is the result of ResolveImports.
type ExportsResolution struct {
	Kind      ResolutionKind
	Path      string
	Specifier string
}

// matcher carries the active conditions through target resolution.
type matcher struct {
	dir        string
	conditions Conditions
	custom     []string
}

func (m matcher) matches(key ExportsKey) bool {
	switch key.Kind {
	case KeyCondition:
		return key.Condition == ConditionDefault || m.conditions.Has(key.Condition)
	case KeyCustomCondition:
		return slices.Contains(m.custom, key.Name)
	}
	return false
}

// ResolveExports maps subpath ("" for the package main, otherwise without
// a leading "./") through the "exports" field to an absolute path.
func (p *PackageJSON) ResolveExports(subpath string, conditions Conditions, custom []string) (string, error) {
	m := matcher{dir: p.Dir(), conditions: conditions, custom: custom}
	exports := p.Exports

	if exports.Kind == ExportsMap {
		if subpaths, conds := exports.keyShape(); subpaths && conds {
			return "", fmt.Errorf("%w: %s mixes subpath and condition keys in \"exports\"", ErrInvalidPackageTarget, p.Path)
		}
	}

	if subpath == "" {
		var main ExportsNode
		found := false
		switch exports.Kind {
		case ExportsString, ExportsArray, ExportsNull, ExportsInvalid:
			main, found = exports, true
		case ExportsMap:
			if v, ok := exports.get(KeyMain, "."); ok {
				main, found = v, true
			} else if subpaths, _ := exports.keyShape(); !subpaths {
				main, found = exports, true
			}
		}
		if found {
			res, err := m.resolveTarget(main, "", false, false)
			if err != nil {
				return "", err
			}
			if res.Kind == ResolutionPath {
				return res.Path, nil
			}
		}
	} else if exports.Kind == ExportsMap {
		if subpaths, _ := exports.keyShape(); subpaths {
			res, err := m.resolveImportsExports(subpath, exports, false)
			if err != nil {
				return "", err
			}
			if res.Kind == ResolutionPath {
				return res.Path, nil
			}
		}
	}

	name := "."
	if subpath != "" {
		name = "./" + subpath
	}
	return "", fmt.Errorf("%w: %q in %s", ErrPackagePathNotExported, name, p.Path)
}

// ResolveImports maps a "#name" specifier through the "imports" field.
// Targets may be paths inside the package or bare package specifiers.
func (p *PackageJSON) ResolveImports(name string, conditions Conditions, custom []string) (ExportsResolution, error) {
	if name == "#" || strings.HasPrefix(name, "#/") {
		return ExportsResolution{}, fmt.Errorf("%w: %q in %s", ErrInvalidSpecifier, name, p.Path)
	}
	m := matcher{dir: p.Dir(), conditions: conditions, custom: custom}
	if p.Imports.Kind == ExportsMap {
		res, err := m.resolveImportsExports(name, p.Imports, true)
		if err != nil {
			return ExportsResolution{}, err
		}
		if res.Kind != ResolutionNone {
			return res, nil
		}
	}
	return ExportsResolution{}, fmt.Errorf("%w: %q in %s", ErrImportNotDefined, name, p.Path)
}

func (m matcher) resolveImportsExports(key string, node ExportsNode, internal bool) (ExportsResolution, error) {
	if !strings.Contains(key, "*") {
		if target, ok := node.get(KeyPattern, key); ok {
			return m.resolveTarget(target, "", false, internal)
		}
	}

	bestKey, bestSub := "", ""
	found := false
	for _, e := range node.Entries {
		if e.Key.Kind != KeyPattern {
			continue
		}
		pattern := e.Key.Name
		if prefix, suffix, ok := strings.Cut(pattern, "*"); ok {
			if !strings.HasPrefix(key, prefix) || key == prefix {
				continue
			}
			if suffix != "" && (!strings.HasSuffix(key, suffix) || len(key) < len(pattern)) {
				continue
			}
			if !found || patternKeyCompare(bestKey, pattern) > 0 {
				bestKey, bestSub, found = pattern, key[len(prefix):len(key)-len(suffix)], true
			}
		} else if strings.HasSuffix(pattern, "/") && strings.HasPrefix(key, pattern) {
			if !found || patternKeyCompare(bestKey, pattern) > 0 {
				bestKey, bestSub, found = pattern, key[len(pattern):], true
			}
		}
	}
	if !found {
		return ExportsResolution{}, nil
	}
	target, _ := node.get(KeyPattern, bestKey)
	return m.resolveTarget(target, bestSub, strings.Contains(bestKey, "*"), internal)
}

// patternKeyCompare orders pattern keys by specificity: a longer literal
// prefix wins, then a key with a "*" beats a folder key, then the longer
// key wins. A positive result means b is more specific than a.
func patternKeyCompare(a, b string) int {
	aStar := strings.IndexByte(a, '*')
	bStar := strings.IndexByte(b, '*')
	baseA, baseB := len(a), len(b)
	if aStar >= 0 {
		baseA = aStar + 1
	}
	if bStar >= 0 {
		baseB = bStar + 1
	}
	switch {
	case baseA > baseB:
		return -1
	case baseB > baseA:
		return 1
	case aStar < 0:
		return 1
	case bStar < 0:
		return -1
	case len(a) > len(b):
		return -1
	case len(b) > len(a):
		return 1
	}
	return 0
}

func (m matcher) resolveTarget(target ExportsNode, sub string, pattern, internal bool) (ExportsResolution, error) {
	switch target.Kind {
	case ExportsString:
		return m.resolveTargetString(target.Target, sub, pattern, internal)

	case ExportsMap:
		if subpaths, _ := target.keyShape(); subpaths {
			return ExportsResolution{}, fmt.Errorf("%w: condition map contains subpath keys", ErrInvalidPackageTarget)
		}
		for _, e := range target.Entries {
			if !m.matches(e.Key) {
				continue
			}
			res, err := m.resolveTarget(e.Value, sub, pattern, internal)
			if err != nil {
				return ExportsResolution{}, err
			}
			if res.Kind == ResolutionNone {
				continue
			}
			return res, nil
		}
		return ExportsResolution{}, nil

	case ExportsArray:
		var lastErr error
		for _, item := range target.Items {
			res, err := m.resolveTarget(item, sub, pattern, internal)
			if err != nil {
				lastErr = err
				continue
			}
			lastErr = nil
			if res.Kind == ResolutionNone {
				continue
			}
			return res, nil
		}
		return ExportsResolution{}, lastErr

	case ExportsInvalid:
		return ExportsResolution{}, fmt.Errorf("%w: target must be a string, array, object or null", ErrInvalidPackageTarget)
	}
	return ExportsResolution{}, nil
}

func (m matcher) resolveTargetString(target, sub string, pattern, internal bool) (ExportsResolution, error) {
	if !strings.HasPrefix(target, "./") {
		if internal && !strings.HasPrefix(target, "../") && !strings.HasPrefix(target, "/") {
			return ExportsResolution{Kind: ResolutionPackage, Specifier: substitute(target, sub, pattern)}, nil
		}
		return ExportsResolution{}, fmt.Errorf("%w: %q", ErrInvalidPackageTarget, target)
	}

	if !validTargetSegments(target[2:], true) {
		return ExportsResolution{}, fmt.Errorf("%w: %q", ErrInvalidPackageTarget, target)
	}
	if sub != "" && !validTargetSegments(sub, false) {
		return ExportsResolution{}, fmt.Errorf("%w: %q matched by %q", ErrInvalidPackageTarget, sub, target)
	}

	resolved := substitute(target, sub, pattern)
	return ExportsResolution{Kind: ResolutionPath, Path: filepath.Join(m.dir, filepath.FromSlash(resolved))}, nil
}

func substitute(target, sub string, pattern bool) string {
	if pattern {
		return strings.ReplaceAll(target, "*", sub)
	}
	return target + sub
}

// validTargetSegments rejects "", ".", ".." and "node_modules" segments
// (case-insensitively). A single trailing "/" is allowed when
// trailingSlash is set, for folder mappings.
func validTargetSegments(p string, trailingSlash bool) bool {
	if trailingSlash {
		p = strings.TrimSuffix(p, "/")
	}
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".", "..":
			return false
		}
		// Casers carry state, so each check gets its own.
		if cases.Fold().String(seg) == "node_modules" {
			return false
		}
	}
	return true
}
