/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package packagejson

import (
	"strings"

	"bennypowers.dev/modresolve/internal/jsonc"
	"bennypowers.dev/modresolve/specifier"
)

// AliasKind is the shape of an alias target.
type AliasKind int

const (
	// AliasSpecifier redirects to another specifier, resolved from the package root.
	AliasSpecifier AliasKind = iota + 1
	// AliasDisabled is a false target: the module resolves to nothing.
	AliasDisabled
	// AliasGlobal maps the module to a global variable, e.g. {"global": "React"}.
	AliasGlobal
)

// AliasValue is the target of an alias.
type AliasValue struct {
	Kind      AliasKind
	Specifier string
	Global    string
}

type aliasEntry struct {
	raw   string
	key   specifier.Specifier
	glob  bool
	value AliasValue
}

// AliasMap is an ordered alias table from "alias", "source" or "browser".
type AliasMap []aliasEntry

func parseAliasMap(v jsonc.Value) AliasMap {
	var m AliasMap
	for _, member := range v.Members {
		var value AliasValue
		switch member.Value.Kind {
		case jsonc.String:
			value = AliasValue{Kind: AliasSpecifier, Specifier: member.Value.Str}
		case jsonc.Bool:
			if member.Value.Bool {
				continue
			}
			value = AliasValue{Kind: AliasDisabled}
		case jsonc.Object:
			g, ok := member.Value.Get("global")
			if !ok || g.Kind != jsonc.String {
				continue
			}
			value = AliasValue{Kind: AliasGlobal, Global: g.Str}
		default:
			continue
		}

		key, err := parseAliasKey(member.Key)
		if err != nil {
			continue
		}
		m = append(m, aliasEntry{
			raw:   member.Key,
			key:   key,
			glob:  strings.ContainsAny(member.Key, "*?"),
			value: value,
		})
	}
	return m
}

func parseAliasKey(raw string) (specifier.Specifier, error) {
	spec, _, err := specifier.Parse(raw, specifier.CJS, specifier.TildeSpecifiers)
	return spec, err
}

func packageKey(name string) specifier.Specifier {
	spec, err := parseAliasKey(name)
	if err != nil {
		return specifier.Package(name, "")
	}
	return spec
}

func (m AliasMap) lookupExact(spec specifier.Specifier) (AliasValue, bool) {
	for _, e := range m {
		if !e.glob && e.key == spec {
			return e.value, true
		}
	}
	return AliasValue{}, false
}

func (m AliasMap) lookup(spec specifier.Specifier) (AliasValue, bool) {
	if v, ok := m.lookupExact(spec); ok {
		return v, true
	}

	class, subject := aliasSubject(spec)
	for _, e := range m {
		if !e.glob {
			continue
		}
		keyClass, pattern := aliasSubject(e.key)
		if keyClass != class {
			continue
		}
		if captures, ok := matchGlob(pattern, subject); ok {
			v := e.value
			if v.Kind == AliasSpecifier {
				v.Specifier = replaceCaptures(v.Specifier, captures)
			}
			return v, true
		}
	}

	// "foo/sub" falls back to an alias for the whole package "foo".
	if spec.Kind == specifier.KindPackage && spec.Subpath != "" {
		if v, ok := m.lookupExact(specifier.Package(spec.Module, "")); ok {
			if v.Kind == AliasSpecifier {
				v.Specifier = strings.TrimSuffix(v.Specifier, "/") + "/" + spec.Subpath
			}
			return v, true
		}
	}
	return AliasValue{}, false
}

// aliasSubject returns a class, so that relative keys only match relative
// specifiers, and the string a glob key is matched against.
func aliasSubject(spec specifier.Specifier) (string, string) {
	switch spec.Kind {
	case specifier.KindRelative:
		return "relative", spec.Path
	case specifier.KindAbsolute:
		return "absolute", spec.Path
	case specifier.KindTilde:
		return "tilde", spec.Path
	case specifier.KindPackage, specifier.KindBuiltin:
		return "package", spec.String()
	}
	return "", spec.String()
}

// ResolveAliases looks spec up in the selected alias maps, in the order
// source, alias, browser. Exact keys beat glob keys within a map.
func (p *PackageJSON) ResolveAliases(spec specifier.Specifier, fields Fields) (AliasValue, bool) {
	if fields.Has(FieldSource) && p.Source.Kind == SourceMap {
		if v, ok := p.Source.Map.lookup(spec); ok {
			return v, true
		}
	}
	if fields.Has(FieldAlias) {
		if v, ok := p.Alias.lookup(spec); ok {
			return v, true
		}
	}
	if fields.Has(FieldBrowser) {
		if v, ok := p.Browser.Map.lookup(spec); ok {
			return v, true
		}
	}
	return AliasValue{}, false
}
