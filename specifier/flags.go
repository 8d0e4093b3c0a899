/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package specifier

import (
	"fmt"
	"slices"
	"strings"
)

// Flags toggles optional resolution features.
type Flags uint16

const (
	// AbsoluteSpecifiers resolves "/foo" against the project root instead of the filesystem root.
	AbsoluteSpecifiers Flags = 1 << iota
	// TildeSpecifiers enables "~/foo", relative to the nearest node_modules package or the project root.
	TildeSpecifiers
	// NPMScheme enables "npm:pkg" specifiers.
	NPMScheme
	// Aliases honours package.json "alias", "source" and "browser" maps.
	Aliases
	// OptionalExtensions tries the configured extensions when a file is missing.
	OptionalExtensions
	// TypeScriptExtensions tries .ts/.tsx for .js/.jsx imports, and the like.
	TypeScriptExtensions
	// ParentExtension tries the importing file's extension first.
	ParentExtension
	// DirIndex allows a directory to resolve to its index file.
	DirIndex
	// Exports honours the package.json "exports" and "imports" fields.
	Exports
	// ExportsOptionalExtensions applies optional extensions to "exports" targets.
	ExportsOptionalExtensions
	// TsConfig honours tsconfig.json "paths", "baseUrl" and "moduleSuffixes".
	TsConfig
)

// Presets for common environments.
const (
	// NodeCJS mirrors require() in Node.js.
	NodeCJS = Exports | DirIndex | OptionalExtensions
	// NodeESM mirrors import in Node.js.
	NodeESM = Exports
	// TypeScript mirrors the TypeScript compiler's "bundler" resolution.
	TypeScript = TsConfig | Exports | DirIndex | OptionalExtensions | TypeScriptExtensions | ExportsOptionalExtensions
	// Bundler enables every feature.
	Bundler = AbsoluteSpecifiers | TildeSpecifiers | NPMScheme | Aliases | OptionalExtensions |
		TypeScriptExtensions | ParentExtension | DirIndex | Exports | ExportsOptionalExtensions | TsConfig
)

type namedFlag struct {
	name string
	flag Flags
}

var flagNames = []namedFlag{
	{"absolute-specifiers", AbsoluteSpecifiers},
	{"tilde-specifiers", TildeSpecifiers},
	{"npm-scheme", NPMScheme},
	{"aliases", Aliases},
	{"optional-extensions", OptionalExtensions},
	{"typescript-extensions", TypeScriptExtensions},
	{"parent-extension", ParentExtension},
	{"dir-index", DirIndex},
	{"exports", Exports},
	{"exports-optional-extensions", ExportsOptionalExtensions},
	{"tsconfig", TsConfig},
}

var presets = map[string]Flags{
	"node-cjs":   NodeCJS,
	"node-esm":   NodeESM,
	"typescript": TypeScript,
	"bundler":    Bundler,
}

// Has reports whether every bit in f2 is set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

func (f Flags) String() string {
	var names []string
	for _, n := range flagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseFlags parses a list of flag or preset names. Names may be negated
// with a leading "!" to clear bits set by an earlier preset, e.g.
// ["bundler", "!npm-scheme"].
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		negate := strings.HasPrefix(name, "!")
		name = strings.TrimPrefix(name, "!")
		bits, ok := presets[name]
		if !ok {
			i := slices.IndexFunc(flagNames, func(n namedFlag) bool { return n.name == name })
			if i < 0 {
				return 0, fmt.Errorf("unknown resolver flag %q", raw)
			}
			bits = flagNames[i].flag
		}
		if negate {
			f &^= bits
		} else {
			f |= bits
		}
	}
	return f, nil
}
