/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package specifier parses import and require specifiers.
package specifier

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind indicates the type of specifier.
type Kind int

const (
	// KindEmpty is the zero value; Parse never returns it.
	KindEmpty Kind = iota
	// KindRelative is a path relative to the importing file.
	KindRelative
	// KindAbsolute is a path starting with "/" (or a file: URL).
	KindAbsolute
	// KindTilde is a "~/" path, relative to the nearest package root.
	KindTilde
	// KindPackage is a bare package specifier, with an optional subpath.
	KindPackage
	// KindBuiltin is a runtime-provided module such as "fs" or "node:zlib".
	KindBuiltin
	// KindHash is a package-internal "#name" import.
	KindHash
	// KindURL is a URL with a scheme the resolver does not interpret.
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindRelative:
		return "relative"
	case KindAbsolute:
		return "absolute"
	case KindTilde:
		return "tilde"
	case KindPackage:
		return "package"
	case KindBuiltin:
		return "builtin"
	case KindHash:
		return "hash"
	case KindURL:
		return "url"
	default:
		return "empty"
	}
}

// Type is the syntactic context a specifier was written in.
type Type int

const (
	// ESM is an import statement or dynamic import().
	ESM Type = iota
	// CJS is a require() call.
	CJS
	// URL is a url() reference, e.g. from CSS or HTML.
	URL
)

func (t Type) String() string {
	switch t {
	case CJS:
		return "cjs"
	case URL:
		return "url"
	default:
		return "esm"
	}
}

// ParseType parses "esm", "cjs" or "url".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "esm", "import", "":
		return ESM, nil
	case "cjs", "commonjs", "require":
		return CJS, nil
	case "url":
		return URL, nil
	}
	return ESM, fmt.Errorf("unknown specifier type %q", s)
}

// Sentinel errors for specifier parsing.
var (
	// ErrEmptySpecifier indicates an empty import string.
	ErrEmptySpecifier = errors.New("empty specifier")

	// ErrInvalidPackageSpecifier indicates a malformed package name, such as a lone "@scope".
	ErrInvalidPackageSpecifier = errors.New("invalid package specifier")

	// ErrInvalidEncoding indicates a malformed percent-encoded sequence.
	ErrInvalidEncoding = errors.New("invalid percent-encoding")

	// ErrInvalidFileURL indicates a file: URL that does not name a local path.
	ErrInvalidFileURL = errors.New("invalid file URL")
)

// Specifier represents a parsed import specifier.
type Specifier struct {
	// Kind is the type of specifier.
	Kind Kind

	// Path is the (decoded) path for relative, absolute and tilde specifiers.
	// Relative paths have any leading "./" removed.
	Path string

	// Module and Subpath are set for package specifiers,
	// e.g. "@scope/pkg" and "lib/file.js".
	Module  string
	Subpath string

	// Name is the builtin module name, the "#name" import, or the raw URL.
	Name string
}

// Relative returns a relative specifier for p.
func Relative(p string) Specifier {
	return Specifier{Kind: KindRelative, Path: p}
}

// Package returns a package specifier.
func Package(module, subpath string) Specifier {
	return Specifier{Kind: KindPackage, Module: module, Subpath: subpath}
}

// String renders the specifier back into import syntax.
func (s Specifier) String() string {
	switch s.Kind {
	case KindRelative:
		if s.Path == "." || s.Path == ".." || strings.HasPrefix(s.Path, "../") {
			return s.Path
		}
		return "./" + s.Path
	case KindAbsolute:
		return s.Path
	case KindTilde:
		return "~/" + s.Path
	case KindPackage:
		if s.Subpath == "" {
			return s.Module
		}
		return s.Module + "/" + s.Subpath
	default:
		return s.Name
	}
}

// Parse classifies raw and splits off its query string. The query is
// returned with its leading "?", or empty when there is none.
//
// CommonJS specifiers are taken literally, as require() does: no
// percent-decoding and no query stripping.
func Parse(raw string, typ Type, flags Flags) (Specifier, string, error) {
	if raw == "" {
		return Specifier{}, "", ErrEmptySpecifier
	}

	switch raw[0] {
	case '.':
		if raw == "." || raw == ".." || strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../") {
			p := raw
			if rest, ok := strings.CutPrefix(raw, "./"); ok {
				p = strings.TrimLeft(rest, "/")
				if p == "" {
					p = "."
				}
			}
			p, query, err := decodePath(p, typ)
			if err != nil {
				return Specifier{}, "", err
			}
			return Specifier{Kind: KindRelative, Path: p}, query, nil
		}
	case '~':
		if flags.Has(TildeSpecifiers) {
			p := strings.TrimPrefix(raw[1:], "/")
			p, query, err := decodePath(p, typ)
			if err != nil {
				return Specifier{}, "", err
			}
			return Specifier{Kind: KindTilde, Path: p}, query, nil
		}
	case '/':
		if typ == URL && strings.HasPrefix(raw, "//") {
			// Protocol-relative URL, e.g. url('//example.com/a.png').
			return Specifier{Kind: KindURL, Name: raw}, "", nil
		}
		p, query, err := decodePath(raw, typ)
		if err != nil {
			return Specifier{}, "", err
		}
		return Specifier{Kind: KindAbsolute, Path: p}, query, nil
	case '#':
		return Specifier{Kind: KindHash, Name: raw}, "", nil
	}

	if typ == CJS {
		return parseBareCJS(raw)
	}
	return parseBare(raw, typ, flags)
}

func parseBareCJS(raw string) (Specifier, string, error) {
	if name, ok := strings.CutPrefix(raw, "node:"); ok {
		return Specifier{Kind: KindBuiltin, Name: name}, "", nil
	}
	if IsBuiltin(raw) {
		return Specifier{Kind: KindBuiltin, Name: raw}, "", nil
	}
	module, subpath, err := SplitPackage(raw)
	if err != nil {
		return Specifier{}, "", err
	}
	return Package(module, subpath), "", nil
}

func parseBare(raw string, typ Type, flags Flags) (Specifier, string, error) {
	if scheme, rest, ok := parseScheme(raw); ok {
		p, tail := splitPath(rest)
		query := parseQuery(tail)
		switch scheme {
		case "node":
			// Node does not decode or support queries here.
			return Specifier{Kind: KindBuiltin, Name: p}, "", nil
		case "file":
			return parseFileURL(raw)
		case "npm":
			if flags.Has(NPMScheme) {
				if IsBuiltin(p) {
					return Specifier{Kind: KindBuiltin, Name: p}, "", nil
				}
				decoded, err := unescape(p)
				if err != nil {
					return Specifier{}, "", err
				}
				module, subpath, err := SplitPackage(decoded)
				if err != nil {
					return Specifier{}, "", err
				}
				return Package(module, subpath), query, nil
			}
		}
		return Specifier{Kind: KindURL, Name: raw}, "", nil
	}

	p, tail := splitPath(raw)
	query := parseQuery(tail)
	if typ == URL {
		// Bare names in url() position are relative to the referencing file.
		decoded, err := unescape(p)
		if err != nil {
			return Specifier{}, "", err
		}
		return Specifier{Kind: KindRelative, Path: decoded}, query, nil
	}

	if IsBuiltin(p) {
		return Specifier{Kind: KindBuiltin, Name: p}, "", nil
	}
	decoded, err := unescape(p)
	if err != nil {
		return Specifier{}, "", err
	}
	module, subpath, err := SplitPackage(decoded)
	if err != nil {
		return Specifier{}, "", err
	}
	return Package(module, subpath), query, nil
}

func parseFileURL(raw string) (Specifier, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Specifier{}, "", fmt.Errorf("%w: %v", ErrInvalidFileURL, err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return Specifier{}, "", fmt.Errorf("%w: non-local host %q", ErrInvalidFileURL, u.Host)
	}
	if u.Path == "" {
		return Specifier{}, "", fmt.Errorf("%w: %s", ErrInvalidFileURL, raw)
	}
	query := ""
	if u.RawQuery != "" {
		query = "?" + u.RawQuery
	}
	return Specifier{Kind: KindAbsolute, Path: u.Path}, query, nil
}

// SplitPackage splits a bare specifier into its package name and subpath.
// Scoped names keep their first two segments: "@scope/pkg/a/b" becomes
// ("@scope/pkg", "a/b").
func SplitPackage(s string) (string, string, error) {
	idx := strings.IndexByte(s, '/')
	if strings.HasPrefix(s, "@") {
		if idx <= 1 {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidPackageSpecifier, s)
		}
		next := strings.IndexByte(s[idx+1:], '/')
		if next == 0 || idx+1 == len(s) {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidPackageSpecifier, s)
		}
		if next < 0 {
			return s, "", nil
		}
		return s[:idx+1+next], s[idx+next+2:], nil
	}
	if idx < 0 {
		return s, "", nil
	}
	return s[:idx], s[idx+1:], nil
}

// parseScheme reports a URL scheme per RFC 3986 (lowercased). Single-letter
// schemes are treated as Windows drive letters, not schemes.
func parseScheme(s string) (string, string, bool) {
	if s == "" || !isASCIIAlpha(s[0]) {
		return "", "", false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case isASCIIAlpha(c), c >= '0' && c <= '9', c == '+', c == '-', c == '.':
			continue
		case c == ':':
			if i == 1 {
				return "", "", false
			}
			return strings.ToLower(s[:i]), s[i+1:], true
		default:
			return "", "", false
		}
	}
	return "", "", false
}

func isASCIIAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// splitPath separates a path from a trailing "?query" or "#fragment".
func splitPath(s string) (string, string) {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

func parseQuery(tail string) string {
	if !strings.HasPrefix(tail, "?") {
		return ""
	}
	if i := strings.IndexByte(tail, '#'); i >= 0 {
		return tail[:i]
	}
	return tail
}

func decodePath(s string, typ Type) (string, string, error) {
	if typ == CJS {
		return s, "", nil
	}
	p, tail := splitPath(s)
	decoded, err := unescape(p)
	if err != nil {
		return "", "", err
	}
	return decoded, parseQuery(tail), nil
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEncoding, s)
	}
	return decoded, nil
}
