/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, one per ErrorKind. Match them with errors.Is.
var (
	ErrFileNotFound            = errors.New("file not found")
	ErrModuleNotFound          = errors.New("module not found")
	ErrModuleSubpathNotFound   = errors.New("module subpath not found")
	ErrModuleEntryNotFound     = errors.New("module entry not found")
	ErrPackageJSONNotFound     = errors.New("package.json not found")
	ErrPackageJSONError        = errors.New("package.json error")
	ErrTsConfigExtendsNotFound = errors.New("tsconfig extends not found")
	ErrUnknownScheme           = errors.New("unknown url scheme")
	ErrIO                      = errors.New("i/o error")
	ErrJSON                    = errors.New("json error")
	ErrInvalidSpecifier        = errors.New("invalid specifier")
)

var (
	errExtendsCycle  = errors.New("circular extends")
	errRedirectLimit = errors.New("too many alias redirects")
)

// ErrorKind classifies a resolution failure.
type ErrorKind int

const (
	ErrorFileNotFound ErrorKind = iota + 1
	ErrorModuleNotFound
	ErrorModuleSubpathNotFound
	ErrorModuleEntryNotFound
	ErrorPackageJSONNotFound
	ErrorPackageJSONError
	ErrorTsConfigExtendsNotFound
	ErrorUnknownScheme
	ErrorIO
	ErrorJSON
	ErrorInvalidSpecifier
)

var sentinels = map[ErrorKind]error{
	ErrorFileNotFound:            ErrFileNotFound,
	ErrorModuleNotFound:          ErrModuleNotFound,
	ErrorModuleSubpathNotFound:   ErrModuleSubpathNotFound,
	ErrorModuleEntryNotFound:     ErrModuleEntryNotFound,
	ErrorPackageJSONNotFound:     ErrPackageJSONNotFound,
	ErrorPackageJSONError:        ErrPackageJSONError,
	ErrorTsConfigExtendsNotFound: ErrTsConfigExtendsNotFound,
	ErrorUnknownScheme:           ErrUnknownScheme,
	ErrorIO:                      ErrIO,
	ErrorJSON:                    ErrJSON,
	ErrorInvalidSpecifier:        ErrInvalidSpecifier,
}

func (k ErrorKind) String() string {
	if err, ok := sentinels[k]; ok {
		return err.Error()
	}
	return "unknown error"
}

// Error is a resolution failure. It unwraps to both its kind's sentinel
// and its cause.
type Error struct {
	Kind ErrorKind

	// Specifier is the module name or raw specifier involved, if any.
	Specifier string

	// Path is the file, package directory or package.json involved.
	Path string

	// From is the file the failed lookup started from.
	From string

	// Field names the package.json field for ErrorModuleEntryNotFound.
	Field string

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case ErrorFileNotFound:
		fmt.Fprintf(&b, "cannot find file %s", e.Path)
	case ErrorModuleNotFound:
		fmt.Fprintf(&b, "cannot find module %q", e.Specifier)
	case ErrorModuleSubpathNotFound:
		fmt.Fprintf(&b, "cannot find %s in module %q", e.Path, e.Specifier)
	case ErrorModuleEntryNotFound:
		fmt.Fprintf(&b, "module %q entry %s (%q field) does not exist", e.Specifier, e.Path, e.Field)
	case ErrorPackageJSONNotFound:
		b.WriteString("no package.json found")
	case ErrorPackageJSONError:
		fmt.Fprintf(&b, "invalid package.json %s", e.Path)
	case ErrorTsConfigExtendsNotFound:
		fmt.Fprintf(&b, "cannot resolve extends %q in %s", e.Specifier, e.Path)
	case ErrorUnknownScheme:
		fmt.Fprintf(&b, "unknown url scheme in %q", e.Specifier)
	case ErrorIO:
		fmt.Fprintf(&b, "cannot read %s", e.Path)
	case ErrorJSON:
		fmt.Fprintf(&b, "cannot parse %s", e.Path)
	case ErrorInvalidSpecifier:
		fmt.Fprintf(&b, "invalid specifier %q", e.Specifier)
	default:
		b.WriteString(e.Kind.String())
	}
	if e.From != "" {
		fmt.Fprintf(&b, " from %s", e.From)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the kind's sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := sentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
