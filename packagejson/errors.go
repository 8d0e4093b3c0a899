/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package packagejson

import "errors"

// Sentinel errors for exports and imports resolution.
var (
	// ErrInvalidPackageTarget indicates an exports or imports target that
	// escapes the package or mixes subpath and condition keys.
	ErrInvalidPackageTarget = errors.New("invalid package target")

	// ErrPackagePathNotExported indicates a subpath missing from exports,
	// or one explicitly mapped to null.
	ErrPackagePathNotExported = errors.New("package path not exported")

	// ErrInvalidSpecifier indicates a malformed "#" import name.
	ErrInvalidSpecifier = errors.New("invalid specifier")

	// ErrImportNotDefined indicates a "#" import with no matching key.
	ErrImportNotDefined = errors.New("import not defined")

	// ErrInvalidPackageJSON indicates a package.json that is not a JSON object.
	ErrInvalidPackageJSON = errors.New("invalid package.json")
)
