/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import "bennypowers.dev/modresolve/invalidation"

// ResolutionKind is the type of a successful resolution.
type ResolutionKind int

const (
	// ResolutionPath is a canonical file path.
	ResolutionPath ResolutionKind = iota + 1
	// ResolutionBuiltin is a runtime module such as "fs".
	ResolutionBuiltin
	// ResolutionExternal is left for the runtime to load.
	ResolutionExternal
	// ResolutionEmpty is a module disabled by an alias.
	ResolutionEmpty
	// ResolutionGlobal is a module provided by a global variable.
	ResolutionGlobal
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionPath:
		return "path"
	case ResolutionBuiltin:
		return "builtin"
	case ResolutionExternal:
		return "external"
	case ResolutionEmpty:
		return "empty"
	case ResolutionGlobal:
		return "global"
	}
	return "unresolved"
}

// Resolution is where a specifier led.
type Resolution struct {
	Kind ResolutionKind
	// Path is set for ResolutionPath.
	Path string
	// Name is set for ResolutionBuiltin and ResolutionGlobal.
	Name string
}

func (r Resolution) String() string {
	switch r.Kind {
	case ResolutionPath:
		return r.Path
	case ResolutionBuiltin:
		return "builtin:" + r.Name
	case ResolutionGlobal:
		return "global:" + r.Name
	}
	return r.Kind.String()
}

// Result is the outcome of Resolve. Invalidations is always set, even
// when Err is not nil.
type Result struct {
	Resolution    Resolution
	Query         string
	Err           error
	Invalidations *invalidation.Invalidations
}
