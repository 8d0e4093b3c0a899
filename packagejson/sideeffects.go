/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package packagejson

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// HasSideEffects reports whether the file at path, which must be inside
// the package, may have side effects. A missing "sideEffects" field means
// every file does. Globs without a "/" match at any depth, as in webpack.
func (p *PackageJSON) HasSideEffects(path string) bool {
	switch p.SideEffects.Kind {
	case SideEffectsBool:
		return p.SideEffects.Bool
	case SideEffectsGlobs:
		rel, err := filepath.Rel(p.Dir(), path)
		if err != nil {
			return true
		}
		rel = filepath.ToSlash(rel)
		for _, glob := range p.SideEffects.Globs {
			if matchSideEffects(glob, rel) {
				return true
			}
		}
		return false
	}
	return true
}

func matchSideEffects(glob, rel string) bool {
	glob = strings.TrimPrefix(glob, "./")
	if !strings.Contains(glob, "/") {
		glob = "**/" + glob
	}
	ok, err := doublestar.Match(glob, rel)
	return err == nil && ok
}
