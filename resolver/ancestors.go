/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"iter"
	"path/filepath"
	"strings"
)

const nodeModules = "node_modules"

// ancestors yields dir and then each of its parents, up to the
// filesystem root.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		dir = filepath.Clean(dir)
		for {
			if !yield(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}

// inNodeModules reports whether path has a node_modules segment.
func inNodeModules(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == nodeModules {
			return true
		}
	}
	return false
}

// findAncestorFile looks for name in the directory of from and its
// parents, stopping at a node_modules directory or the project root.
// The search is recorded as a file-create-above invalidation.
func (q *request) findAncestorFile(name, from string) (string, bool) {
	start := filepath.Dir(from)
	q.inv.InvalidateOnFileCreateAbove(name, start)
	for dir := range ancestors(start) {
		if filepath.Base(dir) == nodeModules {
			return "", false
		}
		p := filepath.Join(dir, name)
		if q.r.cache.IsFile(p) {
			return p, true
		}
		if dir == q.r.root {
			return "", false
		}
	}
	return "", false
}

// tildeRoot is the directory "~/" refers to from a file: the root of the
// enclosing node_modules package, or else the project root.
func (q *request) tildeRoot(from string) string {
	for dir := range ancestors(filepath.Dir(from)) {
		if dir == q.r.root {
			return dir
		}
		parent := filepath.Dir(dir)
		if filepath.Base(parent) == nodeModules {
			return dir
		}
		if strings.HasPrefix(filepath.Base(parent), "@") && filepath.Base(filepath.Dir(parent)) == nodeModules {
			return dir
		}
	}
	return q.r.root
}
