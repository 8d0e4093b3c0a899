/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cache memoizes the filesystem facts module resolution needs:
// file stats, symlink canonicalization, and parsed package.json and
// tsconfig.json descriptors. Every entry is filled at most once and is
// immutable after it is published, so a Cache may be shared by any number
// of concurrent resolutions.
package cache

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"sync"

	"bennypowers.dev/modresolve/fs"
	"bennypowers.dev/modresolve/invalidation"
	"bennypowers.dev/modresolve/packagejson"
	"bennypowers.dev/modresolve/tsconfig"
)

// maxSymlinkDepth bounds nested symlink expansion during Canonicalize.
const maxSymlinkDepth = 40

var (
	// ErrNotFound indicates a file or directory that does not exist.
	ErrNotFound = fmt.Errorf("not found: %w", iofs.ErrNotExist)

	// ErrSymlinkLoop indicates symlinks that do not resolve to a real path.
	ErrSymlinkLoop = errors.New("too many levels of symbolic links")
)

type entryKind int

const (
	kindMissing entryKind = iota
	kindFile
	kindDir
	kindOther
)

type stat struct {
	kind entryKind
	err  error
}

type canonical struct {
	path string
	err  error
}

// cell is a fill-once slot. Fill functions never re-enter the cache for
// the same table, so a cell is never waited on by its own filler.
type cell[T any] struct {
	once  sync.Once
	value T
	err   error
}

func load[T any](m *sync.Map, key string, fill func() (T, error)) (T, error) {
	v, _ := m.LoadOrStore(key, &cell[T]{})
	c := v.(*cell[T])
	c.once.Do(func() {
		c.value, c.err = fill()
	})
	return c.value, c.err
}

// Merged is a tsconfig.json with its extends chain applied, along with
// the invalidations gathered while building it.
type Merged struct {
	Config        *tsconfig.TsConfig
	Err           error
	Invalidations *invalidation.Invalidations
}

// Cache memoizes filesystem reads for a resolver.
type Cache struct {
	fs fs.FileSystem

	stats     sync.Map // path -> *cell[stat]
	canonical sync.Map // path -> canonical
	packages  sync.Map // canonical path -> *cell[*packagejson.PackageJSON]
	tsconfigs sync.Map // canonical path -> *cell[*tsconfig.TsConfig]
	merged    sync.Map // path -> *Merged
}

// New creates an empty cache reading through filesystem.
func New(filesystem fs.FileSystem) *Cache {
	return &Cache{fs: filesystem}
}

func (c *Cache) stat(path string) stat {
	s, _ := load(&c.stats, filepath.Clean(path), func() (stat, error) {
		info, err := c.fs.Stat(path)
		switch {
		case err != nil && errors.Is(err, iofs.ErrNotExist):
			return stat{kind: kindMissing}, nil
		case err != nil:
			return stat{kind: kindOther, err: err}, nil
		case info.IsDir():
			return stat{kind: kindDir}, nil
		case info.Mode().IsRegular():
			return stat{kind: kindFile}, nil
		default:
			return stat{kind: kindOther}, nil
		}
	})
	return s
}

// IsFile reports whether path exists and is a regular file (following symlinks).
func (c *Cache) IsFile(path string) bool {
	return c.stat(path).kind == kindFile
}

// IsDir reports whether path exists and is a directory (following symlinks).
func (c *Cache) IsDir(path string) bool {
	return c.stat(path).kind == kindDir
}

// Canonicalize resolves every symlink in the absolute path p, component by
// component. Results for each prefix are memoized, so sibling files in a
// symlinked directory share the work.
func (c *Cache) Canonicalize(p string) (string, error) {
	return c.canonicalize(filepath.Clean(p), 0)
}

func (c *Cache) canonicalize(p string, depth int) (string, error) {
	if v, ok := c.canonical.Load(p); ok {
		r := v.(canonical)
		return r.path, r.err
	}
	if depth > maxSymlinkDepth {
		return "", fmt.Errorf("%w: %s", ErrSymlinkLoop, p)
	}

	resolved, err := c.expand(p, depth)
	r := canonical{path: resolved, err: err}
	// Loop errors depend on the entry point, so only publish settled answers.
	if err == nil || !errors.Is(err, ErrSymlinkLoop) {
		v, _ := c.canonical.LoadOrStore(p, r)
		r = v.(canonical)
	}
	return r.path, r.err
}

func (c *Cache) expand(p string, depth int) (string, error) {
	dir := filepath.Dir(p)
	if dir == p {
		return p, nil
	}
	parent, err := c.canonicalize(dir, depth)
	if err != nil {
		return "", err
	}
	candidate := filepath.Join(parent, filepath.Base(p))

	info, err := c.fs.Lstat(candidate)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return "", err
	}
	if info.Mode()&iofs.ModeSymlink == 0 {
		return candidate, nil
	}

	target, err := c.fs.Readlink(candidate)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(parent, target)
	}
	return c.canonicalize(filepath.Clean(target), depth+1)
}

// descriptorKey names a descriptor file by its canonical directory, so
// every symlinked route to a package shares one descriptor. Paths whose
// directory cannot be canonicalized keep their cleaned form.
func (c *Cache) descriptorKey(path string) string {
	path = filepath.Clean(path)
	dir, err := c.canonicalize(filepath.Dir(path), 0)
	if err != nil {
		return path
	}
	return filepath.Join(dir, filepath.Base(path))
}

// ReadPackage reads and parses the package.json at path. The descriptor is
// shared by every path that canonicalizes to the same file, and its Path is
// the canonical one. Errors wrap ErrNotFound when the file is absent.
func (c *Cache) ReadPackage(path string) (*packagejson.PackageJSON, error) {
	path = c.descriptorKey(path)
	return load(&c.packages, path, func() (*packagejson.PackageJSON, error) {
		data, err := c.read(path)
		if err != nil {
			return nil, err
		}
		return packagejson.Parse(path, data)
	})
}

// ReadTsConfig reads and parses the tsconfig.json at path, without
// applying its extends chain. Like ReadPackage, it is keyed by canonical path.
func (c *Cache) ReadTsConfig(path string) (*tsconfig.TsConfig, error) {
	path = c.descriptorKey(path)
	return load(&c.tsconfigs, path, func() (*tsconfig.TsConfig, error) {
		data, err := c.read(path)
		if err != nil {
			return nil, err
		}
		return tsconfig.Parse(path, data)
	})
}

func (c *Cache) read(path string) ([]byte, error) {
	data, err := c.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return data, nil
}

// MergedTsConfig returns a previously stored merged tsconfig.
func (c *Cache) MergedTsConfig(path string) (*Merged, bool) {
	v, ok := c.merged.Load(filepath.Clean(path))
	if !ok {
		return nil, false
	}
	return v.(*Merged), true
}

// StoreMergedTsConfig publishes m unless another caller got there first,
// and returns whichever entry is now stored. Merging the same tsconfig twice
// yields identical results, so a lost race is harmless.
func (c *Cache) StoreMergedTsConfig(path string, m *Merged) *Merged {
	v, _ := c.merged.LoadOrStore(filepath.Clean(path), m)
	return v.(*Merged)
}
