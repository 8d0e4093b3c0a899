/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package mapfs provides an in-memory filesystem implementation for testing.
package mapfs

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// maxLinkHops bounds symlink expansion, like ELOOP on a real filesystem.
const maxLinkHops = 40

// ErrLinkLoop is returned when symlink expansion does not terminate.
var ErrLinkLoop = errors.New("too many levels of symbolic links")

// MapFileSystem implements fs.FileSystem using an in-memory fstest.MapFS.
// Symlinks are kept in a side table and expanded component by component,
// so Stat and ReadFile follow them while Lstat and Readlink do not.
type MapFileSystem struct {
	mu      sync.RWMutex
	mapFS   fstest.MapFS
	links   map[string]string
	modTime time.Time

	// reads counts ReadFile calls, for tests asserting cache behaviour.
	reads map[string]int
}

// New creates a new in-memory filesystem for testing.
func New() *MapFileSystem {
	return &MapFileSystem{
		mapFS:   make(fstest.MapFS),
		links:   make(map[string]string),
		reads:   make(map[string]int),
		modTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// AddFile adds a file to the in-memory filesystem.
func (mfs *MapFileSystem) AddFile(p string, content string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.mapFS[cleanPath(p)] = &fstest.MapFile{
		Data:    []byte(content),
		Mode:    mode,
		ModTime: mfs.modTime,
	}
}

// AddDir adds an (empty) directory to the in-memory filesystem.
func (mfs *MapFileSystem) AddDir(p string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.mapFS[cleanPath(p)] = &fstest.MapFile{
		Mode:    fs.ModeDir | mode.Perm(),
		ModTime: mfs.modTime,
	}
}

// AddSymlink makes p a symbolic link pointing at target. Relative targets are
// interpreted relative to the directory containing p.
func (mfs *MapFileSystem) AddSymlink(p, target string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	p = cleanPath(p)
	mfs.links[p] = target
	if dir := path.Dir(p); dir != "." {
		if _, ok := mfs.mapFS[dir]; !ok {
			mfs.mapFS[dir] = &fstest.MapFile{Mode: fs.ModeDir | 0o755, ModTime: mfs.modTime}
		}
	}
}

// WriteFile creates or replaces a file.
func (mfs *MapFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = cleanPath(name)
	dir := path.Dir(name)
	if file, exists := mfs.mapFS[dir]; exists && !file.Mode.IsDir() {
		return &fs.PathError{Op: "open", Path: "/" + name, Err: fmt.Errorf("not a directory")}
	}

	mfs.mapFS[name] = &fstest.MapFile{
		Data:    append([]byte(nil), data...),
		Mode:    perm,
		ModTime: mfs.modTime,
	}
	return nil
}

// Remove deletes a file or symlink.
func (mfs *MapFileSystem) Remove(name string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = cleanPath(name)
	if _, ok := mfs.links[name]; ok {
		delete(mfs.links, name)
		return nil
	}
	if _, exists := mfs.mapFS[name]; !exists {
		return &fs.PathError{Op: "remove", Path: "/" + name, Err: fs.ErrNotExist}
	}
	delete(mfs.mapFS, name)
	return nil
}

// ReadFile implements fs.FileSystem.
func (mfs *MapFileSystem) ReadFile(name string) ([]byte, error) {
	mfs.mu.Lock()
	mfs.reads[cleanPath(name)]++
	mfs.mu.Unlock()

	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.expandLocked(cleanPath(name), true)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	data, err := fs.ReadFile(mfs.mapFS, fsName(resolved))
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: unwrapPathError(err)}
	}
	return data, nil
}

// Stat implements fs.FileSystem.
func (mfs *MapFileSystem) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.expandLocked(cleanPath(name), true)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	info, err := fs.Stat(mfs.mapFS, fsName(resolved))
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: unwrapPathError(err)}
	}
	return info, nil
}

// Lstat implements fs.FileSystem.
func (mfs *MapFileSystem) Lstat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.expandLocked(cleanPath(name), false)
	if err != nil {
		return nil, &fs.PathError{Op: "lstat", Path: name, Err: err}
	}
	if _, ok := mfs.links[resolved]; ok {
		return linkInfo{name: path.Base(resolved), modTime: mfs.modTime}, nil
	}
	info, err := fs.Stat(mfs.mapFS, fsName(resolved))
	if err != nil {
		return nil, &fs.PathError{Op: "lstat", Path: name, Err: unwrapPathError(err)}
	}
	return info, nil
}

// Readlink implements fs.FileSystem.
func (mfs *MapFileSystem) Readlink(name string) (string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	resolved, err := mfs.expandLocked(cleanPath(name), false)
	if err != nil {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: err}
	}
	target, ok := mfs.links[resolved]
	if !ok {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return target, nil
}

// ReadCount reports how many times ReadFile was called for p.
func (mfs *MapFileSystem) ReadCount(p string) int {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.reads[cleanPath(p)]
}

// expandLocked rewrites every symlinked component of p. When followLast is
// false the final component is left alone, as lstat(2) does.
func (mfs *MapFileSystem) expandLocked(p string, followLast bool) (string, error) {
	hops := 0
	for {
		parts := strings.Split(p, "/")
		if p == "" {
			return "", nil
		}
		rewritten := false
		for i := range parts {
			if i == len(parts)-1 && !followLast {
				break
			}
			prefix := strings.Join(parts[:i+1], "/")
			target, ok := mfs.links[prefix]
			if !ok {
				continue
			}
			hops++
			if hops > maxLinkHops {
				return "", ErrLinkLoop
			}
			var base string
			if path.IsAbs(target) {
				base = target
			} else {
				base = path.Join("/", path.Dir(prefix), target)
			}
			rest := strings.Join(parts[i+1:], "/")
			p = cleanPath(path.Join(base, rest))
			rewritten = true
			break
		}
		if !rewritten {
			return p, nil
		}
	}
}

func cleanPath(p string) string {
	cleaned := path.Clean("/" + p)
	return strings.TrimPrefix(cleaned, "/")
}

func fsName(p string) string {
	if p == "" {
		return "."
	}
	return p
}

func unwrapPathError(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

type linkInfo struct {
	name    string
	modTime time.Time
}

func (l linkInfo) Name() string       { return l.name }
func (l linkInfo) Size() int64        { return 0 }
func (l linkInfo) Mode() fs.FileMode  { return fs.ModeSymlink | 0o777 }
func (l linkInfo) ModTime() time.Time { return l.modTime }
func (l linkInfo) IsDir() bool        { return false }
func (l linkInfo) Sys() any           { return nil }
