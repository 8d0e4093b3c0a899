/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package testutil provides testing utilities for modresolve.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	modfs "bennypowers.dev/modresolve/fs"
	"bennypowers.dev/modresolve/internal/mapfs"
)

// NewFixtureFS loads a fixture tree from testdata and returns a MapFileSystem
// with files mapped under rootPath. Files named "*.symlink" become symlinks
// to the path they contain.
func NewFixtureFS(t *testing.T, fixtureDir string, rootPath string) *mapfs.MapFileSystem {
	t.Helper()

	fixturePath := findTestdata(t, fixtureDir)
	mfs := mapfs.New()
	err := filepath.WalkDir(fixturePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fixturePath, path)
		if err != nil {
			return err
		}

		virtualPath := filepath.Join(rootPath, relPath)
		if link, ok := strings.CutSuffix(virtualPath, ".symlink"); ok {
			mfs.AddSymlink(link, strings.TrimSpace(string(content)))
			return nil
		}
		mfs.AddFile(virtualPath, string(content), 0644)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to load fixtures from %s: %v", fixtureDir, err)
	}

	return mfs
}

// NewMapFS builds a MapFileSystem from a path to contents table.
func NewMapFS(files map[string]string) *mapfs.MapFileSystem {
	mfs := mapfs.New()
	for p, content := range files {
		mfs.AddFile(p, content, 0644)
	}
	return mfs
}

func findTestdata(t *testing.T, name string) string {
	t.Helper()

	// Go test runs in the package directory, so look upward too.
	possiblePaths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Fatalf("Could not find fixtures at %s (tried all paths)", name)
	return ""
}

// RecordingFS wraps a FileSystem and records every path it is asked about.
type RecordingFS struct {
	modfs.FileSystem

	mu    sync.Mutex
	paths map[string]int
}

// NewRecordingFS wraps inner.
func NewRecordingFS(inner modfs.FileSystem) *RecordingFS {
	return &RecordingFS{FileSystem: inner, paths: make(map[string]int)}
}

func (r *RecordingFS) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[name]++
}

func (r *RecordingFS) ReadFile(name string) ([]byte, error) {
	r.record(name)
	return r.FileSystem.ReadFile(name)
}

func (r *RecordingFS) Stat(name string) (fs.FileInfo, error) {
	r.record(name)
	return r.FileSystem.Stat(name)
}

func (r *RecordingFS) Lstat(name string) (fs.FileInfo, error) {
	r.record(name)
	return r.FileSystem.Lstat(name)
}

func (r *RecordingFS) Readlink(name string) (string, error) {
	r.record(name)
	return r.FileSystem.Readlink(name)
}

// Calls returns the total number of filesystem calls made.
func (r *RecordingFS) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.paths {
		n += c
	}
	return n
}

// Paths returns the distinct paths touched, sorted.
func (r *RecordingFS) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.paths))
	for p := range r.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
