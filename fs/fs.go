/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package fs provides the filesystem capability consumed by the resolver.
package fs

import (
	"io/fs"
	"os"
)

// FileSystem is the read-only view of a filesystem that module resolution needs.
// Implementations must be safe for concurrent use.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(name string) ([]byte, error)

	// Stat returns file information, following symlinks.
	Stat(name string) (fs.FileInfo, error)

	// Lstat returns file information without following a final symlink.
	Lstat(name string) (fs.FileInfo, error)

	// Readlink returns the target of a symlink.
	Readlink(name string) (string, error)
}

// OSFileSystem implements FileSystem using the standard os package.
type OSFileSystem struct{}

// NewOSFileSystem creates a new filesystem that uses the standard os package.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// ReadFile reads the entire contents of a file.
func (f *OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Stat returns file information for the named file.
func (f *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// Lstat returns file information for the named file without following symlinks.
func (f *OSFileSystem) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

// Readlink returns the destination of the named symbolic link.
func (f *OSFileSystem) Readlink(name string) (string, error) {
	return os.Readlink(name)
}
