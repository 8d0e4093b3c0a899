/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package mapfs

import (
	"errors"
	"io/fs"
	"testing"
)

func TestSymlinks(t *testing.T) {
	mfs := New()
	mfs.AddFile("/repo/packages/a/index.js", "export {}", 0644)
	mfs.AddSymlink("/repo/node_modules/a", "../packages/a")
	mfs.AddSymlink("/repo/loop1", "loop2")
	mfs.AddSymlink("/repo/loop2", "loop1")

	data, err := mfs.ReadFile("/repo/node_modules/a/index.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "export {}" {
		t.Errorf("unexpected content %q", data)
	}

	info, err := mfs.Stat("/repo/node_modules/a")
	if err != nil || !info.IsDir() {
		t.Errorf("expected Stat to follow the link to a directory, got %v, %v", info, err)
	}

	info, err = mfs.Lstat("/repo/node_modules/a")
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		t.Errorf("expected Lstat to report a symlink, got %v, %v", info, err)
	}

	target, err := mfs.Readlink("/repo/node_modules/a")
	if err != nil || target != "../packages/a" {
		t.Errorf("expected link target, got %q, %v", target, err)
	}

	if _, err := mfs.Readlink("/repo/packages/a/index.js"); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("expected ErrInvalid for a regular file, got %v", err)
	}

	if _, err := mfs.Stat("/repo/loop1"); !errors.Is(err, ErrLinkLoop) {
		t.Errorf("expected loop error, got %v", err)
	}
}

func TestReadCountAndRemove(t *testing.T) {
	mfs := New()
	mfs.AddFile("/a.json", "{}", 0644)

	for range 3 {
		if _, err := mfs.ReadFile("/a.json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := mfs.ReadCount("/a.json"); n != 3 {
		t.Errorf("expected 3 reads, got %d", n)
	}

	if err := mfs.Remove("/a.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := mfs.Stat("/a.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist after Remove, got %v", err)
	}
	if err := mfs.Remove("/a.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist removing twice, got %v", err)
	}
}
