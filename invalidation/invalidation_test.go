/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package invalidation

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"testing"
)

func TestInvalidations_Dedup(t *testing.T) {
	inv := New()
	inv.InvalidateOnFileChange("/a/package.json")
	inv.InvalidateOnFileChange("/b/package.json")
	inv.InvalidateOnFileChange("/a/package.json")
	inv.InvalidateOnFileCreate("/a/x.js")
	inv.InvalidateOnFileCreateAbove("package.json", "/a")
	inv.InvalidateOnFileCreateAbove("package.json", "/a")

	if got, want := inv.FileChanges(), []string{"/a/package.json", "/b/package.json"}; !slices.Equal(got, want) {
		t.Errorf("FileChanges() = %v, want %v", got, want)
	}
	if got := inv.FileCreates(); len(got) != 1 {
		t.Errorf("FileCreates() = %v, want one entry", got)
	}
	if got := inv.FileCreatesAbove(); len(got) != 1 || got[0] != (CreateAbove{"package.json", "/a"}) {
		t.Errorf("FileCreatesAbove() = %v", got)
	}
}

func TestInvalidations_Merge(t *testing.T) {
	a := New()
	a.InvalidateOnFileChange("/x")
	b := New()
	b.InvalidateOnFileChange("/y")
	b.InvalidateOnFileChange("/x")
	b.InvalidateOnFileCreate("/z")

	a.Merge(b)
	a.Merge(a)
	a.Merge(nil)

	if got, want := a.FileChanges(), []string{"/x", "/y"}; !slices.Equal(got, want) {
		t.Errorf("FileChanges() = %v, want %v", got, want)
	}
	if got, want := a.FileCreates(), []string{"/z"}; !slices.Equal(got, want) {
		t.Errorf("FileCreates() = %v, want %v", got, want)
	}
}

func TestRead(t *testing.T) {
	t.Run("missing file records create", func(t *testing.T) {
		inv := New()
		_, err := Read(inv, "/missing.json", func() (int, error) {
			return 0, fmt.Errorf("open: %w", fs.ErrNotExist)
		})
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("unexpected error %v", err)
		}
		if !slices.Equal(inv.FileCreates(), []string{"/missing.json"}) || len(inv.FileChanges()) != 0 {
			t.Errorf("got creates %v changes %v", inv.FileCreates(), inv.FileChanges())
		}
	})

	t.Run("parse error still records change", func(t *testing.T) {
		inv := New()
		_, _ = Read(inv, "/bad.json", func() (int, error) {
			return 0, errors.New("syntax error")
		})
		if !slices.Equal(inv.FileChanges(), []string{"/bad.json"}) {
			t.Errorf("FileChanges() = %v", inv.FileChanges())
		}
	})

	t.Run("zero value is usable", func(t *testing.T) {
		var inv Invalidations
		v, err := Read(&inv, "/ok.json", func() (string, error) { return "ok", nil })
		if err != nil || v != "ok" || inv.Empty() {
			t.Errorf("Read() = %q, %v; empty = %v", v, err, inv.Empty())
		}
	})
}
