/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package cache

import (
	"errors"
	iofs "io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/modresolve/internal/mapfs"
	"bennypowers.dev/modresolve/invalidation"
	"bennypowers.dev/modresolve/tsconfig"
)

func TestStat(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/app/index.js", "", 0o644)
	mfs.AddDir("/app/empty", 0o755)
	c := New(mfs)

	assert.True(t, c.IsFile("/app/index.js"))
	assert.False(t, c.IsDir("/app/index.js"))
	assert.True(t, c.IsDir("/app"))
	assert.True(t, c.IsDir("/app/empty"))
	assert.False(t, c.IsFile("/app/missing.js"))
	assert.False(t, c.IsDir("/app/missing"))
}

func TestCanonicalize(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/store/foo@1.0.0/index.js", "", 0o644)
	mfs.AddSymlink("/app/node_modules/foo", "../../store/foo@1.0.0")
	mfs.AddSymlink("/loop/a", "/loop/b")
	mfs.AddSymlink("/loop/b", "/loop/a")
	c := New(mfs)

	got, err := c.Canonicalize("/app/node_modules/foo/index.js")
	require.NoError(t, err)
	assert.Equal(t, "/store/foo@1.0.0/index.js", got)

	got, err = c.Canonicalize("/store/foo@1.0.0/index.js")
	require.NoError(t, err)
	assert.Equal(t, "/store/foo@1.0.0/index.js", got)

	_, err = c.Canonicalize("/app/missing.js")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, iofs.ErrNotExist)

	_, err = c.Canonicalize("/loop/a/file.js")
	assert.ErrorIs(t, err, ErrSymlinkLoop)
}

func TestReadPackage(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/app/package.json", `{"name": "app", "main": "./main.js"}`, 0o644)
	mfs.AddFile("/app/broken/package.json", `{"name": `, 0o644)
	c := New(mfs)

	t.Run("parsed once", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				pkg, err := c.ReadPackage("/app/package.json")
				assert.NoError(t, err)
				assert.Equal(t, "app", pkg.Name)
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, mfs.ReadCount("/app/package.json"))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := c.ReadPackage("/nope/package.json")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("failures are memoized", func(t *testing.T) {
		_, err1 := c.ReadPackage("/app/broken/package.json")
		_, err2 := c.ReadPackage("/app/broken/package.json")
		require.Error(t, err1)
		assert.True(t, errors.Is(err1, err2) || err1 == err2)
		assert.Equal(t, 1, mfs.ReadCount("/app/broken/package.json"))
	})
}

func TestReadPackage_SymlinkSharesDescriptor(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/app/packages/linked/package.json", `{"name": "linked"}`, 0o644)
	mfs.AddFile("/app/packages/linked/tsconfig.json", `{"compilerOptions": {"baseUrl": "."}}`, 0o644)
	mfs.AddSymlink("/app/node_modules/linked", "../packages/linked")
	c := New(mfs)

	viaLink, err := c.ReadPackage("/app/node_modules/linked/package.json")
	require.NoError(t, err)
	direct, err := c.ReadPackage("/app/packages/linked/package.json")
	require.NoError(t, err)

	assert.Same(t, direct, viaLink)
	assert.Equal(t, "/app/packages/linked/package.json", viaLink.Path)
	assert.Equal(t, 1, mfs.ReadCount("/app/packages/linked/package.json"))

	tsLink, err := c.ReadTsConfig("/app/node_modules/linked/tsconfig.json")
	require.NoError(t, err)
	tsDirect, err := c.ReadTsConfig("/app/packages/linked/tsconfig.json")
	require.NoError(t, err)
	assert.Same(t, tsDirect, tsLink)
}

func TestMergedTsConfig(t *testing.T) {
	c := New(mapfs.New())

	_, ok := c.MergedTsConfig("/app/tsconfig.json")
	assert.False(t, ok)

	inv := invalidation.New()
	inv.InvalidateOnFileChange("/app/tsconfig.json")
	first := c.StoreMergedTsConfig("/app/tsconfig.json", &Merged{Config: &tsconfig.TsConfig{Path: "/app/tsconfig.json"}, Invalidations: inv})
	second := c.StoreMergedTsConfig("/app/tsconfig.json", &Merged{Config: &tsconfig.TsConfig{Path: "other"}})

	assert.Same(t, first, second)
	got, ok := c.MergedTsConfig("/app/tsconfig.json")
	require.True(t, ok)
	assert.Equal(t, []string{"/app/tsconfig.json"}, got.Invalidations.FileChanges())
}
