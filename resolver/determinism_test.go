/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"bennypowers.dev/modresolve/cache"
	"bennypowers.dev/modresolve/resolver"
	"bennypowers.dev/modresolve/specifier"
)

var specifiers = []string{
	"./bar?x=1",
	"./lib",
	"./missing",
	"./foo.js",
	"pkg",
	"pkg/features/a.js",
	"pkg/features/internal/x.js",
	"foo/x",
	"react",
	"#bar",
	"@app/button",
	"linked",
	"nope",
	"zlib",
}

type snapshot struct {
	Resolution resolver.Resolution
	Query      string
	Err        string
	Changes    []string
	Creates    []string
	Above      []string
}

func snap(res resolver.Result) snapshot {
	s := snapshot{
		Resolution: res.Resolution,
		Query:      res.Query,
		Changes:    res.Invalidations.FileChanges(),
		Creates:    res.Invalidations.FileCreates(),
	}
	if res.Err != nil {
		s.Err = res.Err.Error()
	}
	for _, ca := range res.Invalidations.FileCreatesAbove() {
		s.Above = append(s.Above, ca.FileName+"@"+ca.Above)
	}
	return s
}

func TestResolve_WarmCacheMatchesCold(t *testing.T) {
	mfs := projectFS()
	warm := bundler(mfs)

	// Prime the shared cache.
	for _, spec := range specifiers {
		warm.Resolve(spec, from, specifier.ESM)
	}

	for _, spec := range specifiers {
		t.Run(spec, func(t *testing.T) {
			cold := resolver.New(resolver.BundlerOptions("/project"), cache.New(mfs))
			want := snap(cold.Resolve(spec, from, specifier.ESM))
			got := snap(warm.Resolve(spec, from, specifier.ESM))

			assert.Equal(t, want.Resolution, got.Resolution)
			assert.Equal(t, want.Query, got.Query)
			assert.Equal(t, want.Err, got.Err)
			assert.ElementsMatch(t, want.Changes, got.Changes)
			assert.ElementsMatch(t, want.Creates, got.Creates)
			assert.ElementsMatch(t, want.Above, got.Above)
		})
	}
}

func TestResolve_Concurrent(t *testing.T) {
	mfs := projectFS()
	r := bundler(mfs)

	want := make(map[string]snapshot, len(specifiers))
	for _, spec := range specifiers {
		cold := bundler(projectFS())
		want[spec] = snap(cold.Resolve(spec, from, specifier.ESM))
	}

	results := make([]snapshot, 8*len(specifiers))
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			results[i] = snap(r.Resolve(specifiers[i%len(specifiers)], from, specifier.ESM))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, got := range results {
		spec := specifiers[i%len(specifiers)]
		assert.Equal(t, want[spec].Resolution, got.Resolution, spec)
		assert.Equal(t, want[spec].Err, got.Err, spec)
		assert.ElementsMatch(t, want[spec].Changes, got.Changes, spec)
	}

	// Each package.json is read once no matter how many resolutions race.
	assert.Equal(t, 1, mfs.ReadCount("/project/package.json"))
}
