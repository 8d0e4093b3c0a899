/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/modresolve/config"
	"bennypowers.dev/modresolve/packagejson"
	"bennypowers.dev/modresolve/resolver"
	"bennypowers.dev/modresolve/specifier"
	"bennypowers.dev/modresolve/testutil"
)

func TestOpen(t *testing.T) {
	mfs := testutil.NewMapFS(map[string]string{
		"/repo/.config/modresolve.yaml":       "preset: node-esm\nconditions: [production]\n",
		"/repo/src/index.js":                  "",
		"/repo/node_modules/dep/package.json": `{"exports": {"production": "./prod.js", "default": "./dev.js"}}`,
		"/repo/node_modules/dep/prod.js":      "",
		"/repo/node_modules/dep/dev.js":       "",
	})

	t.Run("config only", func(t *testing.T) {
		p, err := Open(mfs, "/repo", Overrides{})
		require.NoError(t, err)
		assert.Equal(t, "/repo", p.Root)
		assert.Equal(t, specifier.NodeESM, p.Options.Flags)
		assert.True(t, p.Options.Conditions.Has(packagejson.ConditionProduction))

		res := p.Resolver().Resolve("dep", "/repo/src/index.js", specifier.ESM)
		require.NoError(t, res.Err)
		assert.Equal(t, "/repo/node_modules/dep/prod.js", res.Resolution.Path)
	})

	t.Run("overrides", func(t *testing.T) {
		p, err := Open(mfs, "/repo", Overrides{
			Preset:     "bundler",
			Flags:      []string{"!aliases"},
			Conditions: []string{"lit-ssr"},
		})
		require.NoError(t, err)
		assert.False(t, p.Options.Flags.Has(specifier.Aliases))
		assert.True(t, p.Options.Flags.Has(specifier.TsConfig))
		assert.Equal(t, []string{"lit-ssr"}, p.Options.CustomConditions)
	})

	t.Run("no config", func(t *testing.T) {
		p, err := Open(testutil.NewMapFS(map[string]string{"/empty/a.js": ""}), "/empty", Overrides{})
		require.NoError(t, err)
		assert.Equal(t, config.DefaultPreset, p.Config.Preset)
		assert.Equal(t, resolver.BundlerOptions("/empty").Flags, p.Options.Flags)
	})

	t.Run("bad preset", func(t *testing.T) {
		_, err := Open(mfs, "/repo", Overrides{Preset: "rollup"})
		assert.ErrorIs(t, err, config.ErrUnknownPreset)
	})
}
