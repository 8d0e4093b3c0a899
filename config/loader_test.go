/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package config

import (
	"errors"
	"slices"
	"testing"
	"testing/fstest"

	"bennypowers.dev/modresolve/packagejson"
	"bennypowers.dev/modresolve/resolver"
	"bennypowers.dev/modresolve/specifier"
	"bennypowers.dev/modresolve/testutil"
)

func TestLoad_YAML(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "fixtures/config/yaml", "/project")

	cfg, err := Load(mfs, "/project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}

	if cfg.Preset != "bundler" {
		t.Errorf("expected preset 'bundler', got %q", cfg.Preset)
	}
	if !slices.Equal(cfg.Flags, []string{"!npm-scheme"}) {
		t.Errorf("unexpected flags %v", cfg.Flags)
	}
	if cfg.IncludeNodeModules.Kind != resolver.IncludeList {
		t.Fatalf("expected list form, got %v", cfg.IncludeNodeModules.Kind)
	}
	if !slices.Equal(cfg.IncludeNodeModules.Modules, []string{"lit", "@lit/reactive-element"}) {
		t.Errorf("unexpected modules %v", cfg.IncludeNodeModules.Modules)
	}

	opts, err := cfg.Options("/project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Flags.Has(specifier.NPMScheme) {
		t.Error("expected npm-scheme to be cleared")
	}
	if !opts.Flags.Has(specifier.Aliases | specifier.TsConfig) {
		t.Errorf("expected bundler flags, got %s", opts.Flags)
	}
	if opts.Entries != packagejson.FieldModule|packagejson.FieldMain {
		t.Errorf("unexpected fields %s", opts.Entries)
	}
	if !opts.Conditions.Has(packagejson.ConditionDevelopment | packagejson.ConditionBrowser) {
		t.Error("expected development added to the preset's conditions")
	}
	if !slices.Equal(opts.CustomConditions, []string{"lit-ssr"}) {
		t.Errorf("unexpected custom conditions %v", opts.CustomConditions)
	}
	if opts.IncludeNodeModules.Includes("react") || !opts.IncludeNodeModules.Includes("lit") {
		t.Error("includeNodeModules list not applied")
	}
}

func TestLoad_JSON(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "fixtures/config/json", "/project")

	cfg, err := Load(mfs, "/project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
	if cfg.IncludeNodeModules.Kind != resolver.IncludeNone {
		t.Errorf("expected includeNodeModules false, got %v", cfg.IncludeNodeModules.Kind)
	}

	opts, err := cfg.Options("/project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.ProjectRoot != "/project/packages/app" {
		t.Errorf("expected root '/project/packages/app', got %q", opts.ProjectRoot)
	}
	if opts.Flags != specifier.NodeESM {
		t.Errorf("expected node-esm flags, got %s", opts.Flags)
	}
	if !opts.StrictURLExtensions {
		t.Error("expected strictUrlExtensions")
	}
}

func TestLoad_MapForm(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "fixtures/config/map", "/project")

	cfg, err := Load(mfs, "/project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts, err := cfg.Options("/project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.IncludeNodeModules.Includes("react") {
		t.Error("expected react excluded")
	}
	if !opts.IncludeNodeModules.Includes("lit") || !opts.IncludeNodeModules.Includes("unlisted") {
		t.Error("expected lit and unlisted packages included")
	}
	if opts.IndexFile != "main" {
		t.Errorf("expected index 'main', got %q", opts.IndexFile)
	}
	if !slices.Equal(opts.Extensions, []string{"js", "cjs"}) {
		t.Errorf("unexpected extensions %v", opts.Extensions)
	}
}

func TestLoad_NotFound(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "fixtures/config/none", "/project")

	cfg, err := Load(mfs, "/project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config when not found, got %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	mfs := testutil.NewMapFS(map[string]string{
		"/project/.config/modresolve.yaml": "includeNodeModules: maybe\n",
	})
	if _, err := Load(mfs, "/project"); err == nil {
		t.Error("expected error for non-bool scalar")
	}
}

func TestOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown preset", Config{Preset: "webpack"}},
		{"unknown flag", Config{Flags: []string{"hoisting"}}},
		{"unknown field", Config{Fields: []string{"exports"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.Options("/project"); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := (&Config{Preset: "webpack"}).Options("/")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestPresets(t *testing.T) {
	names := Presets()
	if len(names) != len(presets) {
		t.Errorf("Presets() lists %d names, %d are defined", len(names), len(presets))
	}
	for _, name := range names {
		if _, err := (&Config{Preset: name}).Options("/project"); err != nil {
			t.Errorf("preset %q: %v", name, err)
		}
	}
}

func TestExpandEntries(t *testing.T) {
	fsys := fstest.MapFS{
		"src/index.ts":            {},
		"src/components/card.ts":  {},
		"src/components/card.css": {},
		"test/index.test.ts":      {},
	}
	cfg := &Config{Entries: []string{"./src/**/*.ts", "scripts/build.js", "src/index.ts"}}

	got, err := cfg.ExpandEntries(fsys, "/project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"/project/scripts/build.js",
		"/project/src/components/card.ts",
		"/project/src/index.ts",
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
