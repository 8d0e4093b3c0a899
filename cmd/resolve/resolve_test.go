/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"bennypowers.dev/modresolve/cache"
	"bennypowers.dev/modresolve/resolver"
	"bennypowers.dev/modresolve/specifier"
	"bennypowers.dev/modresolve/testutil"
)

func newResolver() *resolver.Resolver {
	mfs := testutil.NewMapFS(map[string]string{
		"/app/package.json":                  `{"name": "app"}`,
		"/app/src/index.js":                  "",
		"/app/src/util.js":                   "",
		"/app/node_modules/lit/package.json": `{"name": "lit", "main": "index.js"}`,
		"/app/node_modules/lit/index.js":     "",
	})
	return resolver.New(resolver.BundlerOptions("/app"), cache.New(mfs))
}

func TestResolveAll(t *testing.T) {
	specs := []string{"./util", "lit", "fs", "./missing", "./util?inline"}
	results, err := resolveAll(context.Background(), newResolver(), "/app/src/index.js", specs, specifier.ESM, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(specs) {
		t.Fatalf("expected %d results, got %d", len(specs), len(results))
	}

	for i, spec := range specs {
		if results[i].Specifier != spec {
			t.Errorf("result %d: expected specifier %q, got %q", i, spec, results[i].Specifier)
		}
		if results[i].Invalidations != nil {
			t.Errorf("result %d: invalidations not requested", i)
		}
	}
	if results[0].Path != "/app/src/util.js" {
		t.Errorf("expected util.js, got %+v", results[0])
	}
	if results[1].Path != "/app/node_modules/lit/index.js" {
		t.Errorf("expected lit entry, got %+v", results[1])
	}
	if results[2].Kind != "builtin" || results[2].Name != "fs" {
		t.Errorf("expected builtin fs, got %+v", results[2])
	}
	if results[3].Error == "" {
		t.Errorf("expected error for missing file, got %+v", results[3])
	}
	if results[4].Query != "?inline" {
		t.Errorf("expected query, got %+v", results[4])
	}
}

func TestRender(t *testing.T) {
	results, err := resolveAll(context.Background(), newResolver(), "/app/src/index.js",
		[]string{"./util", "fs", "./missing"}, specifier.ESM, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := render(&buf, results, "text"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"./util\t/app/src/util.js\n",
			"fs\tbuiltin:fs\n",
			"./missing\terror: ",
			"  change /app/package.json\n",
			"  create /app/src/missing.js\n",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := render(&buf, results, "json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded []Result
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 3 || decoded[0].Kind != "path" || decoded[0].Invalidations == nil {
			t.Errorf("unexpected JSON output: %s", buf.String())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := render(&bytes.Buffer{}, results, "yaml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
