/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package inspect

import (
	"bytes"
	"strings"
	"testing"

	"bennypowers.dev/modresolve/cache"
	"bennypowers.dev/modresolve/resolver"
	"bennypowers.dev/modresolve/testutil"
)

func TestInspectAll(t *testing.T) {
	mfs := testutil.NewMapFS(map[string]string{
		"/app/package.json":          `{"type": "module", "sideEffects": ["./src/polyfills/*"]}`,
		"/app/src/index.js":          "",
		"/app/src/legacy.cjs":        "",
		"/app/src/polyfills/intl.js": "",
		"/bad/package.json":          `{`,
		"/bad/index.js":              "",
	})
	r := resolver.New(resolver.BundlerOptions("/"), cache.New(mfs))

	infos := inspectAll(r, []string{
		"/app/src/index.js",
		"/app/src/legacy.cjs",
		"/app/src/polyfills/intl.js",
		"/bad/index.js",
	})

	want := []Info{
		{Path: "/app/src/index.js", ModuleType: "module", SideEffects: false},
		{Path: "/app/src/legacy.cjs", ModuleType: "commonjs", SideEffects: false},
		{Path: "/app/src/polyfills/intl.js", ModuleType: "module", SideEffects: true},
	}
	for i, w := range want {
		if infos[i] != w {
			t.Errorf("expected %+v, got %+v", w, infos[i])
		}
	}
	if infos[3].Error == "" {
		t.Errorf("expected error for invalid package.json, got %+v", infos[3])
	}

	var buf bytes.Buffer
	if err := render(&buf, infos, "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "/app/src/index.js\tmodule\tsideEffects=false") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
