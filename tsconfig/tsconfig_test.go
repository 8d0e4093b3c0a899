/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tsconfig

import (
	"slices"
	"testing"

	"bennypowers.dev/modresolve/specifier"
)

func mustParse(t *testing.T, path, data string) *TsConfig {
	t.Helper()
	ts, err := Parse(path, []byte(data))
	if err != nil {
		t.Fatalf("Parse(%s) error = %v", path, err)
	}
	return ts
}

func TestParse(t *testing.T) {
	ts := mustParse(t, "/app/tsconfig.json", `{
		"extends": ["./base.json", "@tsconfig/node20"],
		"compilerOptions": {
			"baseUrl": "./src",
			"paths": {"@app/*": ["./app/*"], "@lib": ["./lib/index.ts"],},
			"moduleSuffixes": [".ios", ""],
		},
	}`)

	if ts.BaseURL != "/app/src" {
		t.Errorf("BaseURL = %q", ts.BaseURL)
	}
	if len(ts.Paths) != 2 || ts.Paths[0].Key != "@app/*" {
		t.Errorf("Paths = %+v", ts.Paths)
	}
	if !slices.Equal(ts.ModuleSuffixes, []string{".ios", ""}) {
		t.Errorf("ModuleSuffixes = %q", ts.ModuleSuffixes)
	}
	if !slices.Equal(ts.Extends, []string{"./base.json", "@tsconfig/node20"}) {
		t.Errorf("Extends = %q", ts.Extends)
	}
}

func TestExtend(t *testing.T) {
	base := mustParse(t, "/app/config/base.json", `{
		"compilerOptions": {"baseUrl": "..", "paths": {"x": ["./x.ts"]}, "moduleSuffixes": [".web"]}
	}`)
	child := mustParse(t, "/app/tsconfig.json", `{"compilerOptions": {"moduleSuffixes": []}}`)

	merged := child.Extend(base)
	if merged.BaseURL != "/app" {
		t.Errorf("BaseURL = %q, want inherited /app", merged.BaseURL)
	}
	if merged.PathsBase != "/app/config" {
		t.Errorf("PathsBase = %q, want /app/config", merged.PathsBase)
	}
	if merged.ModuleSuffixes == nil || len(merged.ModuleSuffixes) != 0 {
		t.Errorf("ModuleSuffixes = %q, want child's empty list", merged.ModuleSuffixes)
	}
	if child.BaseURL != "" {
		t.Error("Extend must not modify the receiver")
	}
}

func TestPathsFor(t *testing.T) {
	ts := mustParse(t, "/app/tsconfig.json", `{
		"compilerOptions": {
			"paths": {
				"@app/*": ["./src/app/*", "./generated/*"],
				"@app/special": ["./special.ts"],
				"*": ["./types/*"]
			}
		}
	}`)

	tests := []struct {
		spec string
		want []string
	}{
		{"@app/special", []string{"/app/special.ts"}},
		{"@app/util", []string{"/app/src/app/util", "/app/generated/util"}},
		{"react", []string{"/app/types/react"}},
		{"./local", nil},
	}
	for _, tt := range tests {
		spec, _, err := specifier.Parse(tt.spec, specifier.ESM, 0)
		if err != nil {
			t.Fatal(err)
		}
		if got := ts.PathsFor(spec); !slices.Equal(got, tt.want) {
			t.Errorf("PathsFor(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}

	withBase := mustParse(t, "/app/tsconfig.json", `{"compilerOptions": {"baseUrl": "src"}}`)
	spec := specifier.Package("utils", "a")
	if got := withBase.PathsFor(spec); !slices.Equal(got, []string{"/app/src/utils/a"}) {
		t.Errorf("PathsFor(baseUrl) = %q", got)
	}
}
