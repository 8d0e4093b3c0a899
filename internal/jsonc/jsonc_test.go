/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package jsonc

import (
	"errors"
	"testing"
)

func TestUnmarshal_TrailingCommasAndComments(t *testing.T) {
	data := []byte(`{
  // the package name
  "name": "pkg",
  "main": "./index.js",
}`)
	var got struct {
		Name string `json:"name"`
		Main string `json:"main"`
	}
	if err := Unmarshal("/p/package.json", data, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "pkg" || got.Main != "./index.js" {
		t.Errorf("got %+v", got)
	}
}

func TestUnmarshal_SyntaxErrorLocation(t *testing.T) {
	data := []byte("{\n  \"name\": \"pkg\"\n  \"main\": 1\n}")
	var got map[string]any
	err := Unmarshal("/p/package.json", data, &got)
	if err == nil {
		t.Fatal("expected error")
	}
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if syntaxErr.Line != 3 {
		t.Errorf("Line = %d, want 3", syntaxErr.Line)
	}
	if syntaxErr.Path != "/p/package.json" {
		t.Errorf("Path = %q", syntaxErr.Path)
	}
}

func TestDecode_PreservesOrder(t *testing.T) {
	v, err := Decode([]byte(`{"z": 1, "a": {"y": "s", "b": [true, null, "x"]}, "m": false}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != Object {
		t.Fatalf("Kind = %v, want object", v.Kind)
	}
	var keys []string
	for _, m := range v.Members {
		keys = append(keys, m.Key)
	}
	want := []string{"z", "a", "m"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}

	inner, ok := v.Get("a")
	if !ok || inner.Members[0].Key != "y" || inner.Members[1].Key != "b" {
		t.Fatalf("nested order lost: %+v", inner)
	}
	arr := inner.Members[1].Value
	if arr.Kind != Array || len(arr.Items) != 3 {
		t.Fatalf("array = %+v", arr)
	}
	if arr.Items[0].Kind != Bool || !arr.Items[0].Bool {
		t.Errorf("item 0 = %+v", arr.Items[0])
	}
	if arr.Items[1].Kind != Null {
		t.Errorf("item 1 = %+v", arr.Items[1])
	}
	if arr.Items[2].Str != "x" {
		t.Errorf("item 2 = %+v", arr.Items[2])
	}
}

func TestDecode_DuplicateKeyKeepsLastValue(t *testing.T) {
	v, err := Decode([]byte(`{"a": "1", "b": "2", "a": "3"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Members) != 2 {
		t.Fatalf("members = %+v", v.Members)
	}
	if v.Members[0].Key != "a" || v.Members[0].Value.Str != "3" {
		t.Errorf("first member = %+v", v.Members[0])
	}
}

func TestParse(t *testing.T) {
	v, err := Parse("/p/tsconfig.json", []byte(`{
  /* block */
  "compilerOptions": {"paths": {"b/*": ["x"], "a": ["y"],},},
}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts, ok := v.Get("compilerOptions")
	if !ok {
		t.Fatal("missing compilerOptions")
	}
	paths, _ := opts.Get("paths")
	if len(paths.Members) != 2 || paths.Members[0].Key != "b/*" {
		t.Errorf("paths = %+v", paths.Members)
	}

	_, err = Parse("/p/bad.json", []byte(`{"a": }`))
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("expected *SyntaxError, got %v", err)
	}
}
