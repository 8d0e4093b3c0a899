/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package jsonc reads the relaxed JSON dialect used by package.json and
// tsconfig.json files: comments and trailing commas are tolerated, syntax
// errors carry a line and column, and object key order can be preserved.
package jsonc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/jsonc"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SyntaxError reports malformed JSON with its location.
type SyntaxError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Clean strips a byte order mark, comments and trailing commas.
func Clean(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	return jsonc.ToJSON(data)
}

// Unmarshal cleans data and decodes it into v. Syntax and type errors are
// reported as *SyntaxError located in the file at path.
func Unmarshal(path string, data []byte, v any) error {
	clean := Clean(data)
	if err := json.Unmarshal(clean, v); err != nil {
		return locate(path, clean, err)
	}
	return nil
}

// Parse cleans data and decodes it into an ordered Value, reporting syntax
// errors as *SyntaxError.
func Parse(path string, data []byte) (Value, error) {
	clean := Clean(data)
	var probe json.RawMessage
	if err := json.Unmarshal(clean, &probe); err != nil {
		return Value{}, locate(path, clean, err)
	}
	v, err := Decode(clean)
	if err != nil {
		return Value{}, &SyntaxError{Path: path, Line: 1, Column: 1, Err: err}
	}
	return v, nil
}

func locate(path string, data []byte, err error) error {
	var offset int64 = -1
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}
	line, col := 1, 1
	if offset >= 0 {
		line, col = position(data, offset)
	}
	return &SyntaxError{Path: path, Line: line, Column: col, Err: err}
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
