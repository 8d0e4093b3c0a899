/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package packagejson

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// matchGlob matches s against an alias pattern and returns the text
// captured by each wildcard, left to right. "*" and "?" stay within a
// path segment; "**" crosses segments.
func matchGlob(pattern, s string) ([]string, bool) {
	if pattern == "" {
		return nil, s == ""
	}

	switch {
	case strings.HasPrefix(pattern, "**"):
		rest := pattern[2:]
		for i := 0; i <= len(s); i++ {
			if caps, ok := matchGlob(rest, s[i:]); ok {
				return append([]string{s[:i]}, caps...), true
			}
		}
		return nil, false

	case pattern[0] == '*':
		rest := pattern[1:]
		for i := 0; i <= len(s); i++ {
			if i > 0 && s[i-1] == '/' {
				break
			}
			if caps, ok := matchGlob(rest, s[i:]); ok {
				return append([]string{s[:i]}, caps...), true
			}
		}
		return nil, false

	case pattern[0] == '?':
		if s == "" || s[0] == '/' {
			return nil, false
		}
		_, size := utf8.DecodeRuneInString(s)
		caps, ok := matchGlob(pattern[1:], s[size:])
		if !ok {
			return nil, false
		}
		return append([]string{s[:size]}, caps...), true
	}

	if s == "" || pattern[0] != s[0] {
		return nil, false
	}
	return matchGlob(pattern[1:], s[1:])
}

// replaceCaptures substitutes $1, $2, ... in target with captures.
// References past the last capture are left as written.
func replaceCaptures(target string, captures []string) string {
	if !strings.Contains(target, "$") {
		return target
	}
	var b strings.Builder
	for i := 0; i < len(target); i++ {
		c := target[i]
		if c == '$' {
			j := i + 1
			for j < len(target) && target[j] >= '0' && target[j] <= '9' {
				j++
			}
			if j > i+1 {
				n, err := strconv.Atoi(target[i+1 : j])
				if err == nil && n >= 1 && n <= len(captures) {
					b.WriteString(captures[n-1])
					i = j - 1
					continue
				}
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
