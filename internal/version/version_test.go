/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package version

import (
	"runtime/debug"
	"testing"
)

func TestBuildInfoString(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{"release", BuildInfo{Version: "v1.2.0", GitCommit: "1a2b3c4d5e"}, "v1.2.0"},
		{"dev with commit", BuildInfo{Version: "dev", GitCommit: "1a2b3c4d5e"}, "dev-1a2b3c4"},
		{"dirty", BuildInfo{Version: "dev", GitCommit: "1a2b", Dirty: true}, "dev-1a2b-dirty"},
		{"bare dev", BuildInfo{Version: "dev"}, "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	b := BuildInfo{Version: "dev"}
	b.merge(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})
	if b.Version != "v0.3.1" {
		t.Errorf("expected module version, got %q", b.Version)
	}
	if b.GitCommit != "abcdef0123" || b.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("vcs settings not applied: %+v", b)
	}

	pinned := BuildInfo{Version: "v9.9.9", GitCommit: "fromldflags"}
	pinned.merge(&debug.BuildInfo{
		Main:     debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abcdef0123"}},
	})
	if pinned.Version != "v9.9.9" || pinned.GitCommit != "fromldflags" {
		t.Errorf("ldflags values should win: %+v", pinned)
	}
}
