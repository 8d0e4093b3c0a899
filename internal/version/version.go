/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package version provides version information for the modresolve CLI.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version information, set at build time via ldflags
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
	GitDirty  = ""
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit,omitempty"`
	BuildTime string `json:"buildTime,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
	GoVersion string `json:"goVersion"`
}

// Read combines ldflags values with the module and VCS stamps the Go
// toolchain embeds. ldflags win.
func Read() BuildInfo {
	b := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		Dirty:     GitDirty == "dirty",
		GoVersion: runtime.Version(),
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		b.merge(info)
	}
	return b
}

func (b *BuildInfo) merge(info *debug.BuildInfo) {
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.GitCommit == "" {
				b.GitCommit = s.Value
			}
		case "vcs.time":
			if b.BuildTime == "" {
				b.BuildTime = s.Value
			}
		case "vcs.modified":
			if GitDirty == "" {
				b.Dirty = s.Value == "true"
			}
		}
	}
}

// String returns a one-line version, such as "v1.2.0" or "dev-1a2b3c4-dirty".
func (b BuildInfo) String() string {
	v := b.Version
	if v == "dev" && b.GitCommit != "" {
		commit := b.GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		v = fmt.Sprintf("%s-%s", v, commit)
	}
	if b.Dirty {
		v += "-dirty"
	}
	return v
}
