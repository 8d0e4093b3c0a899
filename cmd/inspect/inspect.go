/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package inspect provides the inspect command for modresolve.
package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/modresolve/fs"
	"bennypowers.dev/modresolve/internal/project"
	"bennypowers.dev/modresolve/invalidation"
	"bennypowers.dev/modresolve/resolver"
)

// Cmd is the inspect cobra command.
var Cmd = &cobra.Command{
	Use:   "inspect [paths...]",
	Short: "Show the module type and side effects of files",
	Long: `Show how package.json files classify each file: its module format and
whether it may have side effects.

With no paths, inspects the entries listed in .config/modresolve.yaml.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

// Info describes one file.
type Info struct {
	Path        string `json:"path"`
	ModuleType  string `json:"moduleType"`
	SideEffects bool   `json:"sideEffects"`
	Error       string `json:"error,omitempty"`
}

func run(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	p, err := project.Open(fs.NewOSFileSystem(), viper.GetString("root"), project.Overrides{
		Preset: viper.GetString("preset"),
		Flags:  viper.GetStringSlice("flags"),
	})
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		paths = append(paths, abs)
	}
	if len(paths) == 0 {
		paths, err = p.Config.ExpandEntries(os.DirFS(p.Root), p.Root)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no paths given and no entries configured")
		}
	}

	return render(cmd.OutOrStdout(), inspectAll(p.Resolver(), paths), format)
}

func inspectAll(r *resolver.Resolver, paths []string) []Info {
	infos := make([]Info, 0, len(paths))
	for _, path := range paths {
		inv := invalidation.New()
		info := Info{Path: path}
		mt, err := r.ResolveModuleType(path, inv)
		if err == nil {
			info.ModuleType = mt.String()
			info.SideEffects, err = r.ResolveSideEffects(path, inv)
		}
		if err != nil {
			info.Error = err.Error()
		}
		infos = append(infos, info)
	}
	return infos
}

func render(w io.Writer, infos []Info, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "text", "":
		for _, info := range infos {
			var err error
			if info.Error != "" {
				_, err = fmt.Fprintf(w, "%s\terror: %s\n", info.Path, info.Error)
			} else {
				_, err = fmt.Fprintf(w, "%s\t%s\tsideEffects=%t\n", info.Path, info.ModuleType, info.SideEffects)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}
