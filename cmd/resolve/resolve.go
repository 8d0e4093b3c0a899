/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package resolve provides the resolve command for modresolve.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"bennypowers.dev/modresolve/fs"
	"bennypowers.dev/modresolve/internal/logger"
	"bennypowers.dev/modresolve/internal/project"
	"bennypowers.dev/modresolve/invalidation"
	"bennypowers.dev/modresolve/resolver"
	"bennypowers.dev/modresolve/specifier"
)

// Cmd is the resolve cobra command.
var Cmd = &cobra.Command{
	Use:   "resolve <from> <specifier...>",
	Short: "Resolve specifiers as written in a file",
	Long: `Resolve one or more specifiers as if they were written in the file <from>.

Examples:
  # Resolve an import from a source file
  modresolve resolve src/index.ts lit ./components/card.js

  # Resolve require() calls with Node.js semantics
  modresolve resolve --preset node-cjs --type cjs lib/main.js ./util

  # Show which files would change the answer
  modresolve resolve --invalidations --format json src/index.ts '#internal/dep'`,
	Args: cobra.MinimumNArgs(2),
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("type", "t", "esm", "Specifier type: esm, cjs, url")
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	Cmd.Flags().Bool("invalidations", false, "Include the files each result depends on")
}

// Result is one specifier's outcome, shaped for output.
type Result struct {
	Specifier     string         `json:"specifier"`
	Kind          string         `json:"kind,omitempty"`
	Path          string         `json:"path,omitempty"`
	Name          string         `json:"name,omitempty"`
	Query         string         `json:"query,omitempty"`
	Error         string         `json:"error,omitempty"`
	Invalidations *Invalidations `json:"invalidations,omitempty"`
}

// Invalidations lists the files a result depends on.
type Invalidations struct {
	FileChanges      []string      `json:"fileChanges"`
	FileCreates      []string      `json:"fileCreates"`
	FileCreatesAbove []CreateAbove `json:"fileCreatesAbove"`
}

// CreateAbove is a file name looked up in a directory and its ancestors.
type CreateAbove struct {
	FileName string `json:"fileName"`
	Above    string `json:"above"`
}

func run(cmd *cobra.Command, args []string) error {
	typeFlag, _ := cmd.Flags().GetString("type")
	format, _ := cmd.Flags().GetString("format")
	withInvalidations, _ := cmd.Flags().GetBool("invalidations")

	typ, err := specifier.ParseType(typeFlag)
	if err != nil {
		return err
	}
	from, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	p, err := project.Open(fs.NewOSFileSystem(), viper.GetString("root"), project.Overrides{
		Preset:     viper.GetString("preset"),
		Flags:      viper.GetStringSlice("flags"),
		Conditions: viper.GetStringSlice("conditions"),
	})
	if err != nil {
		return err
	}

	results, err := resolveAll(cmd.Context(), p.Resolver(), from, args[1:], typ, withInvalidations)
	if err != nil {
		return err
	}
	if err := render(cmd.OutOrStdout(), results, format); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	logger.Info("resolved", "from", from, "count", len(results), "failed", failed)
	if failed > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("%d of %d specifiers failed to resolve", failed, len(results))
	}
	return nil
}

// resolveAll resolves every specifier concurrently against one resolver,
// keeping the input order.
func resolveAll(ctx context.Context, r *resolver.Resolver, from string, specs []string, typ specifier.Type, withInvalidations bool) ([]Result, error) {
	results := make([]Result, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = toResult(spec, r.Resolve(spec, from, typ), withInvalidations)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func toResult(spec string, res resolver.Result, withInvalidations bool) Result {
	out := Result{Specifier: spec, Query: res.Query}
	if res.Err != nil {
		out.Error = res.Err.Error()
	} else {
		out.Kind = res.Resolution.Kind.String()
		out.Path = res.Resolution.Path
		out.Name = res.Resolution.Name
	}
	if withInvalidations {
		out.Invalidations = toInvalidations(res.Invalidations)
	}
	return out
}

func toInvalidations(inv *invalidation.Invalidations) *Invalidations {
	out := &Invalidations{
		FileChanges:      inv.FileChanges(),
		FileCreates:      inv.FileCreates(),
		FileCreatesAbove: []CreateAbove{},
	}
	for _, ca := range inv.FileCreatesAbove() {
		out.FileCreatesAbove = append(out.FileCreatesAbove, CreateAbove{FileName: ca.FileName, Above: ca.Above})
	}
	return out
}

func render(w io.Writer, results []Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "text", "":
		for _, r := range results {
			if err := renderText(w, r); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func renderText(w io.Writer, r Result) error {
	var err error
	switch {
	case r.Error != "":
		_, err = fmt.Fprintf(w, "%s\terror: %s\n", r.Specifier, r.Error)
	case r.Path != "":
		_, err = fmt.Fprintf(w, "%s\t%s%s\n", r.Specifier, r.Path, r.Query)
	case r.Name != "":
		_, err = fmt.Fprintf(w, "%s\t%s:%s\n", r.Specifier, r.Kind, r.Name)
	default:
		_, err = fmt.Fprintf(w, "%s\t%s\n", r.Specifier, r.Kind)
	}
	if err != nil || r.Invalidations == nil {
		return err
	}
	for _, p := range r.Invalidations.FileChanges {
		if _, err := fmt.Fprintf(w, "  change %s\n", p); err != nil {
			return err
		}
	}
	for _, p := range r.Invalidations.FileCreates {
		if _, err := fmt.Fprintf(w, "  create %s\n", p); err != nil {
			return err
		}
	}
	for _, ca := range r.Invalidations.FileCreatesAbove {
		if _, err := fmt.Fprintf(w, "  create %s above %s\n", ca.FileName, ca.Above); err != nil {
			return err
		}
	}
	return nil
}
