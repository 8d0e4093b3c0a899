/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cmd provides CLI commands for modresolve.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/modresolve/cmd/inspect"
	"bennypowers.dev/modresolve/cmd/resolve"
	"bennypowers.dev/modresolve/cmd/version"
	"bennypowers.dev/modresolve/config"
	"bennypowers.dev/modresolve/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "modresolve",
	Short: "Resolve JavaScript module specifiers",
	Long: `modresolve resolves import, require and url() specifiers to files the way
Node.js, TypeScript and bundlers do, and reports which files each answer
depends on.

Settings are read from .config/modresolve.{yaml,yml,json} in the project
root, then from MODRESOLVE_* environment variables, then from flags.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("root", "r", ".", "Project root")
	flags.StringP("preset", "p", "", "Resolver preset ("+strings.Join(config.Presets(), ", ")+")")
	flags.StringSlice("flags", nil, "Resolver flags to add, or remove with a ! prefix")
	flags.StringSliceP("conditions", "c", nil, "Extra export conditions")
	flags.BoolP("verbose", "v", false, "Log redirects and configuration")

	for _, name := range []string{"root", "preset", "flags", "conditions", "verbose"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	viper.SetEnvPrefix("modresolve")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(resolve.Cmd)
	rootCmd.AddCommand(inspect.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
