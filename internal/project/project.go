/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package project assembles a resolver from a project's config file and
// command-line overrides.
package project

import (
	"fmt"
	"path/filepath"

	"bennypowers.dev/modresolve/cache"
	"bennypowers.dev/modresolve/config"
	"bennypowers.dev/modresolve/fs"
	"bennypowers.dev/modresolve/internal/logger"
	"bennypowers.dev/modresolve/packagejson"
	"bennypowers.dev/modresolve/resolver"
)

// Overrides are command-line settings that take precedence over the
// config file. Zero values leave the config alone.
type Overrides struct {
	Preset     string
	Flags      []string
	Conditions []string
}

// Project is a configured resolver over one filesystem.
type Project struct {
	Root    string
	Config  *config.Config
	Options resolver.Options
	FS      fs.FileSystem

	cache *cache.Cache
}

// Open loads root's config, applies overrides, and prepares a shared cache.
func Open(filesystem fs.FileSystem, root string, o Overrides) (*Project, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(filesystem, root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg == nil {
		logger.Debug("no config file", "root", root)
		cfg = config.Default()
	}
	if o.Preset != "" {
		cfg.Preset = o.Preset
	}
	if len(o.Flags) > 0 {
		cfg.Flags = append(cfg.Flags, o.Flags...)
	}

	opts, err := cfg.Options(root)
	if err != nil {
		return nil, err
	}
	if len(o.Conditions) > 0 {
		known, custom := packagejson.ParseConditions(o.Conditions)
		opts.Conditions |= known
		opts.CustomConditions = append(opts.CustomConditions, custom...)
	}
	logger.Debug("resolver options",
		"root", opts.ProjectRoot,
		"flags", opts.Flags.String(),
		"entries", opts.Entries.String())

	return &Project{
		Root:    root,
		Config:  cfg,
		Options: opts,
		FS:      filesystem,
		cache:   cache.New(filesystem),
	}, nil
}

// Resolver returns a resolver over the project's shared cache.
func (p *Project) Resolver() *resolver.Resolver {
	return resolver.New(p.Options, p.cache)
}
