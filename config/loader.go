/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"bennypowers.dev/modresolve/fs"
	"bennypowers.dev/modresolve/internal/logger"
)

// ConfigFileName is the base name of the config file without extension.
const ConfigFileName = "modresolve"

// ConfigDir is the directory where config files are stored.
const ConfigDir = ".config"

// configExtensions are the supported config file extensions in priority order.
var configExtensions = []string{".yaml", ".yml", ".json"}

// Load searches for .config/modresolve.{yaml,yml,json} in rootDir.
// Returns nil if no config found (not an error).
func Load(filesystem fs.FileSystem, rootDir string) (*Config, error) {
	for _, ext := range configExtensions {
		configPath := filepath.Join(rootDir, ConfigDir, ConfigFileName+ext)
		info, err := filesystem.Stat(configPath)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}

		data, err := filesystem.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		cfg := &Config{}
		switch ext {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)
		case ".json":
			err = json.Unmarshal(data, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", configPath, err)
		}
		return cfg, nil
	}

	return nil, nil
}

// ExpandEntries expands glob patterns in Entries against fsys, which is
// rooted at rootDir, and returns sorted absolute paths without duplicates.
// Entries that are not globs are returned as given.
func (c *Config) ExpandEntries(fsys iofs.FS, rootDir string) ([]string, error) {
	var result []string
	for _, entry := range c.Entries {
		pattern := filepath.ToSlash(strings.TrimPrefix(entry, "./"))
		if !containsGlob(pattern) {
			result = append(result, absolute(rootDir, entry))
			continue
		}

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry, err)
		}
		if len(matches) == 0 {
			logger.Warn("entry matched no files", "pattern", entry)
		}
		for _, m := range matches {
			result = append(result, absolute(rootDir, m))
		}
	}
	slices.Sort(result)
	return slices.Compact(result), nil
}

func absolute(rootDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(rootDir, filepath.FromSlash(p))
}

// containsGlob returns true if the pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
