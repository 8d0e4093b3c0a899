/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package config loads project settings for module resolution.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"bennypowers.dev/modresolve/packagejson"
	"bennypowers.dev/modresolve/resolver"
	"bennypowers.dev/modresolve/specifier"
)

// ErrUnknownPreset indicates a preset name that is not defined.
var ErrUnknownPreset = errors.New("unknown preset")

var presets = map[string]func(root string) resolver.Options{
	"node-cjs":   resolver.NodeCJSOptions,
	"node-esm":   resolver.NodeESMOptions,
	"bundler":    resolver.BundlerOptions,
	"typescript": resolver.TypeScriptOptions,
}

// DefaultPreset is used when the config names none.
const DefaultPreset = "bundler"

// Config represents the resolver configuration.
type Config struct {
	// Root is the project root, relative to the config's directory.
	Root string `yaml:"root" json:"root"`

	// Preset selects the base options: node-cjs, node-esm, bundler or typescript.
	Preset string `yaml:"preset" json:"preset"`

	// Flags adjusts the preset's flags. Names prefixed with "!" are removed.
	Flags []string `yaml:"flags" json:"flags"`

	// Extensions replaces the preset's optional extensions.
	Extensions []string `yaml:"extensions" json:"extensions"`

	// IndexFile replaces the directory index stem.
	IndexFile string `yaml:"indexFile" json:"indexFile"`

	// Fields replaces the package.json entry fields.
	Fields []string `yaml:"fields" json:"fields"`

	// Conditions are added to the preset's export conditions.
	Conditions []string `yaml:"conditions" json:"conditions"`

	IncludeNodeModules IncludeNodeModules `yaml:"includeNodeModules" json:"includeNodeModules"`

	StrictURLExtensions bool `yaml:"strictUrlExtensions" json:"strictUrlExtensions"`

	// Entries lists files, or globs, whose imports the CLI resolves.
	Entries []string `yaml:"entries" json:"entries"`
}

// IncludeNodeModules is written as a bool, a list of package names, or a
// map from package name to bool.
type IncludeNodeModules struct {
	resolver.IncludeNodeModules
}

// UnmarshalYAML handles the bool, list and map forms.
func (inc *IncludeNodeModules) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var b bool
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("includeNodeModules: %w", err)
		}
		inc.setBool(b)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("includeNodeModules: %w", err)
		}
		inc.Kind, inc.Modules = resolver.IncludeList, list
		return nil
	case yaml.MappingNode:
		var m map[string]bool
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("includeNodeModules: %w", err)
		}
		inc.Kind, inc.Map = resolver.IncludeMap, m
		return nil
	}
	return fmt.Errorf("includeNodeModules: unexpected %s", node.Tag)
}

// UnmarshalJSON handles the bool, list and map forms.
func (inc *IncludeNodeModules) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		inc.setBool(b)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		inc.Kind, inc.Modules = resolver.IncludeList, list
		return nil
	}
	var m map[string]bool
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("includeNodeModules: %w", err)
	}
	inc.Kind, inc.Map = resolver.IncludeMap, m
	return nil
}

func (inc *IncludeNodeModules) setBool(b bool) {
	if b {
		inc.Kind = resolver.IncludeAll
	} else {
		inc.Kind = resolver.IncludeNone
	}
}

// Default returns a config with default values.
func Default() *Config {
	return &Config{Preset: DefaultPreset}
}

// Options builds resolver options for a project rooted at root. A relative
// Root in the config is taken relative to root.
func (c *Config) Options(root string) (resolver.Options, error) {
	if c.Root != "" {
		if filepath.IsAbs(c.Root) {
			root = c.Root
		} else {
			root = filepath.Join(root, c.Root)
		}
	}

	name := c.Preset
	if name == "" {
		name = DefaultPreset
	}
	preset, ok := presets[name]
	if !ok {
		return resolver.Options{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	opts := preset(root)

	if len(c.Flags) > 0 {
		// Start from the preset so "!name" can clear its bits.
		flags, err := specifier.ParseFlags(append([]string{name}, c.Flags...))
		if err != nil {
			return resolver.Options{}, err
		}
		opts.Flags = flags
	}
	if c.Extensions != nil {
		opts.Extensions = c.Extensions
	}
	if c.IndexFile != "" {
		opts.IndexFile = c.IndexFile
	}
	if c.Fields != nil {
		fields, err := packagejson.ParseFields(c.Fields)
		if err != nil {
			return resolver.Options{}, err
		}
		opts.Entries = fields
	}
	if len(c.Conditions) > 0 {
		known, custom := packagejson.ParseConditions(c.Conditions)
		opts.Conditions |= known
		opts.CustomConditions = append(opts.CustomConditions, custom...)
	}
	opts.IncludeNodeModules = c.IncludeNodeModules.IncludeNodeModules
	opts.StrictURLExtensions = c.StrictURLExtensions
	return opts, nil
}

// Presets lists the preset names, for help text.
func Presets() []string {
	return []string{"node-cjs", "node-esm", "bundler", "typescript"}
}
