/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package packagejson

import "strings"

// Conditions is a set of well-known export conditions.
type Conditions uint32

const (
	ConditionImport Conditions = 1 << iota
	ConditionRequire
	ConditionModule
	ConditionNode
	ConditionBrowser
	ConditionWorker
	ConditionWorklet
	ConditionElectron
	ConditionDevelopment
	ConditionProduction
	ConditionTypes
	ConditionDefault
	ConditionStyle
	ConditionSass
	ConditionLess
	ConditionStylus
)

var conditionNames = map[string]Conditions{
	"import":      ConditionImport,
	"require":     ConditionRequire,
	"module":      ConditionModule,
	"node":        ConditionNode,
	"browser":     ConditionBrowser,
	"worker":      ConditionWorker,
	"worklet":     ConditionWorklet,
	"electron":    ConditionElectron,
	"development": ConditionDevelopment,
	"production":  ConditionProduction,
	"types":       ConditionTypes,
	"default":     ConditionDefault,
	"style":       ConditionStyle,
	"sass":        ConditionSass,
	"less":        ConditionLess,
	"stylus":      ConditionStylus,
}

// Has reports whether every condition in c2 is set.
func (c Conditions) Has(c2 Conditions) bool {
	return c&c2 == c2
}

// ParseConditions splits names into well-known conditions and custom ones.
// Custom conditions keep their order.
func ParseConditions(names []string) (Conditions, []string) {
	var known Conditions
	var custom []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if c, ok := conditionNames[name]; ok {
			known |= c
			continue
		}
		custom = append(custom, name)
	}
	return known, custom
}
