/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package logger provides a configurable, leveled logger that can be
// silenced when modresolve is embedded as a library.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Level is a logging level.
type Level = log.Level

// Levels, re-exported so callers need not import the backend.
const (
	DebugLevel = log.DebugLevel
	InfoLevel  = log.InfoLevel
	WarnLevel  = log.WarnLevel
)

// logger writes warnings and above to stderr until reconfigured.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "modresolve",
	Level:  log.WarnLevel,
})

// SetOutput configures the logger output destination.
// Use io.Discard to silence all logging.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetLevel sets the minimum level that is written.
func SetLevel(level Level) {
	logger.SetLevel(level)
}

// Warn logs a warning with alternating key/value pairs.
func Warn(msg string, keyvals ...any) {
	logger.Warn(msg, keyvals...)
}

// Info logs an informational message.
func Info(msg string, keyvals ...any) {
	logger.Info(msg, keyvals...)
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) {
	logger.Debug(msg, keyvals...)
}
