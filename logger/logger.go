// mucor: aggregating variant calls into analyst-facing summary tables.
// Copyright (c) 2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/mucor/blob/master/LICENSE.txt>.

// Package logger provides the structured logger shared by all mucor
// commands.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/exascience/mucor/errors"
)

// Logger is the global logger. It discards everything until
// Initialize is called.
var Logger = zap.NewNop().Sugar()

// Initialize sets up the global logger. JSON output is meant for
// machine consumption, the console format for humans. The level is one
// of debug, info, warn or error; the empty level selects info. Log
// entries go to w, or to standard error if w is nil.
func Initialize(jsonOutput bool, level string, w io.Writer) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zapcore.ParseLevel(level); err != nil {
			return errors.MissingConfiguration("log.level", err.Error())
		}
	}
	if w == nil {
		w = os.Stderr
	}

	var encoder zapcore.Encoder
	if jsonOutput {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		config := zap.NewDevelopmentEncoderConfig()
		config.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(config)
	}
	Logger = zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)).Sugar()
	return nil
}

// Cleanup flushes buffered log entries.
func Cleanup() {
	_ = Logger.Sync()
}

// Standard field names.
const (
	FieldRunID     = "run_id"
	FieldComponent = "component"
	FieldFile      = "file"
	FieldTable     = "table"
	FieldColumn    = "column"
	FieldRows      = "rows"
	FieldColumns   = "columns"
	FieldElapsed   = "elapsed"
	FieldError     = "error"
)

// ComponentLogger returns a logger that tags its entries with a
// component name.
//
//	var log = logger.ComponentLogger("driver")
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name).With(FieldComponent, name)
}

// ChildLogger returns a logger with additional fields.
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
