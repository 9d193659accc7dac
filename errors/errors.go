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

// Package errors provides the error taxonomy of mucor.
//
// It re-exports github.com/cockroachdb/errors so that every package
// wraps and inspects errors the same way, and defines the sentinel
// conditions the table engine signals to its callers:
//
//	ErrMissingColumn        a required column is absent (fatal)
//	ErrMissingConfiguration a required parameter was not supplied (fatal)
//	ErrDegradedField        an optional column is absent (warning)
//
// Use errors.Is to classify an error, for example
//
//	if errors.Is(err, errors.ErrMissingColumn) {
//	    ...
//	}
package errors

import (
	"sort"
	"strings"

	crdb "github.com/cockroachdb/errors"
	"go.uber.org/multierr"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	FlattenHints = crdb.FlattenHints
	GetAllHints  = crdb.GetAllHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel conditions.
var (
	// ErrMissingColumn indicates a named, required column is absent
	// from the working table.
	ErrMissingColumn = New("missing column")

	// ErrMissingConfiguration indicates a required runtime parameter
	// was not supplied or is invalid.
	ErrMissingConfiguration = New("missing configuration")

	// ErrDegradedField indicates an optional column is absent; the
	// run continues without it.
	ErrDegradedField = New("degraded field")

	// ErrUnknownAggregator indicates an aggregation function name
	// outside the supported set.
	ErrUnknownAggregator = New("unknown aggregator")

	// ErrNonNumeric indicates a numeric aggregation received a value
	// that is not a number.
	ErrNonNumeric = New("non-numeric value")
)

// MissingColumns reports all given columns as absent from the named
// table in a single diagnostic. The columns are listed in sorted
// order so that the message is reproducible.
func MissingColumns(table string, columns ...string) error {
	cols := append([]string(nil), columns...)
	sort.Strings(cols)
	err := Wrapf(ErrMissingColumn, "%s", strings.Join(cols, ", "))
	if table != "" {
		err = Wrapf(err, "table %s", table)
	}
	return WithHint(err, "check the column names in the input records and in the configuration")
}

// MissingConfiguration reports a missing or invalid runtime parameter.
func MissingConfiguration(parameter, reason string) error {
	if reason == "" {
		return Wrapf(ErrMissingConfiguration, "%s", parameter)
	}
	return Wrapf(ErrMissingConfiguration, "%s: %s", parameter, reason)
}

// DegradedField reports an optional column that could not be used.
func DegradedField(column, reason string) error {
	return Wrapf(ErrDegradedField, "%s: %s", column, reason)
}

// IsFatal returns true for the conditions that abort a run.
func IsFatal(err error) bool {
	return err != nil && !Is(err, ErrDegradedField)
}

// Warnings accumulates non-fatal conditions. The zero value is ready
// to use.
type Warnings struct {
	err error
}

// Add records a warning. Nil errors are ignored.
func (w *Warnings) Add(err error) {
	w.err = multierr.Append(w.err, err)
}

// Merge records all warnings of another accumulator.
func (w *Warnings) Merge(other Warnings) {
	w.err = multierr.Append(w.err, other.err)
}

// List returns the recorded warnings in the order they were added.
func (w Warnings) List() []error {
	return multierr.Errors(w.err)
}

// Len returns the number of recorded warnings.
func (w Warnings) Len() int {
	return len(multierr.Errors(w.err))
}

// Err returns the combined warnings, or nil if there are none.
func (w Warnings) Err() error {
	return w.err
}

// Strings renders the recorded warnings as messages.
func (w Warnings) Strings() []string {
	errs := multierr.Errors(w.err)
	result := make([]string, 0, len(errs))
	for _, err := range errs {
		result = append(result, err.Error())
	}
	return result
}
