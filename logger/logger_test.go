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

package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/mucor/errors"
)

func restoreLogger(t *testing.T) {
	saved := Logger
	t.Cleanup(func() { Logger = saved })
}

func TestInitializeJSON(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer
	require.NoError(t, Initialize(true, "info", &buf))
	ComponentLogger("driver").Infow("pivot written", FieldFile, "AF.tsv", FieldRows, 3)
	ComponentLogger("driver").Debugw("not shown")
	Cleanup()

	out := buf.String()
	assert.Contains(t, out, `"msg":"pivot written"`)
	assert.Contains(t, out, `"component":"driver"`)
	assert.Contains(t, out, `"file":"AF.tsv"`)
	assert.NotContains(t, out, "not shown")
}

func TestInitializeConsoleLevel(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer
	require.NoError(t, Initialize(false, "warn", &buf))
	Logger.Info("hidden")
	Logger.Warnw("missing extra column", FieldColumn, "INFO_cosmic_ids")
	Cleanup()
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "missing extra column")
	assert.Contains(t, buf.String(), "INFO_cosmic_ids")
}

func TestInitializeInvalidLevel(t *testing.T) {
	restoreLogger(t)
	err := Initialize(false, "loud", nil)
	assert.True(t, errors.Is(err, errors.ErrMissingConfiguration))
}
