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

package internal

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOnce(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "out", "master.tsv")
	require.NoError(t, WriteOnce(filename, func(w io.Writer) error {
		_, err := io.WriteString(w, "CHROM\tPOS\n")
		return err
	}))
	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "CHROM\tPOS\n", string(content))

	entries, err := os.ReadDir(filepath.Dir(filename))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteOnceFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "AF.tsv")
	failure := errors.New("disk on fire")
	err := WriteOnce(filename, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return failure
	})
	assert.ErrorIs(t, err, failure)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTempNameIsHidden(t *testing.T) {
	name := TempName(filepath.Join("results", "AF.tsv"))
	assert.Equal(t, "results", filepath.Dir(name))
	assert.Regexp(t, `^\.AF\.tsv\.[0-9a-f-]{36}\.tmp$`, filepath.Base(name))
	assert.NotEqual(t, name, TempName(filepath.Join("results", "AF.tsv")))
}

func TestByteBufferReuse(t *testing.T) {
	buf := ReserveByteBuffer()
	assert.Empty(t, buf)
	buf = append(buf, "record"...)
	ReleaseByteBuffer(buf)
	assert.Empty(t, ReserveByteBuffer())

	ReleaseByteBuffer(make([]byte, 0, MaxPooledBufferSize+1))
	assert.LessOrEqual(t, cap(ReserveByteBuffer()), MaxPooledBufferSize)
}
