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

package table

import (
	"math/rand"
	"testing"

	"github.com/exascience/mucor/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRecordHeterogeneous(t *testing.T) {
	tbl := New("records")
	tbl.AppendRecord([]string{"sample", "CHROM"}, map[string]Cell{
		"sample": StringCell("A"),
		"CHROM":  StringCell("1"),
	})
	tbl.AppendRecord([]string{"sample", "AF"}, map[string]Cell{
		"sample": StringCell("B"),
		"AF":     FloatCell(0.5),
	})
	assert.Equal(t, []string{"sample", "CHROM", "AF"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())
	for _, row := range tbl.Rows() {
		assert.Len(t, row, 3)
	}
	assert.True(t, tbl.Get(0, "AF").IsNull())
	assert.True(t, tbl.Get(1, "CHROM").IsNull())
	assert.Equal(t, FloatCell(0.5), tbl.Get(1, "AF"))
}

func TestRequire(t *testing.T) {
	tbl := New("input", "sample", "CHROM")
	err := tbl.Require("sample", "POS", "REF")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingColumn))
	assert.Contains(t, err.Error(), "POS, REF")
	assert.NoError(t, tbl.Require("CHROM"))
}

func TestReorderAndInsert(t *testing.T) {
	tbl := New("t", "a", "b", "c", "d")
	tbl.AppendRow(Row{IntCell(1), IntCell(2), IntCell(3), IntCell(4)})

	r := tbl.Reorder("c", "x", "a")
	assert.Equal(t, []string{"c", "a", "b", "d"}, r.Columns())
	assert.Equal(t, Row{IntCell(3), IntCell(1), IntCell(2), IntCell(4)}, r.Row(0))

	ins := tbl.InsertColumn(1, "new", []Cell{StringCell("n")})
	assert.Equal(t, []string{"a", "new", "b", "c", "d"}, ins.Columns())
	assert.Equal(t, StringCell("n"), ins.Get(0, "new"))

	moved := tbl.InsertColumn(0, "d", []Cell{IntCell(9)})
	assert.Equal(t, []string{"d", "a", "b", "c"}, moved.Columns())
	assert.Equal(t, IntCell(9), moved.Get(0, "d"))

	// the original is untouched
	assert.Equal(t, []string{"a", "b", "c", "d"}, tbl.Columns())
	assert.Equal(t, IntCell(4), tbl.Get(0, "d"))
}

func TestFillNull(t *testing.T) {
	tbl := New("t", "a", "b")
	tbl.AppendRow(Row{NullCell(), NullCell()})
	filled := tbl.FillNull(StringCell("."), "a", "missing")
	assert.Equal(t, StringCell("."), filled.Get(0, "a"))
	assert.True(t, filled.Get(0, "b").IsNull())
	assert.True(t, tbl.Get(0, "a").IsNull())
}

func TestRename(t *testing.T) {
	tbl := New("t", "a", "b")
	tbl.AppendRow(Row{IntCell(1), IntCell(2)})
	r := tbl.Rename(map[string]string{"a": "sample"})
	assert.Equal(t, []string{"sample", "b"}, r.Columns())
	assert.Equal(t, IntCell(1), r.Get(0, "sample"))

	collide := tbl.Rename(map[string]string{"b": "a"})
	assert.Equal(t, []string{"a"}, collide.Columns())
	assert.Equal(t, IntCell(1), collide.Get(0, "a"))
}

func makeLargeTable() *Table {
	tbl := New("large", "CHROM", "POS", "seq")
	for i := 0; i < 0x8000; i++ {
		tbl.AppendRow(Row{
			StringCell(string(rune('1' + rand.Intn(5)))),
			IntCell(int64(rand.Intn(200))),
			IntCell(int64(i)),
		})
	}
	return tbl
}

func TestSortByIsStable(t *testing.T) {
	tbl := makeLargeTable()
	sorted, err := tbl.SortBy("CHROM", "POS")
	require.NoError(t, err)
	require.Equal(t, tbl.NumRows(), sorted.NumRows())
	idx, _ := sorted.Indices("CHROM", "POS")
	for i := 1; i < sorted.NumRows(); i++ {
		prev, cur := sorted.Row(i-1), sorted.Row(i)
		c := CompareKeys(prev, cur, idx)
		require.LessOrEqual(t, c, 0, "row %v out of order", i)
		if c == 0 {
			require.Less(t, prev[2].Int(), cur[2].Int(), "row %v not stable", i)
		}
	}

	_, err = tbl.SortBy("QUAL")
	assert.True(t, errors.Is(err, errors.ErrMissingColumn))
}

func TestEqual(t *testing.T) {
	a := New("a", "x")
	a.AppendRow(Row{IntCell(1)})
	b := New("b", "x")
	b.AppendRow(Row{FloatCell(1)})
	assert.True(t, Equal(a, b))
	b.AppendRow(Row{NullCell()})
	assert.False(t, Equal(a, b))
}
