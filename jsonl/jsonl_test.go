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

package jsonl

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/exascience/mucor/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const records = `{"sample":"A","CHROM":"1","POS":100,"REF":"A","ALT":"T","AF":0.3,"ANN_effect":["missense","intron"]}
{"sample":"B","CHROM":"1","POS":100,"REF":"A","ALT":"T","AF":0.5,"QSS":[[1,2],3]}

{"sample":"C","POS":7,"flag":true,"info":{"b":1,"a":"x"},"AF":null}
`

func TestRead(t *testing.T) {
	tbl, err := Read(strings.NewReader(records), "calls", "sample", "CHROM", "POS")
	require.NoError(t, err)
	require.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"sample", "CHROM", "POS", "AF", "ALT", "ANN_effect", "REF", "QSS", "flag", "info"}, tbl.Columns())

	assert.Equal(t, table.IntCell(100), tbl.Get(0, "POS"))
	assert.Equal(t, table.FloatCell(0.3), tbl.Get(0, "AF"))
	assert.Equal(t, table.ListCell(table.StringCell("missense"), table.StringCell("intron")), tbl.Get(0, "ANN_effect"))
	assert.True(t, tbl.Get(0, "QSS").IsNull())

	assert.Equal(t, table.ListCell(table.StringCell("1&2"), table.IntCell(3)), tbl.Get(1, "QSS"))

	assert.True(t, tbl.Get(2, "CHROM").IsNull())
	assert.True(t, tbl.Get(2, "AF").IsNull())
	assert.Equal(t, table.StringCell("true"), tbl.Get(2, "flag"))
	assert.Equal(t, table.StringCell(`{"a":"x","b":1}`), tbl.Get(2, "info"))
}

func TestReadInvalidRecord(t *testing.T) {
	_, err := Read(strings.NewReader("{\"sample\":\"A\"}\n[1,2]\n"), "calls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON object")

	_, err = Read(strings.NewReader("{\"sample\":\n"), "calls")
	assert.Error(t, err)
}

func TestReadEmpty(t *testing.T) {
	tbl, err := Read(strings.NewReader(""), "calls", "sample")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.NumRows())
	assert.Equal(t, []string{"sample"}, tbl.Columns())
}

func TestReadKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 20000; i++ {
		fmt.Fprintf(&buf, "{\"n\":%d}\n", i)
	}
	tbl, err := Read(&buf, "numbers")
	require.NoError(t, err)
	require.Equal(t, 20000, tbl.NumRows())
	for i := 0; i < tbl.NumRows(); i++ {
		require.Equal(t, int64(i), tbl.Get(i, "n").Int())
	}
}

func TestRoundTrip(t *testing.T) {
	in := table.New("calls", "sample", "POS", "AF", "ANN_effect", "note", "empty")
	in.AppendRow(table.Row{
		table.StringCell("A"), table.IntCell(100), table.FloatCell(1),
		table.ListCell(table.StringCell("x"), table.StringCell("y \"quoted\"")),
		table.StringCell("tab\there"), table.NullCell(),
	})
	in.AppendRow(table.Row{
		table.StringCell("B"), table.IntCell(-3), table.FloatCell(0.125),
		table.ListCell(table.IntCell(1), table.FloatCell(2.5)),
		table.StringCell("ünïcode"), table.ListCell(),
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))
	out, err := Read(&buf, "calls", in.Columns()...)
	require.NoError(t, err)
	assert.Equal(t, in.Columns(), out.Columns())
	assert.True(t, table.Equal(in, out))
	assert.Equal(t, table.Float, out.Get(0, "AF").Kind())
}
