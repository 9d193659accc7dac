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

// Package jsonl reads and writes tables as JSON-lines record streams:
// one JSON object per line, one field per column.
package jsonl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/exascience/pargo/pipeline"
	"github.com/ohler55/ojg/oj"

	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/internal"
	"github.com/exascience/mucor/table"
)

// MaxLineSize is the longest record line Read accepts.
const MaxLineSize = 64 * 1024 * 1024

// NestedListSeparator joins the elements of a list nested inside a
// list field, since table cells do not nest lists.
const NestedListSeparator = "&"

// CellOf converts a decoded JSON value into a cell. Objects are kept
// as their compact JSON text, and booleans as "true" or "false".
func CellOf(value interface{}) table.Cell {
	switch v := value.(type) {
	case nil:
		return table.NullCell()
	case string:
		return table.StringCell(v)
	case int64:
		return table.IntCell(v)
	case float64:
		return table.FloatCell(v)
	case bool:
		return table.StringCell(strconv.FormatBool(v))
	case []interface{}:
		elements := make([]table.Cell, len(v))
		for i, e := range v {
			if nested, ok := e.([]interface{}); ok {
				elements[i] = table.StringCell(CellOf(nested).Join(NestedListSeparator))
			} else {
				elements[i] = CellOf(e)
			}
		}
		return table.ListCell(elements...)
	case map[string]interface{}:
		return table.StringCell(oj.JSON(v, &oj.Options{Sort: true}))
	default:
		return table.StringCell(fmt.Sprint(v))
	}
}

// ParseRecord parses one JSON-lines record.
func ParseRecord(line string) (map[string]table.Cell, error) {
	value, err := oj.ParseString(line)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid record %.80q", line)
	}
	object, ok := value.(map[string]interface{})
	if !ok {
		return nil, errors.Newf("record is not a JSON object: %.80q", line)
	}
	record := make(map[string]table.Cell, len(object))
	for key, v := range object {
		record[key] = CellOf(v)
	}
	return record, nil
}

// Read parses a JSON-lines stream into a table. Records may have
// different fields: fields missing from a record are null. The leading
// columns come first in the given order, and the other fields follow in
// order of first appearance. JSON objects do not order their fields, so
// fields that first appear in the same record are added in sorted
// order. Blank lines are skipped.
//
// Lines are parsed in parallel, and records keep their input order.
func Read(r io.Reader, name string, leading ...string) (*table.Table, error) {
	result := table.New(name, leading...)
	scanner := pipeline.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var p pipeline.Pipeline
	p.Source(scanner)
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		records := make([]map[string]table.Cell, 0, len(lines))
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			record, err := ParseRecord(line)
			if err != nil {
				p.SetErr(err)
				return records
			}
			records = append(records, record)
		}
		return records
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		for _, record := range data.([]map[string]table.Cell) {
			result.AppendRecord(nil, record)
		}
		return data
	})))
	if err := internal.RunPipeline(&p); err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return result, nil
}

// ReadFile reads a JSON-lines file. The name "-" reads standard input.
func ReadFile(filename string, leading ...string) (*table.Table, error) {
	if filename == "-" || filename == "/dev/stdin" {
		return Read(os.Stdin, "stdin", leading...)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, filename, leading...)
}

// AppendCell appends the JSON encoding of a cell. NaN and infinite
// floats have no JSON encoding and are written as null.
func AppendCell(buf []byte, c table.Cell) []byte {
	switch c.Kind() {
	case table.String:
		return append(buf, oj.JSON(c.Str())...)
	case table.Int:
		return strconv.AppendInt(buf, c.Int(), 10)
	case table.Float:
		s := table.FormatFloat(c.Float())
		switch s {
		case "NaN", "inf", "-inf":
			return append(buf, "null"...)
		}
		return append(buf, s...)
	case table.List:
		buf = append(buf, '[')
		for i, e := range c.List() {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = AppendCell(buf, e)
		}
		return append(buf, ']')
	default:
		return append(buf, "null"...)
	}
}

// AppendRow appends the JSON object for a row, with fields in column
// order.
func AppendRow(buf []byte, columns []string, row table.Row) []byte {
	buf = append(buf, '{')
	for j, col := range columns {
		if j > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, oj.JSON(col)...)
		buf = append(buf, ':')
		buf = AppendCell(buf, row[j])
	}
	return append(buf, '}', '\n')
}

// Write encodes every row of t as one JSON-lines record. Null cells are
// written as JSON null, so every record has every column.
func Write(w io.Writer, t *table.Table) error {
	out := bufio.NewWriter(w)
	buf := internal.ReserveByteBuffer()
	defer func() { internal.ReleaseByteBuffer(buf) }()
	for _, row := range t.Rows() {
		buf = AppendRow(buf[:0], t.Columns(), row)
		if _, err := out.Write(buf); err != nil {
			return err
		}
	}
	return out.Flush()
}
