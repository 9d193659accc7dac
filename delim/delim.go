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

// Package delim writes tables as tab or comma separated files that
// spreadsheet tools can open, and reads such files back.
package delim

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/table"
)

// MaxCellLength is the longest cell, in characters, that common
// spreadsheet tools accept.
const MaxCellLength = 32767

// DefaultListSeparator joins the elements of list cells, the same way
// a merge joins distinct values.
const DefaultListSeparator = ";"

// Options control how cells are rendered.
type Options struct {
	// Comma is the field delimiter.
	Comma rune

	// NullValue is written for null cells.
	NullValue string

	// ListSeparator joins the elements of list cells.
	ListSeparator string

	// MaxCellLength truncates longer cells. Zero disables truncation.
	MaxCellLength int
}

// TSV returns the options for tab separated output.
func TSV() Options {
	return Options{Comma: '\t', NullValue: ".", ListSeparator: DefaultListSeparator, MaxCellLength: MaxCellLength}
}

// CSV returns the options for comma separated output.
func CSV() Options {
	opts := TSV()
	opts.Comma = ','
	return opts
}

// ForExtension returns CSV options for ".csv" and TSV options
// otherwise.
func ForExtension(ext string) Options {
	if ext == ".csv" {
		return CSV()
	}
	return TSV()
}

// FormatCell renders a cell as a single field.
func (opts Options) FormatCell(c table.Cell) string {
	var s string
	if c.IsNull() {
		s = opts.NullValue
	} else {
		s = c.Join(opts.ListSeparator)
	}
	if opts.MaxCellLength > 0 && len(s) > opts.MaxCellLength && utf8.RuneCountInString(s) > opts.MaxCellLength {
		n := 0
		for i := range s {
			if n == opts.MaxCellLength {
				return s[:i]
			}
			n++
		}
	}
	return s
}

// Write writes the header and the rows of t.
func Write(w io.Writer, t *table.Table, opts Options) error {
	out := csv.NewWriter(w)
	out.Comma = opts.Comma
	if err := out.Write(t.Columns()); err != nil {
		return err
	}
	record := make([]string, t.NumColumns())
	for _, row := range t.Rows() {
		for j, c := range row {
			record[j] = opts.FormatCell(c)
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// ParseField converts a field into a cell: empty fields are null, and
// fields that parse as numbers become numeric cells.
func ParseField(field string) table.Cell {
	if field == "" {
		return table.NullCell()
	}
	if i, err := strconv.ParseInt(field, 10, 64); err == nil {
		return table.IntCell(i)
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return table.FloatCell(f)
	}
	return table.StringCell(field)
}

// Read parses a delimited file with a header row into a table.
func Read(r io.Reader, name string, comma rune) (*table.Table, error) {
	in := csv.NewReader(r)
	in.Comma = comma
	in.LazyQuotes = true
	in.ReuseRecord = true
	header, err := in.Read()
	if err == io.EOF {
		return table.New(name), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading header of %s", name)
	}
	result := table.New(name, header...)
	if result.NumColumns() != len(header) {
		return nil, errors.Newf("duplicate column names in header of %s", name)
	}
	for {
		record, err := in.Read()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		row := make(table.Row, len(record))
		for j, field := range record {
			row[j] = ParseField(field)
		}
		result.AppendRow(row)
	}
}

// ReadFile reads a delimited file, choosing the delimiter from its
// extension. The name "-" reads tab separated standard input.
func ReadFile(filename string) (*table.Table, error) {
	if filename == "-" {
		return Read(os.Stdin, "stdin", '\t')
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, filename, ForExtension(filepath.Ext(filename)).Comma)
}
