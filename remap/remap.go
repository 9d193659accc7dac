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

// Package remap renames record fields and replaces field values using
// a mapping read from a datasheet, for example to replace sample
// barcodes by patient identifiers.
package remap

import (
	"strings"

	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/table"
)

// A Mapping maps the values of one datasheet column to the values of
// another.
type Mapping struct {
	From, To string
	values   map[string]table.Cell
}

// ParsePair splits a "from=to" argument.
func ParsePair(pair string) (from, to string, err error) {
	from, to, ok := strings.Cut(pair, "=")
	if !ok || from == "" || to == "" {
		return "", "", errors.MissingConfiguration("mapping", "expected from=to, got "+pair)
	}
	return from, to, nil
}

// Load builds a mapping from the From and To columns of a datasheet.
// Rows whose From cell is null are ignored. A From value that occurs
// more than once maps to its last To value.
func Load(datasheet *table.Table, from, to string) (*Mapping, error) {
	idx, err := datasheet.Indices(from, to)
	if err != nil {
		return nil, err
	}
	m := &Mapping{From: from, To: to, values: make(map[string]table.Cell)}
	for _, row := range datasheet.Rows() {
		key := row[idx[0]]
		if key.IsNull() {
			continue
		}
		m.values[key.Key()] = row[idx[1]]
	}
	return m, nil
}

// Len returns the number of mapped values.
func (m *Mapping) Len() int { return len(m.values) }

// Lookup returns the replacement for a value.
func (m *Mapping) Lookup(value table.Cell) (table.Cell, bool) {
	c, ok := m.values[value.Key()]
	return c, ok
}

// RenameColumns renames the columns of t whose name is a mapped value.
func (m *Mapping) RenameColumns(t *table.Table) *table.Table {
	names := make(map[string]string)
	for _, col := range t.Columns() {
		if to, ok := m.Lookup(table.StringCell(col)); ok && !to.IsNull() {
			names[col] = to.String()
		}
	}
	if len(names) == 0 {
		return t
	}
	return t.Rename(names)
}

// ReplaceValues replaces the mapped values of the named column. Other
// cells are kept.
func (m *Mapping) ReplaceValues(t *table.Table, column string) (*table.Table, error) {
	j, ok := t.ColumnIndex(column)
	if !ok {
		return nil, errors.MissingColumns(t.Name, column)
	}
	cells := make([]table.Cell, t.NumRows())
	for i, row := range t.Rows() {
		if to, ok := m.Lookup(row[j]); ok {
			cells[i] = to
		} else {
			cells[i] = row[j]
		}
	}
	return t.InsertColumn(j, column, cells), nil
}
