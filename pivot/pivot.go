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

// Package pivot reshapes long tables into wide tables with one column
// per distinct value of a pivot column, computes the evidence metrics
// of the resulting rows, and reattaches descriptive columns that do not
// take part in the pivot.
package pivot

import (
	"sort"
	"strings"

	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/table"
)

// DefaultFillValue is the conventional sentinel for absent cells.
const DefaultFillValue = "."

// Options describe a pivot.
type Options struct {
	// Index lists the columns that identify an output row.
	Index []string

	// On lists the columns whose distinct value combinations become
	// output columns.
	On []string

	// Values lists the columns that are aggregated into the output
	// cells.
	Values []string

	Aggregator Aggregator

	// FillValue replaces null index cells and fills absent output
	// cells. The empty string selects DefaultFillValue.
	FillValue string

	// Expected lists output column names that must be present even if
	// no row produces them. Such columns are filled with FillValue.
	Expected []string

	// Separator splits string values that an earlier merge joined, so
	// that numeric aggregators see the individual numbers. The empty
	// string disables splitting.
	Separator string
}

func (opts *Options) validate() error {
	switch {
	case len(opts.Index) == 0:
		return errors.MissingConfiguration("pivot index", "no row index columns given")
	case len(opts.On) == 0:
		return errors.MissingConfiguration("pivot on", "no pivot columns given")
	case len(opts.Values) == 0:
		return errors.MissingConfiguration("pivot values", "no value columns given")
	}
	if opts.FillValue == "" {
		opts.FillValue = DefaultFillValue
	}
	return nil
}

// pivotColumn is one generated output column.
type pivotColumn struct {
	name     string
	key      table.Row // the pivot-on values
	value    int       // position in the value columns
	expected bool      // added for an expected name, no input row feeds it
}

// Pivot returns the wide form of t. Output columns are the index
// columns, the result metrics, and one column per distinct pivot value
// (per value column if there are several), sorted by pivot value. Rows
// are sorted by index.
//
// A value column that is also an index or pivot column is pivoted
// through a copy named with a "2" suffix.
func Pivot(t *table.Table, opts Options) (*table.Table, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	required := make([]string, 0, len(opts.Index)+len(opts.On)+len(opts.Values))
	required = append(append(append(required, opts.Index...), opts.On...), opts.Values...)
	if err := t.Require(required...); err != nil {
		return nil, err
	}
	fill := table.StringCell(opts.FillValue)

	t, values := copyOverlappingValues(t, opts)
	t = t.FillNull(fill, opts.Index...)
	indexIdx, _ := t.Indices(opts.Index...)
	onIdx, _ := t.Indices(opts.On...)
	valueIdx, _ := t.Indices(values...)

	// distinct pivot keys, each giving one output column per value column
	rows := t.Rows()
	seen := make(map[string]bool)
	var pcols []*pivotColumn
	addColumns := func(key table.Row, expected bool) {
		for v := range values {
			pc := &pivotColumn{
				name:     columnName(key, opts.Values[v], len(values)),
				key:      key,
				value:    v,
				expected: expected,
			}
			if seen[pc.name] {
				continue
			}
			seen[pc.name] = true
			pcols = append(pcols, pc)
		}
	}
	for _, col := range opts.Index {
		seen[col] = true
	}
	for _, row := range rows {
		if !hasNull(row, onIdx) {
			if k := project(row, onIdx); !seen[columnName(k, opts.Values[0], len(values))] {
				addColumns(k, false)
			}
		}
	}
	for _, name := range opts.Expected {
		addColumns(table.Row{table.StringCell(name)}, true)
	}
	sort.SliceStable(pcols, func(i, j int) bool {
		if c := compareCells(pcols[i].key, pcols[j].key); c != 0 {
			return c < 0
		}
		return pcols[i].value < pcols[j].value
	})
	columnOf := make(map[string]int, len(pcols))
	for c, pc := range pcols {
		if !pc.expected {
			columnOf[pc.name] = c
		}
	}

	// row groups, and the input rows of each output cell
	type group struct {
		index table.Row
		cells map[int][]int
	}
	groupOf := make(map[string]*group)
	var groups []*group
	for r, row := range rows {
		if hasNull(row, onIdx) {
			continue
		}
		k := table.KeyOf(row, indexIdx)
		g, ok := groupOf[k]
		if !ok {
			g = &group{index: project(row, indexIdx), cells: make(map[int][]int)}
			groupOf[k] = g
			groups = append(groups, g)
		}
		pk := project(row, onIdx)
		for v := range values {
			if c, ok := columnOf[columnName(pk, opts.Values[v], len(values))]; ok {
				g.cells[c] = append(g.cells[c], r)
			}
		}
	}
	indexSeq := seq(len(opts.Index))
	sort.SliceStable(groups, func(i, j int) bool {
		return table.CompareKeys(groups[i].index, groups[j].index, indexSeq) < 0
	})

	names := make([]string, len(pcols))
	for i, pc := range pcols {
		names[i] = pc.name
	}
	result := table.New(t.Name, append(append([]string(nil), opts.Index...), names...)...)
	buf := make([]table.Cell, 0, 16)
	for _, g := range groups {
		row := make(table.Row, 0, len(opts.Index)+len(pcols))
		row = append(row, g.index...)
		for c, pc := range pcols {
			members, ok := g.cells[c]
			if !ok {
				row = append(row, fill)
				continue
			}
			buf = buf[:0]
			for _, r := range members {
				buf = append(buf, rows[r][valueIdx[pc.value]])
			}
			cell, err := opts.aggregate(buf)
			if err != nil {
				return nil, errors.Wrapf(err, "pivot column %s", pc.name)
			}
			row = append(row, cell.FillNull(fill))
		}
		result.AppendRow(row)
	}
	return AddResultMetrics(result, names, opts.FillValue, len(opts.Index))
}

// aggregate reduces the values of one output cell. A numeric
// aggregator that meets values that are not numbers falls back to
// UniqueStringJoin for that cell.
func (opts *Options) aggregate(values []table.Cell) (table.Cell, error) {
	if !opts.Aggregator.IsNumeric() {
		return opts.Aggregator.Aggregate(values)
	}
	if opts.Separator != "" {
		values = SplitJoined(values, opts.Separator)
	}
	cell, err := opts.Aggregator.Aggregate(values)
	if errors.Is(err, errors.ErrNonNumeric) {
		return UniqueStringJoin.Aggregate(values)
	}
	return cell, err
}

// copyOverlappingValues duplicates value columns that are also index or
// pivot columns, and returns the names of the value columns to read.
func copyOverlappingValues(t *table.Table, opts Options) (*table.Table, []string) {
	keys := make(map[string]bool)
	for _, col := range opts.Index {
		keys[col] = true
	}
	for _, col := range opts.On {
		keys[col] = true
	}
	values := make([]string, len(opts.Values))
	for i, col := range opts.Values {
		if !keys[col] {
			values[i] = col
			continue
		}
		values[i] = col + "2"
		t = t.WithColumn(values[i], t.Column(col))
	}
	return t, values
}

func columnName(key table.Row, value string, nValues int) string {
	strs := make([]string, len(key))
	for i, c := range key {
		strs[i] = c.String()
	}
	name := strings.Join(strs, "_")
	if nValues > 1 {
		return value + "_" + name
	}
	return name
}

func compareCells(a, b table.Row) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := table.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func hasNull(row table.Row, idx []int) bool {
	for _, j := range idx {
		if row[j].IsNull() {
			return true
		}
	}
	return false
}

func project(row table.Row, idx []int) table.Row {
	result := make(table.Row, len(idx))
	for i, j := range idx {
		result[i] = row[j]
	}
	return result
}

func seq(n int) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}
