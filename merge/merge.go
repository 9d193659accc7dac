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

// Package merge collapses table rows that share a key into one row per
// key.
//
// Three aggregation modes are supported. Ordered keeps annotation
// columns as ordered tuples and joins the distinct values of all other
// columns. Unique reduces every column to its sorted set of distinct
// values. Concat is the older ordered definition that joins all values
// of a column unless they are all the same.
package merge

import (
	"regexp"
	"sort"
	"strings"

	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/table"
)

// Mode is an enumeration type for the row aggregation policies.
type Mode uint8

// The different merge modes.
const (
	Ordered Mode = iota
	Unique
	Concat
)

func (m Mode) String() string {
	switch m {
	case Ordered:
		return "ordered"
	case Unique:
		return "unique"
	case Concat:
		return "concat"
	default:
		return "invalid"
	}
}

// ParseMode returns the merge mode with the given name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "ordered":
		return Ordered, nil
	case "unique":
		return Unique, nil
	case "concat":
		return Concat, nil
	default:
		return 0, errors.MissingConfiguration("merge.mode", "unknown merge mode "+name)
	}
}

// Default values for Options.
const (
	DefaultDelimiter          = ";"
	DefaultMultiValuedPattern = "ANN"
)

// Options configure a merge.
type Options struct {
	Mode Mode

	// Delimiter joins distinct values in Ordered and Concat mode.
	Delimiter string

	// MultiValued selects the annotation columns that Ordered mode
	// aggregates into ordered tuples. A nil pattern selects none.
	MultiValued *regexp.Regexp
}

// DefaultOptions returns options for the given mode with the default
// delimiter and annotation pattern.
func DefaultOptions(mode Mode) Options {
	return Options{
		Mode:        mode,
		Delimiter:   DefaultDelimiter,
		MultiValued: regexp.MustCompile(DefaultMultiValuedPattern),
	}
}

type group struct {
	first int // row position of the first member, used for the key cells
	rows  []int
}

// Merge groups the rows of t by the cells in the key columns and
// returns a table with one row per distinct key. The result has the
// columns of t, and its rows are ordered by key.
//
// Key columns must not contain nulls the caller wants to group on:
// fill them with a placeholder first.
func Merge(t *table.Table, keys []string, opts Options) (*table.Table, error) {
	if len(keys) == 0 {
		return nil, errors.MissingConfiguration("merge keys", "no key columns given")
	}
	keyIdx, err := t.Indices(keys...)
	if err != nil {
		return nil, err
	}
	if opts.Delimiter == "" {
		opts.Delimiter = DefaultDelimiter
	}

	groups := groupRows(t, keyIdx)

	isKey := make([]bool, t.NumColumns())
	for _, j := range keyIdx {
		isKey[j] = true
	}
	aggregators := make([]func([]table.Cell) table.Cell, t.NumColumns())
	for j, col := range t.Columns() {
		if !isKey[j] {
			aggregators[j] = opts.aggregator(col)
		}
	}

	result := table.New(t.Name, t.Columns()...)
	rows := t.Rows()
	values := make([]table.Cell, 0, 16)
	for _, g := range groups {
		row := make(table.Row, t.NumColumns())
		for j := range row {
			if isKey[j] {
				row[j] = rows[g.first][j]
				continue
			}
			values = values[:0]
			for _, r := range g.rows {
				values = append(values, rows[r][j])
			}
			row[j] = aggregators[j](values)
		}
		result.AppendRow(row)
	}
	return result, nil
}

// groupRows returns the row groups of t sorted by key. Members of a
// group are listed in row order.
func groupRows(t *table.Table, keyIdx []int) []*group {
	rows := t.Rows()
	byKey := make(map[string]*group, len(rows))
	var groups []*group
	for i, row := range rows {
		k := table.KeyOf(row, keyIdx)
		g, ok := byKey[k]
		if !ok {
			g = &group{first: i}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, i)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return table.CompareKeys(rows[groups[i].first], rows[groups[j].first], keyIdx) < 0
	})
	return groups
}

func (opts Options) aggregator(col string) func([]table.Cell) table.Cell {
	switch opts.Mode {
	case Unique:
		return uniqueSet
	case Concat:
		return func(values []table.Cell) table.Cell {
			return concat(values, opts.Delimiter)
		}
	default:
		if opts.MultiValued != nil && opts.MultiValued.MatchString(col) {
			return orderedTuple
		}
		return func(values []table.Cell) table.Cell {
			return joinDistinct(values, opts.Delimiter)
		}
	}
}

// flatten returns the non-null values of the cells in order, with list
// cells contributing their elements.
func flatten(values []table.Cell) []table.Cell {
	var result []table.Cell
	for _, v := range values {
		for _, e := range v.Elements() {
			if !e.IsNull() {
				result = append(result, e)
			}
		}
	}
	return result
}

// orderedTuple keeps every value of the group in row order.
func orderedTuple(values []table.Cell) table.Cell {
	return table.Collapse(flatten(values))
}

// joinDistinct joins the distinct string casts of the values in order
// of first occurrence. A single distinct value is returned unchanged.
func joinDistinct(values []table.Cell, delimiter string) table.Cell {
	seen := make(map[string]bool)
	var strs []string
	var single table.Cell
	for _, v := range flatten(values) {
		s := v.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		strs = append(strs, s)
		single = v
	}
	switch len(strs) {
	case 0:
		return table.NullCell()
	case 1:
		return single
	default:
		return table.StringCell(strings.Join(strs, delimiter))
	}
}

// uniqueSet returns the sorted distinct values of the group.
func uniqueSet(values []table.Cell) table.Cell {
	distinct := table.Distinct(values)
	sort.SliceStable(distinct, func(i, j int) bool {
		return table.Compare(distinct[i], distinct[j]) < 0
	})
	return table.Collapse(distinct)
}

// concat joins all values unless there is only one distinct value.
func concat(values []table.Cell, delimiter string) table.Cell {
	all := flatten(values)
	if distinct := table.Distinct(all); len(distinct) <= 1 {
		return table.Collapse(distinct)
	}
	strs := make([]string, len(all))
	for i, v := range all {
		strs[i] = v.String()
	}
	return table.StringCell(strings.Join(strs, delimiter))
}
