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

package pivot

import (
	"github.com/exascience/mucor/table"
)

// Reattach joins the extra columns of condensed onto pivoted, matching
// rows on the key columns. Every row of pivoted appears exactly once in
// the result. Extra cells are filled with fillValue when condensed has
// no row for a key, or when the matched cell is null.
//
// The result columns are the key columns, the extra columns in the
// given order, and then the remaining columns of pivoted in their
// existing order. Null key cells of condensed are filled with fillValue
// before matching, the same way Pivot fills its index.
func Reattach(condensed, pivoted *table.Table, keys, extras []string, fillValue string) (*table.Table, error) {
	if fillValue == "" {
		fillValue = DefaultFillValue
	}
	fill := table.StringCell(fillValue)
	extras = withoutKeys(extras, keys)
	if err := condensed.Require(append(append([]string(nil), keys...), extras...)...); err != nil {
		return nil, err
	}
	pivotedKeyIdx, err := pivoted.Indices(keys...)
	if err != nil {
		return nil, err
	}

	condensed = condensed.FillNull(fill, keys...)
	keyIdx, _ := condensed.Indices(keys...)
	extraIdx, _ := condensed.Indices(extras...)
	lookup := make(map[string]table.Row, condensed.NumRows())
	for _, row := range condensed.Rows() {
		k := table.KeyOf(row, keyIdx)
		if _, ok := lookup[k]; !ok {
			lookup[k] = row
		}
	}

	order := make([]string, 0, pivoted.NumColumns()+len(extras))
	order = append(append(order, keys...), extras...)
	isLeading := make(map[string]bool, len(order))
	for _, col := range order {
		isLeading[col] = true
	}
	var rest []int
	for j, col := range pivoted.Columns() {
		if !isLeading[col] {
			order = append(order, col)
			rest = append(rest, j)
		}
	}

	result := table.New(pivoted.Name, order...)
	outKeyIdx := seq(len(keys))
	for _, row := range pivoted.Rows() {
		out := make(table.Row, 0, len(order))
		for _, j := range pivotedKeyIdx {
			out = append(out, row[j].FillNull(fill))
		}
		match, found := lookup[table.KeyOf(out, outKeyIdx)]
		for i := range extras {
			if found {
				out = append(out, match[extraIdx[i]].FillNull(fill))
			} else {
				out = append(out, fill)
			}
		}
		for _, j := range rest {
			out = append(out, row[j])
		}
		result.AppendRow(out)
	}
	return result, nil
}

// withoutKeys returns the distinct extra columns that are not key
// columns, in order.
func withoutKeys(extras, keys []string) []string {
	skip := make(map[string]bool, len(keys)+len(extras))
	for _, col := range keys {
		skip[col] = true
	}
	result := make([]string, 0, len(extras))
	for _, col := range extras {
		if !skip[col] {
			skip[col] = true
			result = append(result, col)
		}
	}
	return result
}
