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
	"sort"

	psort "github.com/exascience/pargo/sort"
)

// By orders two rows.
type By func(row1, row2 Row) bool

// ByColumns orders rows on the cells at the given column positions.
func ByColumns(idx []int) By {
	return func(row1, row2 Row) bool {
		return CompareKeys(row1, row2, idx) < 0
	}
}

type rowSorter struct {
	rows []Row
	by   By
}

func (s rowSorter) SequentialSort(i, j int) {
	rows, by := s.rows[i:j], s.by
	sort.SliceStable(rows, func(i, j int) bool {
		return by(rows[i], rows[j])
	})
}

func (s rowSorter) NewTemp() psort.StableSorter {
	return rowSorter{make([]Row, len(s.rows)), s.by}
}

func (s rowSorter) Len() int {
	return len(s.rows)
}

func (s rowSorter) Less(i, j int) bool {
	return s.by(s.rows[i], s.rows[j])
}

func (s rowSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s.rows, source.(rowSorter).rows
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// ParallelStableSort sorts rows in place using a parallel stable sort.
func (by By) ParallelStableSort(rows []Row) {
	psort.StableSort(rowSorter{rows, by})
}

// SortBy returns a table whose rows are stably sorted on the given key
// columns. Rows with equal keys keep their relative order.
func (t *Table) SortBy(cols ...string) (*Table, error) {
	idx, err := t.Indices(cols...)
	if err != nil {
		return nil, err
	}
	result := t.Clone()
	ByColumns(idx).ParallelStableSort(result.rows)
	return result, nil
}
