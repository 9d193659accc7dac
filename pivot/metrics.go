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
	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/mucor/table"
)

// Names of the result metric columns.
const (
	PositiveResults = "Positive results"
	PositiveRate    = "Positive rate"
)

// Evidence returns, for each row of t, the set of value columns whose
// cell is not the fill value. Bit i corresponds to valueColumns[i].
// Value columns that t does not have are never set.
func Evidence(t *table.Table, valueColumns []string, fillValue string) []*bitset.BitSet {
	idx := make([]int, len(valueColumns))
	for i, col := range valueColumns {
		if j, ok := t.ColumnIndex(col); ok {
			idx[i] = j
		} else {
			idx[i] = -1
		}
	}
	result := make([]*bitset.BitSet, t.NumRows())
	for r, row := range t.Rows() {
		set := bitset.New(uint(len(idx)))
		for i, j := range idx {
			if j >= 0 && isPositive(row[j], fillValue) {
				set.Set(uint(i))
			}
		}
		result[r] = set
	}
	return result
}

func isPositive(cell table.Cell, fillValue string) bool {
	return !cell.IsNull() && cell.String() != fillValue
}

// AddResultMetrics returns t with the PositiveResults and PositiveRate
// columns inserted at position pos. PositiveResults counts the value
// columns of a row that do not hold the fill value, and PositiveRate is
// that count divided by the number of value columns. With no value
// columns the rate is 0.
func AddResultMetrics(t *table.Table, valueColumns []string, fillValue string, pos int) (*table.Table, error) {
	if err := t.Require(valueColumns...); err != nil {
		return nil, err
	}
	evidence := Evidence(t, valueColumns, fillValue)
	results := make([]table.Cell, len(evidence))
	rates := make([]table.Cell, len(evidence))
	n := float64(len(valueColumns))
	for r, set := range evidence {
		count := set.Count()
		results[r] = table.IntCell(int64(count))
		if n == 0 {
			rates[r] = table.FloatCell(0)
		} else {
			rates[r] = table.FloatCell(float64(count) / n)
		}
	}
	t = t.InsertColumn(pos, PositiveResults, results)
	return t.InsertColumn(pos+1, PositiveRate, rates), nil
}

// Coverage returns the union of the evidence sets, that is the value
// columns that hold evidence in at least one row.
func Coverage(evidence []*bitset.BitSet, n int) *bitset.BitSet {
	result := bitset.New(uint(n))
	for _, set := range evidence {
		result.InPlaceUnion(set)
	}
	return result
}
