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
	"sort"
	"strconv"
	"strings"

	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/table"
)

// Aggregator is an enumeration type for the reductions a pivot applies
// to the values that fall into one output cell.
type Aggregator uint8

// The supported aggregators.
const (
	// Mean averages numeric values. It is the default numeric
	// aggregator.
	Mean Aggregator = iota

	// UniqueStringJoin reduces the values to their sorted set of
	// distinct values. It is selected with the name string_agg.
	UniqueStringJoin

	// Sum adds numeric values.
	Sum

	// First keeps the first non-null value in row order.
	First
)

var aggregatorNames = [...]string{
	Mean:             "mean",
	UniqueStringJoin: "string_agg",
	Sum:              "sum",
	First:            "first",
}

func (a Aggregator) String() string {
	if int(a) < len(aggregatorNames) {
		return aggregatorNames[a]
	}
	return "invalid"
}

// ParseAggregator returns the aggregator with the given name. The empty
// name selects Mean.
func ParseAggregator(name string) (Aggregator, error) {
	switch strings.ToLower(name) {
	case "", "mean", "numeric":
		return Mean, nil
	case "string_agg", "unique", "unique_string_join":
		return UniqueStringJoin, nil
	case "sum":
		return Sum, nil
	case "first":
		return First, nil
	}
	return 0, errors.WithHint(
		errors.Wrapf(errors.ErrUnknownAggregator, "%q", name),
		"supported aggregators are mean, string_agg, sum and first",
	)
}

// IsNumeric reports whether the aggregator only accepts numbers.
func (a Aggregator) IsNumeric() bool {
	return a == Mean || a == Sum
}

// SplitJoined returns values with every string element that holds
// sep-joined numbers replaced by those numbers. Strings with a part
// that is not a number are kept as they are.
func SplitJoined(values []table.Cell, sep string) []table.Cell {
	result := make([]table.Cell, 0, len(values))
	for _, v := range values {
		for _, e := range v.Elements() {
			if e.Kind() != table.String || !strings.Contains(e.Str(), sep) {
				result = append(result, e)
				continue
			}
			parts := strings.Split(e.Str(), sep)
			nums := make([]table.Cell, 0, len(parts))
			for _, part := range parts {
				n, ok := parseNumber(strings.TrimSpace(part))
				if !ok {
					nums = nil
					break
				}
				nums = append(nums, n)
			}
			if nums == nil {
				result = append(result, e)
			} else {
				result = append(result, nums...)
			}
		}
	}
	return result
}

func parseNumber(s string) (table.Cell, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return table.IntCell(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return table.FloatCell(f), true
	}
	return table.NullCell(), false
}

// Aggregate reduces values to a single cell. Null values are ignored,
// and list cells contribute their elements. The result is null if there
// is nothing to aggregate.
func (a Aggregator) Aggregate(values []table.Cell) (table.Cell, error) {
	switch a {
	case Mean:
		return mean(values)
	case UniqueStringJoin:
		distinct := table.Distinct(values)
		sort.SliceStable(distinct, func(i, j int) bool {
			return table.Compare(distinct[i], distinct[j]) < 0
		})
		return table.Collapse(distinct), nil
	case Sum:
		return sum(values)
	case First:
		for _, v := range values {
			if !v.IsNull() {
				return v, nil
			}
		}
		return table.NullCell(), nil
	default:
		return table.NullCell(), errors.Wrapf(errors.ErrUnknownAggregator, "%v", uint8(a))
	}
}

func numericElements(values []table.Cell) (result []table.Cell, err error) {
	for _, v := range values {
		for _, e := range v.Elements() {
			switch {
			case e.IsNull():
			case e.IsNumeric():
				result = append(result, e)
			default:
				return nil, errors.Wrapf(errors.ErrNonNumeric, "%q", e.String())
			}
		}
	}
	return result, nil
}

func mean(values []table.Cell) (table.Cell, error) {
	nums, err := numericElements(values)
	if err != nil || len(nums) == 0 {
		return table.NullCell(), err
	}
	var total float64
	for _, n := range nums {
		total += n.Float()
	}
	return table.FloatCell(total / float64(len(nums))), nil
}

func sum(values []table.Cell) (table.Cell, error) {
	nums, err := numericElements(values)
	if err != nil || len(nums) == 0 {
		return table.NullCell(), err
	}
	var (
		isum int64
		fsum float64
		ints = true
	)
	for _, n := range nums {
		if n.Kind() == table.Int {
			isum += n.Int()
		} else {
			ints = false
		}
		fsum += n.Float()
	}
	if ints {
		return table.IntCell(isum), nil
	}
	return table.FloatCell(fsum), nil
}
