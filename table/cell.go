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
	"math"
	"strconv"
	"strings"
)

// Kind is an enumeration type for the different cell representations.
type Kind uint8

// The different cell kinds.
const (
	Null   Kind = iota
	String      // represented as string
	Int         // represented as int64
	Float       // represented as float64
	List        // represented as []Cell, elements are never lists
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case List:
		return "list"
	default:
		return "invalid"
	}
}

// A Cell is a tagged variant holding null, a scalar, or a flat list of
// scalars. The zero Cell is null.
type Cell struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	list []Cell
}

// NullCell returns the null cell.
func NullCell() Cell { return Cell{} }

// StringCell returns a string cell.
func StringCell(s string) Cell { return Cell{kind: String, str: s} }

// IntCell returns an integer cell.
func IntCell(i int64) Cell { return Cell{kind: Int, num: i} }

// FloatCell returns a float cell.
func FloatCell(f float64) Cell { return Cell{kind: Float, flt: f} }

// ListCell returns a list cell of the given elements. Nested lists are
// spliced into the result, so a list never contains another list.
func ListCell(elements ...Cell) Cell {
	list := make([]Cell, 0, len(elements))
	for _, e := range elements {
		if e.kind == List {
			list = append(list, e.list...)
		} else {
			list = append(list, e)
		}
	}
	return Cell{kind: List, list: list}
}

// Kind returns the representation of the cell.
func (c Cell) Kind() Kind { return c.kind }

// IsNull returns true for the null cell.
func (c Cell) IsNull() bool { return c.kind == Null }

// IsList returns true for list cells.
func (c Cell) IsList() bool { return c.kind == List }

// IsNumeric returns true for int and float cells.
func (c Cell) IsNumeric() bool { return c.kind == Int || c.kind == Float }

// Str returns the string value of a string cell, or "" otherwise.
func (c Cell) Str() string { return c.str }

// Int returns the value of an int cell, or the truncated value of a
// float cell.
func (c Cell) Int() int64 {
	if c.kind == Float {
		return int64(c.flt)
	}
	return c.num
}

// Float returns the numeric value of an int or float cell.
func (c Cell) Float() float64 {
	if c.kind == Int {
		return float64(c.num)
	}
	return c.flt
}

// List returns the elements of a list cell. The result must not be
// modified.
func (c Cell) List() []Cell { return c.list }

// Elements returns the elements of a list cell, the cell itself as a
// single element for scalars, and nil for null.
func (c Cell) Elements() []Cell {
	switch c.kind {
	case Null:
		return nil
	case List:
		return c.list
	default:
		return []Cell{c}
	}
}

// Len returns the number of elements of a list cell, 0 for null, and 1
// for scalars.
func (c Cell) Len() int {
	return len(c.Elements())
}

// FormatFloat renders a float the way it is shown in output tables:
// integral values keep a trailing ".0".
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// String returns the string cast of the cell. Null renders as "", list
// elements are joined with ",".
func (c Cell) String() string {
	return c.Join(",")
}

// Join returns the string cast of the cell, joining list elements with
// the given separator.
func (c Cell) Join(sep string) string {
	switch c.kind {
	case String:
		return c.str
	case Int:
		return strconv.FormatInt(c.num, 10)
	case Float:
		return FormatFloat(c.flt)
	case List:
		var buf strings.Builder
		for i, e := range c.list {
			if i > 0 {
				buf.WriteString(sep)
			}
			buf.WriteString(e.String())
		}
		return buf.String()
	default:
		return ""
	}
}

// Equal reports whether two cells have the same value. Int and float
// cells with the same numeric value are equal.
func (c Cell) Equal(other Cell) bool {
	return Compare(c, other) == 0
}

func kindRank(k Kind) int {
	switch k {
	case Null:
		return 0
	case Int, Float:
		return 1
	case String:
		return 2
	default:
		return 3
	}
}

// Compare defines the total order used for sorting and deduplication:
// null < numbers < strings < lists. Numbers compare by value, strings
// lexicographically, lists element-wise.
func Compare(a, b Cell) int {
	ra, rb := kindRank(a.kind), kindRank(b.kind)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 0:
		return 0
	case 1:
		if a.kind == Int && b.kind == Int {
			switch {
			case a.num < b.num:
				return -1
			case a.num > b.num:
				return 1
			}
			return 0
		}
		fa, fb := a.Float(), b.Float()
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		case fa == fb:
			return 0
		}
		// NaNs sort first
		switch {
		case math.IsNaN(fa) && math.IsNaN(fb):
			return 0
		case math.IsNaN(fa):
			return -1
		}
		return 1
	case 2:
		return strings.Compare(a.str, b.str)
	}
	for i := 0; i < len(a.list) && i < len(b.list); i++ {
		if c := Compare(a.list[i], b.list[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a.list) < len(b.list):
		return -1
	case len(a.list) > len(b.list):
		return 1
	}
	return 0
}

// appendKey appends an unambiguous encoding of the cell to buf, such
// that two cells have the same encoding if and only if they are Equal.
func (c Cell) appendKey(buf []byte) []byte {
	switch c.kind {
	case Null:
		return append(buf, 'z')
	case Int:
		buf = append(buf, 'n')
		return strconv.AppendInt(buf, c.num, 10)
	case Float:
		if f := c.flt; f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			buf = append(buf, 'n')
			return strconv.AppendInt(buf, int64(f), 10)
		}
		buf = append(buf, 'n')
		return strconv.AppendFloat(buf, c.flt, 'g', -1, 64)
	case String:
		buf = append(buf, 's')
		buf = strconv.AppendInt(buf, int64(len(c.str)), 10)
		buf = append(buf, ':')
		return append(buf, c.str...)
	default:
		buf = append(buf, 'l')
		buf = strconv.AppendInt(buf, int64(len(c.list)), 10)
		buf = append(buf, ':')
		for _, e := range c.list {
			buf = e.appendKey(buf)
			buf = append(buf, 0)
		}
		return buf
	}
}

// Key returns the grouping key of the cell.
func (c Cell) Key() string {
	return string(c.appendKey(nil))
}

// FillNull returns fill if the cell is null, and the cell otherwise.
func (c Cell) FillNull(fill Cell) Cell {
	if c.kind == Null {
		return fill
	}
	return c
}

// Distinct returns the distinct non-null values of the given cells in
// order of first occurrence, with list cells contributing their
// elements.
func Distinct(cells []Cell) []Cell {
	seen := make(map[string]struct{}, len(cells))
	var result []Cell
	for _, c := range cells {
		for _, e := range c.Elements() {
			if e.kind == Null {
				continue
			}
			k := e.Key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			result = append(result, e)
		}
	}
	return result
}

// Collapse returns null for no values, the single value for one value,
// and a list cell otherwise.
func Collapse(values []Cell) Cell {
	switch len(values) {
	case 0:
		return NullCell()
	case 1:
		return values[0]
	default:
		return ListCell(values...)
	}
}
