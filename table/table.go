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

	"github.com/exascience/mucor/errors"
)

// A Row holds one cell per table column, in column order.
type Row []Cell

// Table is an ordered sequence of uniquely named columns and an
// ordered sequence of rows. Every row has exactly one cell per column;
// missing values are null cells.
//
// Tables are treated as immutable once they are passed from one stage
// to the next: every operation in this package and in the merge, pivot
// and derive packages returns a new Table.
type Table struct {
	Name    string
	columns []string
	index   map[string]int
	rows    []Row
}

// New creates an empty table with the given columns. Duplicate column
// names are ignored after their first occurrence.
func New(name string, columns ...string) *Table {
	t := &Table{Name: name, index: make(map[string]int, len(columns))}
	for _, col := range columns {
		t.addColumn(col)
	}
	return t
}

func (t *Table) addColumn(col string) int {
	if i, ok := t.index[col]; ok {
		return i
	}
	i := len(t.columns)
	t.columns = append(t.columns, col)
	t.index[col] = i
	for r := range t.rows {
		t.rows[r] = append(t.rows[r], NullCell())
	}
	return i
}

// Columns returns the column names in order. The result must not be
// modified.
func (t *Table) Columns() []string { return t.columns }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// Rows returns the rows of the table. The result must not be modified.
func (t *Table) Rows() []Row { return t.rows }

// Row returns the row at position i. The result must not be modified.
func (t *Table) Row(i int) Row { return t.rows[i] }

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(col string) (int, bool) {
	i, ok := t.index[col]
	return i, ok
}

// HasColumn returns true if the table has the named column.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Missing returns the given columns that are absent from the table, in
// the given order.
func (t *Table) Missing(cols ...string) (missing []string) {
	for _, col := range cols {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Require returns an ErrMissingColumn error naming every given column
// that is absent from the table, or nil.
func (t *Table) Require(cols ...string) error {
	if missing := t.Missing(cols...); len(missing) > 0 {
		return errors.MissingColumns(t.Name, missing...)
	}
	return nil
}

// Indices returns the positions of the given columns, or an
// ErrMissingColumn error.
func (t *Table) Indices(cols ...string) ([]int, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	result := make([]int, len(cols))
	for i, col := range cols {
		result[i] = t.index[col]
	}
	return result, nil
}

// Get returns the cell of row i in the named column, or null if the
// column does not exist.
func (t *Table) Get(i int, col string) Cell {
	if j, ok := t.index[col]; ok {
		return t.rows[i][j]
	}
	return NullCell()
}

// Column returns all cells of the named column, or nil if the column
// does not exist.
func (t *Table) Column(col string) []Cell {
	j, ok := t.index[col]
	if !ok {
		return nil
	}
	result := make([]Cell, len(t.rows))
	for i, row := range t.rows {
		result[i] = row[j]
	}
	return result
}

// AppendRow adds a row. Shorter rows are padded with nulls, longer rows
// are truncated to the table's columns.
func (t *Table) AppendRow(row Row) {
	r := make(Row, len(t.columns))
	copy(r, row)
	t.rows = append(t.rows, r)
}

// AppendRecord adds a row given as a column-to-cell mapping. Columns
// that the table does not have yet are added in the given key order
// (record keys missing from keys follow in sorted order), and existing
// rows receive null cells for them.
func (t *Table) AppendRecord(keys []string, record map[string]Cell) {
	for _, key := range keys {
		t.addColumn(key)
	}
	var extra []string
	for key := range record {
		if !t.HasColumn(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		t.addColumn(key)
	}
	row := make(Row, len(t.columns))
	for key, cell := range record {
		row[t.index[key]] = cell
	}
	t.rows = append(t.rows, row)
}

// EnsureColumns returns a table that has all the given columns,
// appending null columns for the absent ones. If nothing is missing,
// the receiver is returned.
func (t *Table) EnsureColumns(cols ...string) *Table {
	if len(t.Missing(cols...)) == 0 {
		return t
	}
	result := t.Clone()
	for _, col := range cols {
		result.addColumn(col)
	}
	return result
}

// Clone returns a copy of the table that shares no rows with the
// receiver. Cells are values and are copied with the rows.
func (t *Table) Clone() *Table {
	result := &Table{
		Name:    t.Name,
		columns: append([]string(nil), t.columns...),
		index:   make(map[string]int, len(t.columns)),
		rows:    make([]Row, len(t.rows)),
	}
	for col, i := range t.index {
		result.index[col] = i
	}
	for i, row := range t.rows {
		result.rows[i] = append(Row(nil), row...)
	}
	return result
}

// Filter returns a table with the rows that satisfy keep.
func (t *Table) Filter(keep func(Row) bool) *Table {
	result := New(t.Name, t.columns...)
	for _, row := range t.rows {
		if keep(row) {
			result.rows = append(result.rows, append(Row(nil), row...))
		}
	}
	return result
}

// Select returns a table with only the given columns, in the given
// order. Repeated names are selected once.
func (t *Table) Select(cols ...string) (*Table, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	result := New(t.Name, cols...)
	idx := make([]int, len(result.columns))
	for j, col := range result.columns {
		idx[j] = t.index[col]
	}
	result.rows = make([]Row, len(t.rows))
	for i, row := range t.rows {
		r := make(Row, len(idx))
		for j, k := range idx {
			r[j] = row[k]
		}
		result.rows[i] = r
	}
	return result, nil
}

// Reorder returns a table whose columns start with the given leading
// columns, in the given order, followed by the remaining columns in
// their existing order. Leading columns that the table does not have
// are ignored.
func (t *Table) Reorder(leading ...string) *Table {
	order := make([]string, 0, len(t.columns))
	seen := make(map[string]bool, len(leading))
	for _, col := range leading {
		if t.HasColumn(col) && !seen[col] {
			seen[col] = true
			order = append(order, col)
		}
	}
	for _, col := range t.columns {
		if !seen[col] {
			order = append(order, col)
		}
	}
	result, _ := t.Select(order...)
	return result
}

// WithColumn returns a table with the named column set to the given
// cells, which must have one entry per row. A new column is appended
// after the existing ones.
func (t *Table) WithColumn(col string, cells []Cell) *Table {
	return t.InsertColumn(-1, col, cells)
}

// InsertColumn returns a table with the named column set to the given
// cells at position pos. A negative or too large pos appends the
// column. If the column already exists, it is moved to pos.
func (t *Table) InsertColumn(pos int, col string, cells []Cell) *Table {
	if len(cells) != len(t.rows) {
		panic("InsertColumn: cell count does not match row count")
	}
	order := make([]string, 0, len(t.columns)+1)
	for _, c := range t.columns {
		if c != col {
			order = append(order, c)
		}
	}
	if pos < 0 || pos > len(order) {
		pos = len(order)
	}
	order = append(order, "")
	copy(order[pos+1:], order[pos:])
	order[pos] = col

	result := New(t.Name, order...)
	result.rows = make([]Row, len(t.rows))
	for i, row := range t.rows {
		r := make(Row, len(order))
		for j, c := range order {
			if c == col {
				r[j] = cells[i]
			} else {
				r[j] = row[t.index[c]]
			}
		}
		result.rows[i] = r
	}
	return result
}

// FillNull returns a table in which null cells of the given columns are
// replaced by fill. Columns the table does not have are ignored.
func (t *Table) FillNull(fill Cell, cols ...string) *Table {
	result := t.Clone()
	for _, col := range cols {
		j, ok := result.index[col]
		if !ok {
			continue
		}
		for _, row := range result.rows {
			if row[j].IsNull() {
				row[j] = fill
			}
		}
	}
	return result
}

// Rename returns a table with columns renamed according to mapping. A
// rename onto a name that is already taken by another column keeps the
// cells of the column that appears first.
func (t *Table) Rename(mapping map[string]string) *Table {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		if to, ok := mapping[col]; ok {
			names[i] = to
		} else {
			names[i] = col
		}
	}
	result := New(t.Name, names...)
	result.rows = make([]Row, len(t.rows))
	for i, row := range t.rows {
		r := make(Row, len(result.columns))
		filled := make([]bool, len(result.columns))
		for j, name := range names {
			k := result.index[name]
			if !filled[k] {
				r[k] = row[j]
				filled[k] = true
			}
		}
		result.rows[i] = r
	}
	return result
}

// DistinctValues returns the distinct non-null values of the named
// column, in order of first occurrence.
func (t *Table) DistinctValues(col string) []Cell {
	return Distinct(t.Column(col))
}

// KeyOf returns the grouping key of a row for the given column
// positions.
func KeyOf(row Row, idx []int) string {
	var buf []byte
	for _, j := range idx {
		buf = row[j].appendKey(buf)
		buf = append(buf, 0)
	}
	return string(buf)
}

// CompareKeys compares two rows on the given column positions.
func CompareKeys(a, b Row, idx []int) int {
	for _, j := range idx {
		if c := Compare(a[j], b[j]); c != 0 {
			return c
		}
	}
	return 0
}

// Equal reports whether two tables have the same columns in the same
// order and equal cells row by row.
func Equal(a, b *Table) bool {
	if len(a.columns) != len(b.columns) || len(a.rows) != len(b.rows) {
		return false
	}
	for i, col := range a.columns {
		if b.columns[i] != col {
			return false
		}
	}
	for i, row := range a.rows {
		for j, cell := range row {
			if !cell.Equal(b.rows[i][j]) {
				return false
			}
		}
	}
	return true
}
