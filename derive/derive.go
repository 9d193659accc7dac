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

// Package derive computes the columns that are derived from the raw
// variant calls before any merge, and the read depth filter.
//
// Each derived column is only computed when its source columns are
// present. A missing source column is not an error.
package derive

import (
	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/table"
)

// Names of the derived columns.
const (
	TotalDepth        = "Total_depth"
	Effect            = "EFFECT"
	AvgScorePerAllele = "Avg_QSS_Per_Read_by_Allele"
)

// Sources names the input columns the derived columns are computed
// from.
type Sources struct {
	RefDepth  string // scalar reference read depth
	AltDepths string // list of alternate allele read depths
	Scores    string // list of per-allele scores, reference first

	// The effect fallback chain: the transcript level change
	// description, then the general effect description.
	Change     string
	EffectName string
}

// DefaultSources returns the column names atomized variant calls use.
func DefaultSources() Sources {
	return Sources{
		RefDepth:   "Ref_Depth",
		AltDepths:  "Alt_depths",
		Scores:     "QSS",
		Change:     "ANN_hgvs_p",
		EffectName: "ANN_effect",
	}
}

// Apply adds every derived column whose sources are present, and
// returns the names of the columns it added.
func Apply(t *table.Table, src Sources) (*table.Table, []string) {
	var added []string
	if d, ok := AddTotalDepth(t, src); ok {
		t, added = d, append(added, TotalDepth)
	}
	if d, ok := AddEffect(t, src); ok {
		t, added = d, append(added, Effect)
	}
	if d, ok := AddAvgScorePerAllele(t, src); ok {
		t, added = d, append(added, AvgScorePerAllele)
	}
	return t, added
}

// AddTotalDepth adds the Total_depth column: the reference depth plus
// the sum of the alternate allele depths. It reports false if a source
// column is absent.
func AddTotalDepth(t *table.Table, src Sources) (*table.Table, bool) {
	if !t.HasColumn(src.RefDepth) || !t.HasColumn(src.AltDepths) {
		return t, false
	}
	refs, alts := t.Column(src.RefDepth), t.Column(src.AltDepths)
	cells := make([]table.Cell, len(refs))
	for i := range cells {
		cells[i] = totalDepth(refs[i], alts[i])
	}
	return t.WithColumn(TotalDepth, cells), true
}

func totalDepth(ref, alts table.Cell) table.Cell {
	if !ref.IsNumeric() {
		return table.NullCell()
	}
	ints := ref.Kind() == table.Int
	isum, fsum := ref.Int(), ref.Float()
	for _, alt := range alts.Elements() {
		if !alt.IsNumeric() {
			return table.NullCell()
		}
		if alt.Kind() != table.Int {
			ints = false
		}
		isum += alt.Int()
		fsum += alt.Float()
	}
	if ints {
		return table.IntCell(isum)
	}
	return table.FloatCell(fsum)
}

// AddEffect adds the EFFECT column: the change description, with its
// null cells filled from the general effect description. It reports
// false if the change description column is absent.
func AddEffect(t *table.Table, src Sources) (*table.Table, bool) {
	changes := t.Column(src.Change)
	if changes == nil {
		return t, false
	}
	names := t.Column(src.EffectName)
	cells := make([]table.Cell, len(changes))
	for i, c := range changes {
		if c.IsNull() && names != nil {
			c = names[i]
		}
		cells[i] = c
	}
	return t.WithColumn(Effect, cells), true
}

// AddAvgScorePerAllele adds the Avg_QSS_Per_Read_by_Allele column: the
// per-allele scores divided element-wise by the per-allele depths, the
// reference depth followed by the alternate depths. Surplus elements of
// the longer list are ignored, and a zero depth gives a null element.
// It reports false if a source column is absent.
func AddAvgScorePerAllele(t *table.Table, src Sources) (*table.Table, bool) {
	if !t.HasColumn(src.RefDepth) || !t.HasColumn(src.AltDepths) || !t.HasColumn(src.Scores) {
		return t, false
	}
	refs, alts, scores := t.Column(src.RefDepth), t.Column(src.AltDepths), t.Column(src.Scores)
	cells := make([]table.Cell, len(refs))
	for i := range cells {
		if refs[i].IsNull() || scores[i].IsNull() {
			continue
		}
		depths := append([]table.Cell{refs[i]}, alts[i].Elements()...)
		qss := scores[i].Elements()
		n := len(depths)
		if len(qss) < n {
			n = len(qss)
		}
		avg := make([]table.Cell, n)
		for j := 0; j < n; j++ {
			if qss[j].IsNumeric() && depths[j].IsNumeric() && depths[j].Float() != 0 {
				avg[j] = table.FloatCell(qss[j].Float() / depths[j].Float())
			}
		}
		cells[i] = table.ListCell(avg...)
	}
	return t.WithColumn(AvgScorePerAllele, cells), true
}

// DepthFilter returns the rows of t whose Total_depth exceeds
// threshold. Rows without a numeric Total_depth are dropped. If t has
// no Total_depth column, t is returned unchanged together with an
// ErrDegradedField warning.
func DepthFilter(t *table.Table, threshold float64) (*table.Table, error) {
	j, ok := t.ColumnIndex(TotalDepth)
	if !ok {
		return t, errors.DegradedField(TotalDepth, "depth filter skipped")
	}
	return t.Filter(func(row table.Row) bool {
		return row[j].IsNumeric() && row[j].Float() > threshold
	}), nil
}
