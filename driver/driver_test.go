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

package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/exascience/mucor/config"
	"github.com/exascience/mucor/delim"
	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/jsonl"
	"github.com/exascience/mucor/pivot"
	"github.com/exascience/mucor/table"
)

const calls = `{"sample":"A","CHROM":"1","POS":100,"REF":"C","ALT":"T","AF":0.5,"GENE":"X"}
{"sample":"B","CHROM":"1","POS":100,"REF":"C","ALT":"T","AF":0.3,"GENE":"X"}

{"sample":"A","CHROM":"2","POS":5,"REF":"G","ALT":"A","AF":1.0}
`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	cfg, err := config.LoadWithViper(config.New())
	require.NoError(t, err)
	cfg.Input = input
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	return cfg
}

func readTable(t *testing.T, path string) *table.Table {
	t.Helper()
	tbl, err := delim.ReadFile(path)
	require.NoError(t, err)
	return tbl
}

func TestRunWritesPivotTables(t *testing.T) {
	cfg := testConfig(t, writeInput(t, "calls.jsonl", calls))
	cfg.ExtraColumns = []string{"GENE", "CLNSIG"}

	summary, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.InputRows)
	assert.Equal(t, 3, summary.MasterRows)
	assert.Equal(t, 2, summary.Variants)
	assert.Equal(t, []string{"A", "B"}, summary.Samples)
	assert.Equal(t, []string{"GENE"}, summary.Extras)
	// CLNSIG is not in the input, and Total_depth cannot be derived
	assert.Len(t, summary.Warnings, 2)
	require.Len(t, summary.Pivots, 1)
	assert.Equal(t, "AF", summary.Pivots[0].Value)
	assert.Equal(t, 2, summary.Pivots[0].Rows)
	assert.Equal(t, 2, summary.Pivots[0].SamplesWithEvidence)

	af := readTable(t, cfg.OutputPath("AF"))
	assert.Equal(t, []string{
		"CHROM", "POS", "REF", "ALT", "GENE", pivot.PositiveResults, pivot.PositiveRate, "A", "B",
	}, af.Columns())
	require.Equal(t, 2, af.NumRows())

	assert.Equal(t, table.IntCell(1), af.Get(0, "CHROM"))
	assert.Equal(t, table.StringCell("X"), af.Get(0, "GENE"))
	assert.Equal(t, table.FloatCell(0.5), af.Get(0, "A"))
	assert.Equal(t, table.FloatCell(0.3), af.Get(0, "B"))
	assert.Equal(t, table.IntCell(2), af.Get(0, pivot.PositiveResults))
	assert.Equal(t, table.FloatCell(1), af.Get(0, pivot.PositiveRate))

	assert.Equal(t, table.IntCell(2), af.Get(1, "CHROM"))
	assert.Equal(t, table.StringCell("."), af.Get(1, "GENE"))
	assert.Equal(t, table.StringCell("."), af.Get(1, "B"))
	assert.Equal(t, table.IntCell(1), af.Get(1, pivot.PositiveResults))
	assert.Equal(t, table.FloatCell(0.5), af.Get(1, pivot.PositiveRate))

	master := readTable(t, cfg.OutputPath(MasterTable))
	assert.Equal(t, []string{"sample", "CHROM", "POS", "REF", "ALT", "GENE"}, master.Columns()[:6])
	assert.Equal(t, 3, master.NumRows())

	variants := readTable(t, cfg.OutputPath(VariantsTable))
	require.Equal(t, 2, variants.NumRows())
	assert.Equal(t, "sample", variants.Columns()[0])
	assert.Equal(t, table.StringCell("A;B"), variants.Get(0, "sample"))

	for _, name := range []string{MasterRecords, MergedRecords, UniqueMergedRecords} {
		assert.NoFileExists(t, filepath.Join(cfg.OutputDir, name))
	}
}

func TestRunMergesCallers(t *testing.T) {
	input := writeInput(t, "calls.jsonl", strings.Join([]string{
		`{"sample":"A","CHROM":"1","POS":100,"REF":"C","ALT":"T","AF":0.5,"caller":"gatk","ANN_effect":["x"]}`,
		`{"sample":"A","CHROM":"1","POS":100,"REF":"C","ALT":"T","AF":0.25,"caller":"varscan","ANN_effect":["y"]}`,
		`{"sample":"B","CHROM":"1","POS":100,"REF":"C","ALT":"T","AF":0.3,"caller":"gatk","ANN_effect":["x"]}`,
	}, "\n"))
	cfg := testConfig(t, input)
	cfg.Pivot.AggFunc = "mean"

	summary, err := Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.InputRows)
	assert.Equal(t, 2, summary.MasterRows)
	assert.Equal(t, 1, summary.Variants)

	master := readTable(t, cfg.OutputPath(MasterTable))
	require.Equal(t, 2, master.NumRows())
	assert.Equal(t, "x;y", master.Get(0, "ANN_effect").String())
	assert.Equal(t, "gatk;varscan", master.Get(0, "caller").String())
	assert.Equal(t, "0.5;0.25", master.Get(0, "AF").String())
	assert.Equal(t, "x", master.Get(1, "ANN_effect").String())

	af := readTable(t, cfg.OutputPath("AF"))
	require.Equal(t, 1, af.NumRows())
	assert.InDelta(t, 0.375, af.Get(0, "A").Float(), 1e-12)
	assert.InDelta(t, 0.3, af.Get(0, "B").Float(), 1e-12)
}

func TestRunDepthPivot(t *testing.T) {
	input := writeInput(t, "calls.jsonl", strings.Join([]string{
		`{"sample":"A","CHROM":"1","POS":7,"REF":"C","ALT":"T","AF":0.5,"Ref_Depth":10,"Alt_depths":[3,2]}`,
		`{"sample":"B","CHROM":"1","POS":7,"REF":"C","ALT":"T","AF":0.2,"Ref_Depth":4,"Alt_depths":[1]}`,
	}, "\n"))
	cfg := testConfig(t, input)

	summary, err := Run(cfg)
	require.NoError(t, err)
	assert.Empty(t, summary.Warnings)
	assert.Contains(t, summary.Derived, "Total_depth")
	require.Len(t, summary.Pivots, 2)
	assert.Equal(t, "Total_depth", summary.Pivots[1].Value)

	dp := readTable(t, cfg.OutputPath("DP"))
	require.Equal(t, 1, dp.NumRows())
	assert.Equal(t, table.IntCell(15), dp.Get(0, "A"))
	assert.Equal(t, table.IntCell(5), dp.Get(0, "B"))
}

func TestRunDepthFilter(t *testing.T) {
	input := writeInput(t, "calls.jsonl", strings.Join([]string{
		`{"sample":"A","CHROM":"1","POS":7,"REF":"C","ALT":"T","AF":0.5,"Ref_Depth":10,"Alt_depths":[3]}`,
		`{"sample":"B","CHROM":"1","POS":7,"REF":"C","ALT":"T","AF":0.2,"Ref_Depth":1,"Alt_depths":[1]}`,
	}, "\n"))
	cfg := testConfig(t, input)
	cfg.DepthFilter.Enabled = true
	cfg.DepthFilter.Threshold = 5

	summary, err := Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.InputRows)
	assert.Equal(t, 1, summary.KeptRows)

	af := readTable(t, cfg.OutputPath("AF"))
	require.Equal(t, 1, af.NumRows())
	// B is still a column: every sample of the input is expected
	assert.Equal(t, table.StringCell("."), af.Get(0, "B"))
	assert.Equal(t, table.FloatCell(0.5), af.Get(0, pivot.PositiveRate))
}

func TestRunMissingRequiredColumns(t *testing.T) {
	input := writeInput(t, "calls.jsonl", `{"sample":"A","CHROM":"1","POS":100,"AF":0.5}`+"\n")
	cfg := testConfig(t, input)

	_, err := Run(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingColumn))
	assert.Contains(t, err.Error(), "REF, ALT")
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestRunMissingValueColumn(t *testing.T) {
	input := writeInput(t, "calls.jsonl", `{"sample":"A","CHROM":"1","POS":100,"REF":"C","ALT":"T"}`+"\n")
	cfg := testConfig(t, input)

	_, err := Run(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingColumn))
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestRunInvalidConfiguration(t *testing.T) {
	cfg := testConfig(t, writeInput(t, "calls.jsonl", calls))
	cfg.Pivot.AggFunc = "median"

	_, err := Run(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingConfiguration))
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestRunEmptyInput(t *testing.T) {
	cfg := testConfig(t, writeInput(t, "calls.jsonl", ""))

	summary, err := Run(cfg)
	require.NoError(t, err)
	assert.Zero(t, summary.InputRows)
	assert.Empty(t, summary.Samples)

	for _, name := range []string{MasterTable, VariantsTable} {
		tbl := readTable(t, cfg.OutputPath(name))
		assert.Zero(t, tbl.NumRows())
		assert.Equal(t, []string{"sample", "CHROM", "POS", "REF", "ALT"}, tbl.Columns()[:5])
	}
	af := readTable(t, cfg.OutputPath("AF"))
	assert.Zero(t, af.NumRows())
	assert.Equal(t, []string{
		"CHROM", "POS", "REF", "ALT", pivot.PositiveResults, pivot.PositiveRate,
	}, af.Columns())
	assert.NoFileExists(t, cfg.OutputPath("DP"))
}

func TestRunKeepIntermediate(t *testing.T) {
	input := writeInput(t, "calls.jsonl", strings.Join([]string{
		`{"sample":"A","CHROM":"1","POS":7,"REF":"C","ALT":"T","AF":0.5,"caller":"vardict","ANN_effect":["x"]}`,
		`{"sample":"A","CHROM":"1","POS":7,"REF":"C","ALT":"T","AF":0.5,"caller":"mutect","ANN_effect":["x"]}`,
	}, "\n"))
	cfg := testConfig(t, input)
	cfg.Output.KeepIntermediate = true

	summary, err := Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.KeptRows)
	assert.Equal(t, 1, summary.MasterRows)

	master, err := jsonl.ReadFile(filepath.Join(cfg.OutputDir, MasterRecords))
	require.NoError(t, err)
	assert.Equal(t, 2, master.NumRows())

	merged, err := jsonl.ReadFile(filepath.Join(cfg.OutputDir, MergedRecords))
	require.NoError(t, err)
	require.Equal(t, 1, merged.NumRows())
	assert.Equal(t, table.StringCell("vardict;mutect"), merged.Get(0, "caller"))
	assert.Equal(t, table.ListCell(table.StringCell("x"), table.StringCell("x")), merged.Get(0, "ANN_effect"))

	unique, err := jsonl.ReadFile(filepath.Join(cfg.OutputDir, UniqueMergedRecords))
	require.NoError(t, err)
	require.Equal(t, 1, unique.NumRows())
	assert.Equal(t, table.ListCell(table.StringCell("mutect"), table.StringCell("vardict")), unique.Get(0, "caller"))
	assert.Equal(t, table.StringCell("x"), unique.Get(0, "ANN_effect"))
}

func TestRunFromTSV(t *testing.T) {
	input := writeInput(t, "calls.tsv", "sample\tCHROM\tPOS\tREF\tALT\tAF\n"+
		"A\t1\t100\tC\tT\t0.5\n"+
		"B\t1\t100\tC\tT\t0.25\n")
	cfg := testConfig(t, input)
	cfg.FromTSV = true

	summary, err := Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, summary.Samples)

	af := readTable(t, cfg.OutputPath("AF"))
	require.Equal(t, 1, af.NumRows())
	assert.Equal(t, table.FloatCell(0.25), af.Get(0, "B"))
}

func TestRunSummaryFile(t *testing.T) {
	cfg := testConfig(t, writeInput(t, "calls.jsonl", calls))

	summary, err := Run(cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, SummaryFile))
	require.NoError(t, err)
	var written Summary
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, summary.RunID, written.RunID)
	assert.NotEmpty(t, written.RunID)
	assert.Equal(t, summary.Samples, written.Samples)
	assert.Equal(t, summary.Pivots, written.Pivots)
	assert.Equal(t, summary.Outputs, written.Outputs)
	for _, out := range written.Outputs {
		assert.FileExists(t, out)
	}
}
