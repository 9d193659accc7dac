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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/merge"
	"github.com/exascience/mucor/pivot"
)

func defaults(t *testing.T) *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	cfg.Input = "calls.jsonl"
	cfg.OutputDir = "out"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := defaults(t)
	assert.Equal(t, "sample", cfg.SampleColumn)
	assert.Equal(t, []string{"CHROM", "POS", "REF", "ALT"}, cfg.VariantColumns)
	assert.Equal(t, []string{"sample", "CHROM", "POS", "REF", "ALT"}, cfg.Required())
	assert.Equal(t, []string{"sample", "CHROM", "POS", "REF", "ALT"}, cfg.CallKey())
	require.Len(t, cfg.Pivot.Values, 2)
	assert.Equal(t, PivotValue{Column: "AF", Output: "AF"}, cfg.Pivot.Values[0])
	assert.Equal(t, PivotValue{Column: "Total_depth", Output: "DP", Optional: true}, cfg.Pivot.Values[1])
	assert.Equal(t, ".", cfg.Pivot.FillValue)
	assert.True(t, cfg.Merge.Enabled)
	assert.Equal(t, "\t", cfg.Output.Delimiter)
	assert.Equal(t, 32767, cfg.Output.MaxCellLength)
	assert.Equal(t, filepath.Join("out", "AF.tsv"), cfg.OutputPath("AF"))
	assert.NoError(t, cfg.Validate())

	agg, err := cfg.Aggregator()
	require.NoError(t, err)
	assert.Equal(t, pivot.UniqueStringJoin, agg)

	opts, err := cfg.MergeOptions()
	require.NoError(t, err)
	assert.Equal(t, merge.Ordered, opts.Mode)
	assert.True(t, opts.MultiValued.MatchString("ANN_effect"))

	w := cfg.WriteOptions()
	assert.Equal(t, '\t', w.Comma)
	assert.Equal(t, ".", w.NullValue)
	assert.Equal(t, ";", w.ListSeparator)

	cfg.Merge.Delimiter = "|"
	assert.Equal(t, "|", cfg.WriteOptions().ListSeparator)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no input", func(c *Config) { c.Input = "" }},
		{"no output directory", func(c *Config) { c.OutputDir = "" }},
		{"no sample column", func(c *Config) { c.SampleColumn = "" }},
		{"no variant columns", func(c *Config) { c.VariantColumns = nil }},
		{"no pivot values", func(c *Config) { c.Pivot.Values = nil }},
		{"unnamed pivot value", func(c *Config) { c.Pivot.Values[0].Column = "" }},
		{"duplicate pivot output", func(c *Config) { c.Pivot.Values[1].Output = "AF" }},
		{"unknown aggregator", func(c *Config) { c.Pivot.AggFunc = "eval" }},
		{"unknown merge mode", func(c *Config) { c.Merge.Mode = "zip" }},
		{"invalid pattern", func(c *Config) { c.Merge.MultiValuedPattern = "(" }},
		{"negative threshold", func(c *Config) { c.DepthFilter.Threshold = -1 }},
		{"long delimiter", func(c *Config) { c.Output.Delimiter = "||" }},
		{"negative cell length", func(c *Config) { c.Output.MaxCellLength = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults(t)
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrMissingConfiguration), err.Error())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mucor.yaml")
	content := `input: calls.jsonl
output_dir: results
extra_columns: [ANN_gene_name, EFFECT]
pivot:
  agg_func: mean
  values:
    - column: VAF
      output: VAF
merge:
  mode: unique
depth_filter:
  enabled: true
  threshold: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "results", cfg.OutputDir)
	assert.Equal(t, []string{"ANN_gene_name", "EFFECT"}, cfg.ExtraColumns)
	assert.Equal(t, []PivotValue{{Column: "VAF", Output: "VAF"}}, cfg.Pivot.Values)
	assert.Equal(t, "mean", cfg.Pivot.AggFunc)
	assert.Equal(t, ".", cfg.Pivot.FillValue)
	assert.Equal(t, "unique", cfg.Merge.Mode)
	assert.True(t, cfg.DepthFilter.Enabled)
	assert.Equal(t, 10.0, cfg.DepthFilter.Threshold)
	assert.NoError(t, cfg.Validate())

	_, err = LoadFromFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MUCOR_PIVOT_FILL_VALUE", "NA")
	t.Setenv("MUCOR_OUTPUT_EXTENSION", ".csv")
	cfg, err := LoadWithViper(New())
	require.NoError(t, err)
	assert.Equal(t, "NA", cfg.Pivot.FillValue)
	assert.Equal(t, ".csv", cfg.Output.Extension)
}
