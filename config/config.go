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

// Package config holds the run configuration of mucor, its defaults,
// and its loading from files, environment variables and flags.
package config

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/exascience/mucor/delim"
	"github.com/exascience/mucor/derive"
	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/merge"
	"github.com/exascience/mucor/pivot"
)

// EnvPrefix prefixes the environment variables that override
// configuration keys, for example MUCOR_PIVOT_FILL_VALUE.
const EnvPrefix = "MUCOR"

// Config is the configuration of a pipeline run.
type Config struct {
	Input     string `mapstructure:"input"`
	OutputDir string `mapstructure:"output_dir"`
	FromTSV   bool   `mapstructure:"from_tsv"`

	// The sample column and the variant columns identify a call. They
	// are always required; RequiredColumns lists further columns the
	// input must have.
	SampleColumn    string   `mapstructure:"sample_column"`
	VariantColumns  []string `mapstructure:"variant_columns"`
	RequiredColumns []string `mapstructure:"required_columns"`
	ExtraColumns    []string `mapstructure:"extra_columns"`

	Pivot       PivotConfig       `mapstructure:"pivot"`
	Merge       MergeConfig       `mapstructure:"merge"`
	DepthFilter DepthFilterConfig `mapstructure:"depth_filter"`
	Derive      DeriveConfig      `mapstructure:"derive"`
	Output      OutputConfig      `mapstructure:"output"`
	Log         LogConfig         `mapstructure:"log"`
}

// PivotValue names a value column to pivot and the base name of the
// resulting table.
type PivotValue struct {
	Column   string `mapstructure:"column"`
	Output   string `mapstructure:"output"`
	Optional bool   `mapstructure:"optional"`
}

// PivotConfig configures the pivot tables.
type PivotConfig struct {
	Values    []PivotValue `mapstructure:"values"`
	FillValue string       `mapstructure:"fill_value"`
	AggFunc   string       `mapstructure:"agg_func"`
}

// MergeConfig configures the row merges.
type MergeConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Mode               string `mapstructure:"mode"`
	Delimiter          string `mapstructure:"delimiter"`
	MultiValuedPattern string `mapstructure:"multi_valued_pattern"`
}

// DepthFilterConfig configures the read depth filter.
type DepthFilterConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Threshold float64 `mapstructure:"threshold"`
}

// DeriveConfig names the source columns of the derived columns.
type DeriveConfig struct {
	RefDepth   string `mapstructure:"ref_depth"`
	AltDepths  string `mapstructure:"alt_depths"`
	Scores     string `mapstructure:"scores"`
	Change     string `mapstructure:"change"`
	EffectName string `mapstructure:"effect_name"`
}

// OutputConfig configures the output files.
type OutputConfig struct {
	Delimiter        string `mapstructure:"delimiter"`
	Extension        string `mapstructure:"extension"`
	MaxCellLength    int    `mapstructure:"max_cell_length"`
	KeepIntermediate bool   `mapstructure:"keep_intermediate"`
}

// LogConfig configures logging.
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sample_column", "sample")
	v.SetDefault("variant_columns", []string{"CHROM", "POS", "REF", "ALT"})
	v.SetDefault("required_columns", []string{})
	v.SetDefault("extra_columns", []string{})

	v.SetDefault("pivot.values", []map[string]interface{}{
		{"column": "AF", "output": "AF"},
		{"column": derive.TotalDepth, "output": "DP", "optional": true},
	})
	v.SetDefault("pivot.fill_value", pivot.DefaultFillValue)
	v.SetDefault("pivot.agg_func", "string_agg")

	v.SetDefault("merge.enabled", true)
	v.SetDefault("merge.mode", "ordered")
	v.SetDefault("merge.delimiter", merge.DefaultDelimiter)
	v.SetDefault("merge.multi_valued_pattern", merge.DefaultMultiValuedPattern)

	v.SetDefault("depth_filter.enabled", false)
	v.SetDefault("depth_filter.threshold", 0.0)

	src := derive.DefaultSources()
	v.SetDefault("derive.ref_depth", src.RefDepth)
	v.SetDefault("derive.alt_depths", src.AltDepths)
	v.SetDefault("derive.scores", src.Scores)
	v.SetDefault("derive.change", src.Change)
	v.SetDefault("derive.effect_name", src.EffectName)

	v.SetDefault("output.delimiter", "\t")
	v.SetDefault("output.extension", ".tsv")
	v.SetDefault("output.max_cell_length", delim.MaxCellLength)
	v.SetDefault("output.keep_intermediate", false)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
}

// New returns a viper instance with the defaults set and environment
// variable overrides enabled.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// LoadWithViper loads the configuration from a viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// ReadFile merges a configuration file into v. The format follows the
// file extension: TOML, YAML and JSON are supported.
func ReadFile(v *viper.Viper, configPath string) error {
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return nil
}

// LoadFromFile loads the configuration from a specific file, on top of
// the defaults and the environment.
func LoadFromFile(configPath string) (*Config, error) {
	v := New()
	if err := ReadFile(v, configPath); err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.MissingConfiguration("input", "no input file given")
	}
	if c.OutputDir == "" {
		return errors.MissingConfiguration("output_dir", "no output directory given")
	}
	if c.SampleColumn == "" {
		return errors.MissingConfiguration("sample_column", "")
	}
	if len(c.VariantColumns) == 0 {
		return errors.MissingConfiguration("variant_columns", "no variant key columns given")
	}
	if len(c.Pivot.Values) == 0 {
		return errors.MissingConfiguration("pivot.values", "no value columns given")
	}
	outputs := make(map[string]bool)
	for i, value := range c.Pivot.Values {
		if value.Column == "" {
			return errors.MissingConfiguration("pivot.values", "value column without a name")
		}
		name := c.PivotOutput(i)
		if outputs[name] {
			return errors.MissingConfiguration("pivot.values", "duplicate output "+name)
		}
		outputs[name] = true
	}
	if c.Pivot.FillValue == "" {
		return errors.MissingConfiguration("pivot.fill_value", "")
	}
	if _, err := c.Aggregator(); err != nil {
		return errors.Mark(err, errors.ErrMissingConfiguration)
	}
	if _, err := c.MergeOptions(); err != nil {
		return err
	}
	if c.DepthFilter.Threshold < 0 {
		return errors.MissingConfiguration("depth_filter.threshold", "must be >= 0")
	}
	if utf8.RuneCountInString(c.Output.Delimiter) != 1 {
		return errors.MissingConfiguration("output.delimiter", "must be a single character")
	}
	if c.Output.MaxCellLength < 0 {
		return errors.MissingConfiguration("output.max_cell_length", "must be >= 0")
	}
	return nil
}

// Required returns every column the input must have: the sample
// column, the variant columns, and the other required columns.
func (c *Config) Required() []string {
	result := make([]string, 0, 1+len(c.VariantColumns)+len(c.RequiredColumns))
	result = append(result, c.SampleColumn)
	result = append(result, c.VariantColumns...)
	return append(result, c.RequiredColumns...)
}

// CallKey returns the columns that identify a call: the sample column
// followed by the variant columns.
func (c *Config) CallKey() []string {
	return append([]string{c.SampleColumn}, c.VariantColumns...)
}

// PivotOutput returns the output base name of the i-th pivot value.
func (c *Config) PivotOutput(i int) string {
	if out := c.Pivot.Values[i].Output; out != "" {
		return out
	}
	return c.Pivot.Values[i].Column
}

// Aggregator returns the configured pivot aggregator.
func (c *Config) Aggregator() (pivot.Aggregator, error) {
	return pivot.ParseAggregator(c.Pivot.AggFunc)
}

// MergeOptions returns the configured merge options.
func (c *Config) MergeOptions() (merge.Options, error) {
	mode, err := merge.ParseMode(c.Merge.Mode)
	if err != nil {
		return merge.Options{}, err
	}
	opts := merge.Options{Mode: mode, Delimiter: c.Merge.Delimiter}
	if c.Merge.MultiValuedPattern != "" {
		re, err := regexp.Compile(c.Merge.MultiValuedPattern)
		if err != nil {
			return merge.Options{}, errors.MissingConfiguration("merge.multi_valued_pattern", err.Error())
		}
		opts.MultiValued = re
	}
	return opts, nil
}

// Sources returns the source columns of the derived columns.
func (c *Config) Sources() derive.Sources {
	return derive.Sources{
		RefDepth:   c.Derive.RefDepth,
		AltDepths:  c.Derive.AltDepths,
		Scores:     c.Derive.Scores,
		Change:     c.Derive.Change,
		EffectName: c.Derive.EffectName,
	}
}

// WriteOptions returns the options for the delimited output files.
func (c *Config) WriteOptions() delim.Options {
	opts := delim.TSV()
	if r, size := utf8.DecodeRuneInString(c.Output.Delimiter); size > 0 {
		opts.Comma = r
	}
	opts.NullValue = c.Pivot.FillValue
	if c.Merge.Delimiter != "" {
		opts.ListSeparator = c.Merge.Delimiter
	}
	opts.MaxCellLength = c.Output.MaxCellLength
	return opts
}

// OutputPath returns the path of an output file with the configured
// extension.
func (c *Config) OutputPath(base string) string {
	return filepath.Join(c.OutputDir, base+c.Output.Extension)
}
