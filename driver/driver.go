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

// Package driver runs the full aggregation of a variant call dataset:
// derived columns, optional depth filter, merges, master and variant
// tables, and one pivot table per configured value column.
package driver

import (
	"io"
	"path/filepath"
	"time"

	"github.com/exascience/pargo/parallel"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/exascience/mucor/config"
	"github.com/exascience/mucor/delim"
	"github.com/exascience/mucor/derive"
	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/internal"
	"github.com/exascience/mucor/jsonl"
	"github.com/exascience/mucor/logger"
	"github.com/exascience/mucor/merge"
	"github.com/exascience/mucor/pivot"
	"github.com/exascience/mucor/table"
	"github.com/exascience/mucor/utils"
)

// Names of the files a run writes into the output directory.
const (
	MasterTable         = "master"
	VariantsTable       = "Variants"
	SummaryFile         = "summary.yaml"
	MasterRecords       = "__master.jsonl"
	MergedRecords       = "__merge_sample.jsonl"
	UniqueMergedRecords = "__merge_sample_u.jsonl"
)

// PivotSummary describes one written pivot table.
type PivotSummary struct {
	Value               string `yaml:"value"`
	File                string `yaml:"file"`
	Rows                int    `yaml:"rows"`
	SamplesWithEvidence int    `yaml:"samples_with_evidence"`
}

// Summary describes a completed run. It is written to summary.yaml.
type Summary struct {
	RunID      string         `yaml:"run_id"`
	Program    string         `yaml:"program"`
	Version    string         `yaml:"version"`
	Input      string         `yaml:"input"`
	OutputDir  string         `yaml:"output_dir"`
	Started    time.Time      `yaml:"started"`
	Elapsed    string         `yaml:"elapsed"`
	InputRows  int            `yaml:"input_rows"`
	KeptRows   int            `yaml:"kept_rows"`
	MasterRows int            `yaml:"master_rows"`
	Variants   int            `yaml:"variants"`
	Samples    []string       `yaml:"samples"`
	Derived    []string       `yaml:"derived_columns,omitempty"`
	Extras     []string       `yaml:"extra_columns,omitempty"`
	Pivots     []PivotSummary `yaml:"pivots"`
	Outputs    []string       `yaml:"outputs"`
	Warnings   []string       `yaml:"warnings,omitempty"`
}

// A Driver runs the pipeline for one configuration. A Driver must not
// be reused for several runs.
type Driver struct {
	cfg      *config.Config
	runID    uuid.UUID
	log      *zap.SugaredLogger
	warnings errors.Warnings

	// Timed logs the elapsed time of every phase.
	Timed bool
}

// New returns a driver for the given configuration.
func New(cfg *config.Config) *Driver {
	runID := uuid.New()
	return &Driver{
		cfg:   cfg,
		runID: runID,
		log:   logger.ChildLogger(logger.ComponentLogger("driver"), logger.FieldRunID, runID.String()),
	}
}

// Run runs the pipeline with the given configuration.
func Run(cfg *config.Config) (*Summary, error) {
	return New(cfg).Run()
}

func (d *Driver) warn(column string, err error) {
	d.log.Warnw("continuing without optional input", logger.FieldColumn, column, logger.FieldError, err.Error())
	d.warnings.Add(err)
}

func (d *Driver) phase(msg string, f func() error) error {
	return internal.Timed(d.log, d.Timed, msg, f)
}

// Run executes the pipeline. Configuration errors and missing required
// columns are reported before any output file is written. Missing
// optional columns are logged, listed in the summary, and do not stop
// the run.
func (d *Driver) Run() (*Summary, error) {
	cfg := d.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	aggregator, _ := cfg.Aggregator()
	orderedOpts, _ := cfg.MergeOptions()
	uniqueOpts := orderedOpts
	uniqueOpts.Mode = merge.Unique
	fill := table.StringCell(cfg.Pivot.FillValue)

	start := time.Now()
	summary := &Summary{
		RunID:     d.runID.String(),
		Program:   utils.ProgramName,
		Version:   utils.ProgramVersion,
		Input:     cfg.Input,
		OutputDir: cfg.OutputDir,
		Started:   start.UTC().Truncate(time.Second),
	}

	if full, err := internal.FullPathname(cfg.OutputDir); err == nil {
		summary.OutputDir = full
	}

	var calls *table.Table
	if err := d.phase("Loading input", func() (err error) {
		calls, err = d.load()
		return err
	}); err != nil {
		return nil, err
	}
	summary.InputRows = calls.NumRows()

	values, err := d.pivotValues(calls)
	if err != nil {
		return nil, err
	}

	calls, summary.Derived = derive.Apply(calls, cfg.Sources())
	d.log.Debugw("derived columns", logger.FieldColumns, summary.Derived)

	for _, s := range calls.DistinctValues(cfg.SampleColumn) {
		summary.Samples = append(summary.Samples, s.String())
	}

	for _, col := range cfg.ExtraColumns {
		if calls.HasColumn(col) {
			summary.Extras = append(summary.Extras, col)
		} else {
			d.warn(col, errors.DegradedField(col, "extra column not in input"))
		}
	}

	if cfg.DepthFilter.Enabled {
		filtered, err := derive.DepthFilter(calls, cfg.DepthFilter.Threshold)
		if err != nil {
			d.warn(derive.TotalDepth, err)
		}
		calls = filtered
	}
	summary.KeptRows = calls.NumRows()

	callKey := cfg.CallKey()
	var sorted *table.Table
	if err := d.phase("Sorting", func() (err error) {
		leading := append(append([]string(nil), callKey...), summary.Extras...)
		sorted = calls.FillNull(fill, callKey...).Reorder(leading...)
		sorted, err = sorted.SortBy(callKey...)
		return err
	}); err != nil {
		return nil, err
	}

	var outputs []string
	write := func(path string, t *table.Table, w func(io.Writer) error) error {
		if err := internal.WriteOnce(path, w); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
		d.log.Infow("written", logger.FieldFile, path, logger.FieldTable, t.Name, logger.FieldRows, t.NumRows())
		outputs = append(outputs, path)
		return nil
	}
	writeRecords := func(name string, t *table.Table) error {
		return write(filepath.Join(cfg.OutputDir, name), t, func(w io.Writer) error {
			return jsonl.Write(w, t)
		})
	}
	writeTable := func(name string, t *table.Table) error {
		return write(cfg.OutputPath(name), t, func(w io.Writer) error {
			return delim.Write(w, t, cfg.WriteOptions())
		})
	}

	if cfg.Output.KeepIntermediate {
		if err := writeRecords(MasterRecords, sorted); err != nil {
			return nil, err
		}
	}

	merged := sorted
	if cfg.Merge.Enabled {
		if err := d.phase("Merging calls", func() (err error) {
			merged, err = merge.Merge(sorted, callKey, orderedOpts)
			if err != nil || !cfg.Output.KeepIntermediate {
				return err
			}
			if err = writeRecords(MergedRecords, merged); err != nil {
				return err
			}
			unique, err := merge.Merge(sorted, callKey, uniqueOpts)
			if err != nil {
				return err
			}
			return writeRecords(UniqueMergedRecords, unique)
		}); err != nil {
			return nil, err
		}
	}
	summary.MasterRows = merged.NumRows()
	if err := writeTable(MasterTable, merged); err != nil {
		return nil, err
	}

	var condensed *table.Table
	if err := d.phase("Condensing variants", func() (err error) {
		condensed, err = merge.Merge(merged, cfg.VariantColumns, uniqueOpts)
		return err
	}); err != nil {
		return nil, err
	}
	summary.Variants = condensed.NumRows()
	if err := writeTable(VariantsTable, condensed.Reorder(callKey...)); err != nil {
		return nil, err
	}

	// The pivot passes only read merged and condensed.
	type pass struct {
		value   config.PivotValue
		output  string
		result  *table.Table
		summary PivotSummary
		err     error
	}
	passes := make([]*pass, len(values))
	thunks := make([]func(), len(values))
	for i, v := range values {
		p := &pass{value: v.value, output: v.output}
		passes[i] = p
		thunks[i] = func() {
			p.result, p.summary, p.err = d.pivotPass(merged, condensed, p.value.Column, aggregator, summary.Samples, summary.Extras)
		}
	}
	if err := d.phase("Pivoting", func() error {
		parallel.Do(thunks...)
		for _, p := range passes {
			if p.err != nil {
				return errors.Wrapf(p.err, "pivot on %s", p.value.Column)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	for _, p := range passes {
		if err := writeTable(p.output, p.result); err != nil {
			return nil, err
		}
		p.summary.File = cfg.OutputPath(p.output)
		summary.Pivots = append(summary.Pivots, p.summary)
	}

	summary.Warnings = d.warnings.Strings()
	summary.Elapsed = time.Since(start).Round(time.Millisecond).String()
	summary.Outputs = append(outputs, filepath.Join(cfg.OutputDir, SummaryFile))
	if err := internal.WriteOnce(filepath.Join(cfg.OutputDir, SummaryFile), func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return err
		}
		return enc.Close()
	}); err != nil {
		return nil, errors.Wrap(err, "writing run summary")
	}
	if n := d.warnings.Len(); n > 0 {
		d.log.Warnw("run completed with warnings", "count", n)
	} else {
		d.log.Infow("run completed", logger.FieldRows, summary.MasterRows)
	}
	return summary, nil
}

// load reads the input and checks the required columns. An empty input
// gives an empty table with the required columns.
func (d *Driver) load() (*table.Table, error) {
	cfg := d.cfg
	var (
		calls *table.Table
		err   error
	)
	if cfg.FromTSV {
		calls, err = delim.ReadFile(cfg.Input)
	} else {
		calls, err = jsonl.ReadFile(cfg.Input)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", cfg.Input)
	}
	calls.Name = filepath.Base(cfg.Input)
	if calls.NumRows() == 0 {
		d.log.Warnw("empty input", logger.FieldFile, cfg.Input)
		return calls.EnsureColumns(cfg.Required()...), nil
	}
	if err := calls.Require(cfg.Required()...); err != nil {
		return nil, err
	}
	d.log.Infow("loaded", logger.FieldFile, cfg.Input, logger.FieldRows, calls.NumRows(), logger.FieldColumns, calls.NumColumns())
	return calls, nil
}

type pivotValue struct {
	value  config.PivotValue
	output string
}

// pivotValues returns the pivot value columns that can be computed.
// Derived value columns are accepted when their sources are present.
// A missing optional value column is a warning, a missing required one
// an error.
func (d *Driver) pivotValues(calls *table.Table) ([]pivotValue, error) {
	cfg := d.cfg
	derived, _ := derive.Apply(table.New(calls.Name, calls.Columns()...), cfg.Sources())
	var (
		result  []pivotValue
		missing []string
	)
	for i, v := range cfg.Pivot.Values {
		switch {
		case derived.HasColumn(v.Column):
			result = append(result, pivotValue{value: v, output: cfg.PivotOutput(i)})
		case calls.NumRows() == 0:
			if !v.Optional {
				result = append(result, pivotValue{value: v, output: cfg.PivotOutput(i)})
			}
		case v.Optional:
			d.warn(v.Column, errors.DegradedField(v.Column, "pivot value column not in input"))
		default:
			missing = append(missing, v.Column)
		}
	}
	if len(missing) > 0 {
		return nil, errors.MissingColumns(calls.Name, missing...)
	}
	return result, nil
}

// pivotPass pivots one value column over the samples and reattaches the
// extra columns.
func (d *Driver) pivotPass(
	merged, condensed *table.Table,
	value string,
	aggregator pivot.Aggregator,
	samples, extras []string,
) (*table.Table, PivotSummary, error) {
	cfg := d.cfg
	summary := PivotSummary{Value: value}
	pivoted, err := pivot.Pivot(merged.EnsureColumns(value), pivot.Options{
		Index:      cfg.VariantColumns,
		On:         []string{cfg.SampleColumn},
		Values:     []string{value},
		Aggregator: aggregator,
		FillValue:  cfg.Pivot.FillValue,
		Expected:   samples,
		Separator:  cfg.Merge.Delimiter,
	})
	if err != nil {
		return nil, summary, err
	}
	evidence := pivot.Evidence(pivoted, samples, cfg.Pivot.FillValue)
	summary.SamplesWithEvidence = int(pivot.Coverage(evidence, len(samples)).Count())

	result, err := pivot.Reattach(condensed, pivoted, cfg.VariantColumns, extras, cfg.Pivot.FillValue)
	if err != nil {
		return nil, summary, err
	}
	summary.Rows = result.NumRows()
	return result, summary, nil
}
