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

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/exascience/mucor/config"
	"github.com/exascience/mucor/merge"
	"github.com/exascience/mucor/pivot"
	"github.com/exascience/mucor/remap"
	"github.com/exascience/mucor/table"
)

// ioCommand returns a command that reads one table, transforms it, and
// writes the result. The file formats follow the file extensions:
// .jsonl, .json and .ndjson are JSON lines, .csv is comma separated,
// and anything else is tab separated. The name "-" stands for JSON
// lines on standard input or output.
func ioCommand(
	v *viper.Viper,
	use, short, long string,
	transform func(cmd *cobra.Command, cfg *config.Config, t *table.Table) (*table.Table, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " input-file output-file",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]
			if err := checkExist("input-file", input); err != nil {
				return err
			}
			if err := checkCreate("output-file", output); err != nil {
				return err
			}
			cfg, err := config.LoadWithViper(v)
			if err != nil {
				return err
			}
			t, err := readTable(input)
			if err != nil {
				return err
			}
			if t, err = transform(cmd, cfg, t); err != nil {
				return err
			}
			return writeTable(output, t, cfg.WriteOptions())
		},
	}
}

func newMergeCommand(v *viper.Viper) *cobra.Command {
	cmd := ioCommand(v, "merge",
		"Merge rows that share a key",
		`Merge collapses the rows that share the key columns into one row.
The key defaults to the sample column followed by the variant
columns.`,
		func(cmd *cobra.Command, cfg *config.Config, t *table.Table) (*table.Table, error) {
			keys, _ := cmd.Flags().GetStringSlice("key")
			if len(keys) == 0 {
				keys = cfg.CallKey()
			}
			opts, err := cfg.MergeOptions()
			if err != nil {
				return nil, err
			}
			return merge.Merge(t, keys, opts)
		})
	flags := cmd.Flags()
	flags.StringSlice("key", nil, "the key columns")
	flags.String("mode", "", "the merge mode: ordered, unique or concat")
	flags.String("delimiter", "", "joins distinct values")
	flags.String("pattern", "", "selects the annotation columns that are kept as ordered lists")
	bindOnRun(v, cmd,
		"merge.mode", "mode",
		"merge.delimiter", "delimiter",
		"merge.multi_valued_pattern", "pattern",
	)
	return cmd
}

func newPivotCommand(v *viper.Viper) *cobra.Command {
	cmd := ioCommand(v, "pivot",
		"Pivot a table",
		`Pivot writes one row per distinct index and one column per distinct
value of the pivot-on columns, followed by the Positive results and
Positive rate metrics. The index defaults to the variant columns, the
pivot-on column to the sample column, and the value to the first
configured value column.`,
		func(cmd *cobra.Command, cfg *config.Config, t *table.Table) (*table.Table, error) {
			flags := cmd.Flags()
			index, _ := flags.GetStringSlice("index")
			if len(index) == 0 {
				index = cfg.VariantColumns
			}
			on, _ := flags.GetStringSlice("on")
			if len(on) == 0 {
				on = []string{cfg.SampleColumn}
			}
			values, _ := flags.GetStringSlice("values")
			if len(values) == 0 && len(cfg.Pivot.Values) > 0 {
				values = []string{cfg.Pivot.Values[0].Column}
			}
			expected, _ := flags.GetStringSlice("expected")
			aggregator, err := cfg.Aggregator()
			if err != nil {
				return nil, err
			}
			return pivot.Pivot(t, pivot.Options{
				Index:      index,
				On:         on,
				Values:     values,
				Aggregator: aggregator,
				FillValue:  cfg.Pivot.FillValue,
				Expected:   expected,
				Separator:  cfg.Merge.Delimiter,
			})
		})
	flags := cmd.Flags()
	flags.StringSlice("index", nil, "the columns that identify an output row")
	flags.StringSlice("on", nil, "the columns whose values become output columns")
	flags.StringSlice("values", nil, "the columns that are aggregated into the output cells")
	flags.StringSlice("expected", nil, "output columns that must be present")
	flags.String("fill-value", "", "the value of absent cells")
	flags.String("agg-func", "", "the aggregator: string_agg, mean, sum or first")
	bindOnRun(v, cmd,
		"pivot.fill_value", "fill-value",
		"pivot.agg_func", "agg-func",
	)
	return cmd
}

func newConvertCommand(v *viper.Viper) *cobra.Command {
	cmd := ioCommand(v, "convert",
		"Convert between JSON lines and delimited files",
		`Convert reads a table and writes it in the format of the output file
extension. The columns given with --columns come first, in the given
order.`,
		func(cmd *cobra.Command, _ *config.Config, t *table.Table) (*table.Table, error) {
			leading, _ := cmd.Flags().GetStringSlice("columns")
			if err := t.Require(leading...); err != nil {
				return nil, err
			}
			return t.Reorder(leading...), nil
		})
	cmd.Flags().StringSlice("columns", nil, "the leading columns of the output")
	return cmd
}

func addMappingFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("datasheet", "", "the table that holds the mapping")
	flags.String("map", "", "the datasheet columns to map from and to, as from=to")
	_ = cmd.MarkFlagRequired("datasheet")
	_ = cmd.MarkFlagRequired("map")
}

func loadMapping(cmd *cobra.Command) (*remap.Mapping, error) {
	datasheet, _ := cmd.Flags().GetString("datasheet")
	pair, _ := cmd.Flags().GetString("map")
	from, to, err := remap.ParsePair(pair)
	if err != nil {
		return nil, err
	}
	if err := checkExist("--datasheet", datasheet); err != nil {
		return nil, err
	}
	sheet, err := readTable(datasheet)
	if err != nil {
		return nil, err
	}
	return remap.Load(sheet, from, to)
}

func newRenameKeysCommand(v *viper.Viper) *cobra.Command {
	cmd := ioCommand(v, "rename-keys",
		"Rename fields using a datasheet",
		`Rename-keys renames the fields whose name occurs in the from column
of the datasheet to the corresponding value of the to column.`,
		func(cmd *cobra.Command, _ *config.Config, t *table.Table) (*table.Table, error) {
			m, err := loadMapping(cmd)
			if err != nil {
				return nil, err
			}
			return m.RenameColumns(t), nil
		})
	addMappingFlags(cmd)
	return cmd
}

func newRemapValuesCommand(v *viper.Viper) *cobra.Command {
	cmd := ioCommand(v, "remap-values",
		"Replace the values of a field using a datasheet",
		`Remap-values replaces the values of a field that occur in the from
column of the datasheet by the corresponding value of the to column.
Rows with other values are kept unchanged.`,
		func(cmd *cobra.Command, cfg *config.Config, t *table.Table) (*table.Table, error) {
			m, err := loadMapping(cmd)
			if err != nil {
				return nil, err
			}
			field, _ := cmd.Flags().GetString("field")
			if field == "" {
				field = cfg.SampleColumn
			}
			return m.ReplaceValues(t, field)
		})
	addMappingFlags(cmd)
	cmd.Flags().String("field", "", "the field whose values are replaced, by default the sample column")
	return cmd
}
