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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/exascience/mucor/config"
	"github.com/exascience/mucor/driver"
)

func newRunCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run input-file output-dir",
		Short: "Run the full aggregation",
		Long: `Run reads variant calls from a JSON lines file (or a tab separated
file with --tsv) and writes master, Variants and one pivot table per
value column into output-dir, together with a summary.yaml that
describes the run.

Missing required columns stop the run before any output is written.
Missing extra columns and missing optional value columns are logged
and listed in the summary.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]
			if err := checkExist("input-file", input); err != nil {
				return err
			}
			if err := checkDirectory("output-dir", output); err != nil {
				return err
			}
			v.Set("input", input)
			v.Set("output_dir", output)
			if cmd.Flags().Changed("depth-threshold") {
				v.Set("depth_filter.enabled", true)
			}
			cfg, err := config.LoadWithViper(v)
			if err != nil {
				return err
			}
			d := driver.New(cfg)
			d.Timed = v.GetBool("timed")
			summary, err := d.Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d calls, %d variants, %d samples, %d warnings\n",
				summary.KeptRows, summary.Variants, len(summary.Samples), len(summary.Warnings))
			for _, out := range summary.Outputs {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Bool("tsv", false, "read a tab separated input file instead of JSON lines")
	flags.String("sample-column", "", "the column that names the sample of a call")
	flags.StringSlice("variant-columns", nil, "the columns that identify a variant")
	flags.StringSlice("required", nil, "further columns the input must have")
	flags.StringSlice("extra", nil, "descriptive columns to carry into the pivot tables")
	flags.String("fill-value", "", "the value of absent pivot cells")
	flags.String("agg-func", "", "the pivot aggregator: string_agg, mean, sum or first")
	flags.Bool("merge", true, "merge the calls of a sample at the same variant")
	flags.String("merge-mode", "", "the merge mode: ordered, unique or concat")
	flags.Float64("depth-threshold", 0, "drop calls whose total depth is not above threshold")
	flags.Bool("keep-intermediate", false, "also write the intermediate JSON lines files")
	bindOnRun(v, cmd,
		"from_tsv", "tsv",
		"sample_column", "sample-column",
		"variant_columns", "variant-columns",
		"required_columns", "required",
		"extra_columns", "extra",
		"pivot.fill_value", "fill-value",
		"pivot.agg_func", "agg-func",
		"merge.enabled", "merge",
		"merge.mode", "merge-mode",
		"depth_filter.threshold", "depth-threshold",
		"output.keep_intermediate", "keep-intermediate",
	)
	return cmd
}
