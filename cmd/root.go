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

// Package cmd implements the mucor command line.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/exascience/mucor/config"
	"github.com/exascience/mucor/logger"
	"github.com/exascience/mucor/utils"
)

// NewRootCommand returns the mucor command with all its subcommands.
// Every call returns a fresh command tree with its own configuration.
func NewRootCommand() *cobra.Command {
	v := config.New()
	root := &cobra.Command{
		Use:   utils.ProgramName,
		Short: "Aggregate variant calls into summary tables",
		Long: `mucor aggregates atomized variant calls from many samples into
analyst-facing summary tables: a master table with one row per call,
a table of variants, and one pivot table per value column with a
column per sample and evidence metrics per variant.

Configuration is read from the file given with --config, from
environment variables with the MUCOR_ prefix (MUCOR_PIVOT_FILL_VALUE
for pivot.fill_value), and from command line flags, the latter taking
precedence.

Examples:
  mucor run calls.jsonl results/
  mucor run --config project.yaml --extra GENE,EFFECT calls.jsonl results/
  mucor convert results/master.tsv master.jsonl
  mucor remap-values --datasheet samples.tsv --map barcode=patient --field sample calls.jsonl renamed.jsonl`,
		Version:       utils.ProgramVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initialize(cmd, v)
		},
	}
	root.SetVersionTemplate(ProgramMessage + "\n")

	flags := root.PersistentFlags()
	flags.String("config", "", "read the configuration from a TOML, YAML or JSON file")
	flags.String("log-path", "", "write log files to the specified directory")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Bool("log-json", false, "write log entries as JSON")
	flags.Bool("timed", false, "log the elapsed time of every phase")
	bindFlag(v, root, "log.path", "log-path")
	bindFlag(v, root, "log.level", "log-level")
	bindFlag(v, root, "log.json", "log-json")
	bindFlag(v, root, "timed", "timed")

	root.AddCommand(
		newRunCommand(v),
		newMergeCommand(v),
		newPivotCommand(v),
		newConvertCommand(v),
		newRenameKeysCommand(v),
		newRemapValuesCommand(v),
	)
	return root
}

func initialize(cmd *cobra.Command, v *viper.Viper) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := checkExist("--config", path); err != nil {
			return err
		}
		if err := config.ReadFile(v, path); err != nil {
			return err
		}
	}
	jsonOutput, level := v.GetBool("log.json"), v.GetString("log.level")
	if path := v.GetString("log.path"); path != "" {
		return setLogOutput(path, jsonOutput, level)
	}
	return logger.Initialize(jsonOutput, level, cmd.ErrOrStderr())
}

// Execute runs the mucor command line.
func Execute() error {
	defer logger.Cleanup()
	return NewRootCommand().Execute()
}
