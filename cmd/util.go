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
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/exascience/mucor/delim"
	"github.com/exascience/mucor/errors"
	"github.com/exascience/mucor/internal"
	"github.com/exascience/mucor/jsonl"
	"github.com/exascience/mucor/logger"
	"github.com/exascience/mucor/table"
	"github.com/exascience/mucor/utils"
)

// ProgramMessage is the first line written to a log file.
var ProgramMessage = fmt.Sprint(
	utils.ProgramName, " version ", utils.ProgramVersion,
	" compiled with ", runtime.Version(), " - see ", utils.ProgramURL, " for more information.",
)

func checkExist(parameter, filename string) error {
	if filename == "" {
		return errors.MissingConfiguration(parameter, "missing filename")
	}
	if filename == "-" {
		return nil
	}
	if filename[0] == '-' {
		return errors.MissingConfiguration(parameter, "missing filename before "+filename)
	}
	_, err := os.Stat(filename)
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return errors.Wrapf(err, "file %v does not exist for %v", filename, parameter)
	case os.IsPermission(err):
		return errors.Wrapf(err, "no permission to read file %v for %v", filename, parameter)
	default:
		return errors.Wrapf(err, "error when trying to access file %v for %v", filename, parameter)
	}
}

func checkCreate(parameter, filename string) error {
	if filename == "" {
		return errors.MissingConfiguration(parameter, "missing filename")
	}
	if filename == "-" {
		return nil
	}
	if filename[0] == '-' {
		return errors.MissingConfiguration(parameter, "missing filename before "+filename)
	}
	if info, err := os.Stat(filename); err == nil {
		if info.IsDir() {
			return errors.Newf("%v for %v is a directory", filename, parameter)
		}
		// Assume that the file has been written by previous runs, and can be overwritten.
		return nil
	}
	dir := filepath.Dir(filename)
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return errors.Newf("%v for %v is not a directory", dir, parameter)
	}
	return nil
}

func checkDirectory(parameter, dir string) error {
	if dir == "" {
		return errors.MissingConfiguration(parameter, "missing directory")
	}
	if dir[0] == '-' {
		return errors.MissingConfiguration(parameter, "missing directory before "+dir)
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return errors.Newf("%v for %v is not a directory", dir, parameter)
	case err == nil, os.IsNotExist(err):
		return nil
	default:
		return errors.Wrapf(err, "error when trying to access directory %v for %v", dir, parameter)
	}
}

func createLogFilename() string {
	t := time.Now()
	zone, _ := t.Zone()
	return fmt.Sprintf("logs/mucor/mucor-%d-%02d-%02d-%02d-%02d-%02d-%09d-%v.log", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone)
}

// setLogOutput redirects standard error into a fresh log file under
// path, and sends log entries both to that file and to the original
// standard error.
func setLogOutput(path string, jsonOutput bool, level string) error {
	fullPath := filepath.Join(path, createLogFilename())
	if err := os.MkdirAll(filepath.Dir(fullPath), 0700); err != nil {
		return errors.Wrap(err, "creating log directory")
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return errors.Wrap(err, "creating log file")
	}
	fmt.Fprintln(f, ProgramMessage)

	orgStderr, err := unix.Dup(2)
	if err != nil {
		return errors.Wrap(err, "duplicating standard error")
	}
	ferr := os.NewFile(uintptr(orgStderr), "/dev/stderr")
	if err := unix.Dup2(int(f.Fd()), 2); err != nil {
		return errors.Wrap(err, "redirecting standard error")
	}

	if err := logger.Initialize(jsonOutput, level, io.MultiWriter(f, ferr)); err != nil {
		return err
	}
	logger.Logger.Infow("Created log file", logger.FieldFile, fullPath, "args", os.Args)
	return nil
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, name string) {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(name)
	}
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// bindOnRun binds the flags of cmd to configuration keys when cmd
// runs, given as key, flag name pairs. Several commands bind flags to
// the same keys, so binding must wait until the command is known.
func bindOnRun(v *viper.Viper, cmd *cobra.Command, pairs ...string) {
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		for i := 0; i+1 < len(pairs); i += 2 {
			if err := v.BindPFlag(pairs[i], cmd.Flags().Lookup(pairs[i+1])); err != nil {
				return err
			}
		}
		return nil
	}
}

func isRecords(filename string) bool {
	if filename == "-" {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jsonl", ".json", ".ndjson":
		return true
	default:
		return false
	}
}

// readTable reads JSON lines or a delimited file, depending on the
// file extension.
func readTable(filename string) (*table.Table, error) {
	if isRecords(filename) {
		return jsonl.ReadFile(filename)
	}
	return delim.ReadFile(filename)
}

// writeTable writes JSON lines or a delimited file, depending on the
// file extension.
func writeTable(filename string, t *table.Table, opts delim.Options) error {
	err := internal.WriteOnce(filename, func(w io.Writer) error {
		if isRecords(filename) {
			return jsonl.Write(w, t)
		}
		opts.Comma = delim.ForExtension(strings.ToLower(filepath.Ext(filename))).Comma
		return delim.Write(w, t, opts)
	})
	if err != nil {
		return errors.Wrapf(err, "writing %s", filename)
	}
	logger.Logger.Infow("written", logger.FieldFile, filename, logger.FieldRows, t.NumRows())
	return nil
}
