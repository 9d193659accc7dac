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

package internal

import (
	"time"

	"github.com/exascience/pargo/pipeline"
	"go.uber.org/zap"

	"github.com/exascience/mucor/logger"
)

// RunPipeline is p.Run() followed by p.Err().
func RunPipeline(p *pipeline.Pipeline) error {
	p.Run()
	return p.Err()
}

// Timed runs f. If timed is set, it logs msg before, and the elapsed
// time after running f.
func Timed(log *zap.SugaredLogger, timed bool, msg string, f func() error) error {
	if !timed {
		return f()
	}
	log.Info(msg)
	start := time.Now()
	defer func() {
		log.Infow("Elapsed time", "phase", msg, logger.FieldElapsed, time.Since(start))
	}()
	return f()
}
