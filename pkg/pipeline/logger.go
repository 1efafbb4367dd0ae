// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"github.com/pterm/pterm"
)

// Logger reports the progress of a benchmark run.
type Logger interface {
	LogPassStart(pass Pass, runID string)
	LogBenchmarkStart(variant, path string)
	LogBenchmarkFailure(err error)
	LogReportSkipped(report string, err error)
	LogResultsStored(variant string, count int)
	LogRestoreFailure(setting string, err error)
	LogPassComplete(pass Pass, runID string)
}

type runLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

func NewLogger() Logger {
	return &runLogger{logger: pterm.DefaultLogger}
}

func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *runLogger) LogPassStart(pass Pass, runID string) {
	l.logger.Info("starting benchmark pass", l.logger.Args(
		"mars", pass.MARS,
		"pooling", pass.Pooling,
		"run_id", runID,
	))
}

func (l *runLogger) LogBenchmarkStart(variant, path string) {
	l.logger.Info("running benchmarks", l.logger.Args("driver", variant, "path", path))
}

func (l *runLogger) LogBenchmarkFailure(err error) {
	l.logger.Warn("benchmark run failed", l.logger.Args("error", err))
}

func (l *runLogger) LogReportSkipped(report string, err error) {
	l.logger.Warn("skipping report", l.logger.Args("report", report, "error", err))
}

func (l *runLogger) LogResultsStored(variant string, count int) {
	l.logger.Info("stored results", l.logger.Args("driver", variant, "count", count))
}

func (l *runLogger) LogRestoreFailure(setting string, err error) {
	l.logger.Error("failed to restore setting", l.logger.Args("setting", setting, "error", err))
}

func (l *runLogger) LogPassComplete(pass Pass, runID string) {
	l.logger.Info("completed benchmark pass", l.logger.Args(
		"mars", pass.MARS,
		"pooling", pass.Pooling,
		"run_id", runID,
	))
}

func (l *noopLogger) LogPassStart(pass Pass, runID string) {}

func (l *noopLogger) LogBenchmarkStart(variant, path string) {}

func (l *noopLogger) LogBenchmarkFailure(err error) {}

func (l *noopLogger) LogReportSkipped(report string, err error) {}

func (l *noopLogger) LogResultsStored(variant string, count int) {}

func (l *noopLogger) LogRestoreFailure(setting string, err error) {}

func (l *noopLogger) LogPassComplete(pass Pass, runID string) {}
