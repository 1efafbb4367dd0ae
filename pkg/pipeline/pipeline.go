// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs the PHPBench benchmarks of the selected driver
// variants and files their reports in the results store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/xataio/perfrun/internal/connstr"
	"github.com/xataio/perfrun/pkg/credentials"
	"github.com/xataio/perfrun/pkg/db"
	"github.com/xataio/perfrun/pkg/hostinfo"
	"github.com/xataio/perfrun/pkg/phpbench"
	"github.com/xataio/perfrun/pkg/results"
	"github.com/xataio/perfrun/pkg/testnames"
	"github.com/xataio/perfrun/pkg/toggle"
)

// BenchmarkRunner executes the benchmarks of one driver variant.
type BenchmarkRunner interface {
	Run(ctx context.Context, v phpbench.Variant, filter string) error
}

// EnvironmentCollector inspects the PHP installation the benchmarks ran on.
type EnvironmentCollector interface {
	Collect(ctx context.Context, driver string, target *credentials.Credentials) (*hostinfo.Environment, error)
	DriverPath(ctx context.Context, driver string) (string, error)
}

// ResultStore is the part of results.Store a pipeline writes to.
type ResultStore interface {
	ServerID(ctx context.Context, hostName string, version func(context.Context) (string, error)) (int64, error)
	ClientID(ctx context.Context, hostName string) (int64, error)
	TeamID(ctx context.Context, name string) (int64, error)
	DriverID(ctx context.Context, d results.Driver) (int64, error)
	Persist(
		ctx context.Context,
		dims results.Dimensions,
		run results.RunInfo,
		env hostinfo.Environment,
		names testnames.Mapping,
		report []phpbench.Result,
	) (int, error)
}

// Toggles switches the MARS and pooling settings for the extra passes.
type Toggles interface {
	EnableMARS() error
	DisableMARS() error
	EnablePooling(ctx context.Context) error
	DisablePooling(ctx context.Context) error
}

// Pass describes the settings a set of benchmarks ran with.
type Pass struct {
	MARS    bool
	Pooling bool
}

// SelectPasses returns the default pass followed, when asked for, by a MARS
// pass and a pooling pass.
func SelectPasses(mars, pooling bool) []Pass {
	passes := []Pass{{}}
	if mars {
		passes = append(passes, Pass{MARS: true})
	}
	if pooling {
		passes = append(passes, Pass{Pooling: true})
	}
	return passes
}

type Pipeline struct {
	platform string
	target   *credentials.Credentials
	store    ResultStore

	runner   BenchmarkRunner
	env      EnvironmentCollector
	toggles  Toggles
	names    testnames.Mapping
	variants []phpbench.Variant
	filter   string
	logger   Logger

	serverVersion func(context.Context) (string, error)
	hostname      func() (string, error)
	now           func() time.Time
	newRunID      func() string
}

type OptionFn func(*Pipeline)

func WithRunner(r BenchmarkRunner) OptionFn {
	return func(p *Pipeline) {
		p.runner = r
	}
}

func WithEnvironmentCollector(c EnvironmentCollector) OptionFn {
	return func(p *Pipeline) {
		p.env = c
	}
}

func WithToggles(t Toggles) OptionFn {
	return func(p *Pipeline) {
		p.toggles = t
	}
}

// WithTestNames replaces the benchmark to test name mapping.
func WithTestNames(names testnames.Mapping) OptionFn {
	return func(p *Pipeline) {
		p.names = names
	}
}

func WithVariants(variants []phpbench.Variant) OptionFn {
	return func(p *Pipeline) {
		p.variants = variants
	}
}

// WithFilter narrows every run to one benchmark file or directory of the
// variant's benchmark directory.
func WithFilter(filter string) OptionFn {
	return func(p *Pipeline) {
		p.filter = filter
	}
}

func WithLogger(l Logger) OptionFn {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithServerVersion replaces the query for the benchmark target's version,
// which by default connects to the target server.
func WithServerVersion(fn func(context.Context) (string, error)) OptionFn {
	return func(p *Pipeline) {
		p.serverVersion = fn
	}
}

func WithHostname(fn func() (string, error)) OptionFn {
	return func(p *Pipeline) {
		p.hostname = fn
	}
}

func WithClock(now func() time.Time) OptionFn {
	return func(p *Pipeline) {
		p.now = now
	}
}

func WithRunIDs(fn func() string) OptionFn {
	return func(p *Pipeline) {
		p.newRunID = fn
	}
}

// New creates a pipeline filing results for platform, benchmarked against
// the target server, in store.
func New(platform string, target *credentials.Credentials, store ResultStore, opts ...OptionFn) (*Pipeline, error) {
	if err := ValidatePlatform(platform, Platforms); err != nil {
		return nil, err
	}

	p := &Pipeline{
		platform: platform,
		target:   target,
		store:    store,
		runner:   phpbench.NewRunner(),
		env:      hostinfo.New(),
		toggles:  toggle.New(),
		names:    testnames.Default,
		variants: phpbench.DefaultVariants,
		filter:   phpbench.AllBenchmarks,
		logger:   NewNoopLogger(),
		hostname: hostinfo.Hostname,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	p.serverVersion = p.targetVersion

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Execute runs passes in order and stops at the first failing one. All passes
// share one start time, taken in local time when Execute is called, so their
// results group together. A pass enables the settings it needs first and
// restores them afterwards, even when it fails.
func (p *Pipeline) Execute(ctx context.Context, passes []Pass) error {
	start := p.now().Truncate(time.Second)

	for _, pass := range passes {
		if err := p.runPass(ctx, pass, start); err != nil {
			return err
		}
	}
	return nil
}

type setting struct {
	name    string
	enable  func(context.Context) error
	restore func(context.Context) error
}

func (p *Pipeline) settingsFor(pass Pass) []setting {
	var settings []setting
	if pass.MARS {
		settings = append(settings, setting{
			name:    "mars",
			enable:  func(context.Context) error { return p.toggles.EnableMARS() },
			restore: func(context.Context) error { return p.toggles.DisableMARS() },
		})
	}
	if pass.Pooling {
		settings = append(settings, setting{
			name:    "pooling",
			enable:  p.toggles.EnablePooling,
			restore: p.toggles.DisablePooling,
		})
	}
	return settings
}

func (p *Pipeline) runPass(ctx context.Context, pass Pass, start time.Time) (err error) {
	for _, s := range p.settingsFor(pass) {
		if err := s.enable(ctx); err != nil {
			return fmt.Errorf("enabling %s: %w", s.name, err)
		}

		defer func() {
			if rerr := s.restore(ctx); rerr != nil {
				p.logger.LogRestoreFailure(s.name, rerr)
				err = errors.Join(err, fmt.Errorf("restoring %s: %w", s.name, rerr))
			}
		}()
	}

	return p.run(ctx, pass, start)
}

// Run benchmarks every selected variant once and then stores their reports.
// A variant whose benchmarks fail to run is logged and its report, if any,
// is still stored; a variant without a report is skipped. Storage errors
// abort the run. The settings of pass are recorded, not applied; see Execute.
func (p *Pipeline) Run(ctx context.Context, pass Pass) error {
	return p.run(ctx, pass, p.now().Truncate(time.Second))
}

func (p *Pipeline) run(ctx context.Context, pass Pass, start time.Time) error {
	run := results.RunInfo{
		ID:        p.newRunID(),
		Platform:  p.platform,
		StartTime: start,
		MARS:      pass.MARS,
		Pooling:   pass.Pooling,
	}
	p.logger.LogPassStart(pass, run.ID)

	for _, v := range p.variants {
		if err := removeStaleReport(v.ReportFile); err != nil {
			return err
		}

		p.logger.LogBenchmarkStart(v.Name, phpbench.BenchmarkPath(v, p.filter))
		if err := p.runner.Run(ctx, v, p.filter); err != nil {
			p.logger.LogBenchmarkFailure(err)
		}
	}

	for _, v := range p.variants {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := phpbench.ParseReportFile(v.ReportFile)
		if err != nil {
			var notFound phpbench.ReportNotFoundError
			if errors.As(err, &notFound) {
				p.logger.LogReportSkipped(v.ReportFile, err)
				continue
			}
			return fmt.Errorf("parsing %s: %w", v.ReportFile, err)
		}

		env, err := p.env.Collect(ctx, v.Name, p.target)
		if err != nil {
			return fmt.Errorf("inspecting %s environment: %w", v.Name, err)
		}

		dims, err := p.dimensions(ctx, v.Name, env.Arch)
		if err != nil {
			return err
		}

		run.Driver = v.Name
		n, err := p.store.Persist(ctx, dims, run, *env, p.names, report)
		if err != nil {
			return fmt.Errorf("storing %s results (%d stored): %w", v.Name, n, err)
		}
		p.logger.LogResultsStored(v.Name, n)
	}

	p.logger.LogPassComplete(pass, run.ID)
	return nil
}

// dimensions resolves the server, client, team and driver the results of
// driver are filed under.
func (p *Pipeline) dimensions(ctx context.Context, driver, arch string) (results.Dimensions, error) {
	var dims results.Dimensions
	var err error

	if dims.ServerID, err = p.store.ServerID(ctx, p.target.Server, p.serverVersion); err != nil {
		return dims, fmt.Errorf("server entry: %w", err)
	}

	client, err := p.hostname()
	if err != nil {
		return dims, fmt.Errorf("client host name: %w", err)
	}
	if dims.ClientID, err = p.store.ClientID(ctx, client); err != nil {
		return dims, fmt.Errorf("client entry: %w", err)
	}

	if dims.TeamID, err = p.store.TeamID(ctx, results.TeamName); err != nil {
		return dims, fmt.Errorf("team entry: %w", err)
	}

	path, err := p.env.DriverPath(ctx, driver)
	if err != nil {
		return dims, fmt.Errorf("locating %s: %w", driver, err)
	}
	hash, err := hostinfo.HashFile(path)
	if err != nil {
		return dims, err
	}
	modTime, err := hostinfo.ModTime(path)
	if err != nil {
		return dims, err
	}
	if dims.DriverID, err = p.store.DriverID(ctx, results.Driver{Hash: hash, Arch: arch, FileDate: modTime}); err != nil {
		return dims, fmt.Errorf("driver entry: %w", err)
	}

	return dims, nil
}

// targetVersion connects to the benchmark target and reports its version.
func (p *Pipeline) targetVersion(ctx context.Context) (string, error) {
	conn, err := db.Open(ctx, db.DriverSQLServer, connstr.SQLServer(p.target))
	if err != nil {
		return "", fmt.Errorf("connecting to %s: %w", p.target.Server, err)
	}
	defer conn.Close()

	return db.ServerVersion(ctx, conn)
}

// removeStaleReport deletes a report left over from an earlier run so that a
// failed run cannot file it a second time.
func removeStaleReport(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale report: %w", err)
	}
	return nil
}
