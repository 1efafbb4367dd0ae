// SPDX-License-Identifier: Apache-2.0

package results

import (
	"context"
	"fmt"
	"time"

	"github.com/xataio/perfrun/pkg/hostinfo"
	"github.com/xataio/perfrun/pkg/phpbench"
	"github.com/xataio/perfrun/pkg/testnames"
)

// Dimensions are the dimension identifiers shared by every result of a
// report.
type Dimensions struct {
	ServerID int64
	ClientID int64
	TeamID   int64
	DriverID int64
}

// RunInfo describes the benchmark run a report belongs to.
type RunInfo struct {
	ID        string
	Platform  string
	Driver    string
	StartTime time.Time
	MARS      bool
	Pooling   bool
}

// Persist stores every parsed result of one report. A benchmark missing from
// names aborts the remaining work with a testnames.UnknownBenchmarkError;
// results stored before it are kept. It returns the number of results stored.
func (s *Store) Persist(
	ctx context.Context,
	dims Dimensions,
	run RunInfo,
	env hostinfo.Environment,
	names testnames.Mapping,
	results []phpbench.Result,
) (int, error) {
	for i, r := range results {
		testName, err := names.Lookup(r.Benchmark)
		if err != nil {
			return i, err
		}

		testID, err := s.TestID(ctx, testName)
		if err != nil {
			return i, err
		}

		resultID, err := s.InsertResult(ctx, Fact{
			TestID:   testID,
			ClientID: dims.ClientID,
			DriverID: dims.DriverID,
			ServerID: dims.ServerID,
			TeamID:   dims.TeamID,
			Success:  r.Success,
		})
		if err != nil {
			return i, err
		}

		for _, a := range ResultAttributes(run, env, r) {
			if err := s.InsertAttribute(ctx, resultID, a); err != nil {
				return i, fmt.Errorf("result %d (%s): %w", resultID, r.Benchmark, err)
			}
		}
	}

	return len(results), nil
}

// ResultAttributes lists the attributes stored for result r, in insertion
// order: the measurements (or the error message), then the run settings and
// the environment.
func ResultAttributes(run RunInfo, env hostinfo.Environment, r phpbench.Result) []Attribute {
	attrs := make([]Attribute, 0, 14)

	if r.Success {
		attrs = append(attrs,
			Int("duration", valueOrZero(r.Duration.Get)),
			Int("memory", valueOrZero(r.Memory.Get)),
			Int("iterations", valueOrZero(r.Iterations.Get)),
		)
	} else {
		attrs = append(attrs, String("error", valueOrZero(r.ErrorMessage.Get)))
	}

	return append(attrs,
		Date("startTime", run.StartTime),
		Flag("mars", run.MARS),
		Flag("pooling", run.Pooling),
		String("driver", run.Driver),
		String("php_arch", env.Arch),
		String("os", run.Platform),
		String("php_thread", env.ThreadSafety),
		String("php_version", env.PHPVersion),
		String("msodbcsql", env.ODBCVersion),
		String("driver_version", env.DriverVersion),
		String("run_id", run.ID),
	)
}

func valueOrZero[T any](get func() (T, error)) T {
	v, err := get()
	if err != nil {
		var zero T
		return zero
	}
	return v
}
