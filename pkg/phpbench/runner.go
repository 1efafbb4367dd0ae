// SPDX-License-Identifier: Apache-2.0

package phpbench

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultExecutable is the PHPBench binary installed by composer.
var DefaultExecutable = filepath.Join("vendor", "bin", "phpbench")

// Runner invokes PHPBench for a driver variant.
type Runner struct {
	executable string
	stdout     io.Writer
	stderr     io.Writer
}

type OptionFn func(*Runner)

// WithExecutable sets the PHPBench binary to invoke.
func WithExecutable(path string) OptionFn {
	return func(r *Runner) {
		r.executable = path
	}
}

// WithOutput sets where PHPBench's own progress output is written.
func WithOutput(stdout, stderr io.Writer) OptionFn {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

func NewRunner(opts ...OptionFn) *Runner {
	r := &Runner{
		executable: DefaultExecutable,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Args returns the PHPBench command line for running the benchmarks at path
// and dumping the XML report to dumpFile.
func (r *Runner) Args(path, dumpFile string) []string {
	return []string{r.executable, "run", path, "--dump-file=" + dumpFile}
}

// Run executes the benchmarks of variant v, narrowed by filter, and blocks
// until PHPBench exits. There is no timeout. A failure to start or a non-zero
// exit is returned as a RunError; callers are expected to carry on and let the
// missing or partial report surface when it is parsed.
func (r *Runner) Run(ctx context.Context, v Variant, filter string) error {
	args := r.Args(BenchmarkPath(v, filter), v.ReportFile)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return RunError{Variant: v.Name, Err: err}
	}
	return nil
}
