// SPDX-License-Identifier: Apache-2.0

package phpbench_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/perfrun/pkg/phpbench"
)

// fakePHPBench writes a shell script that records its arguments and writes an
// empty report to the --dump-file path.
func fakePHPBench(t *testing.T, exitCode int) (string, string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake phpbench is a shell script")
	}

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	script := `#!/bin/sh
echo "$@" > "` + argsFile + `"
for a in "$@"; do
	case "$a" in
		--dump-file=*) echo '<phpbench/>' > "${a#--dump-file=}" ;;
	esac
done
echo running benchmarks
exit ` + strconv.Itoa(exitCode) + `
`
	bin := filepath.Join(dir, "phpbench")
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	return bin, argsFile
}

func TestRunnerArgs(t *testing.T) {
	t.Parallel()

	r := phpbench.NewRunner(phpbench.WithExecutable("phpbench"))

	assert.Equal(t,
		[]string{"phpbench", "run", filepath.Join("benchmark", "sqlsrv"), "--dump-file=sqlsrv-results.xml"},
		r.Args(phpbench.BenchmarkPath(phpbench.DefaultVariants[0], phpbench.AllBenchmarks), "sqlsrv-results.xml"))
}

func TestRunnerRun(t *testing.T) {
	bin, argsFile := fakePHPBench(t, 0)
	report := filepath.Join(t.TempDir(), "sqlsrv-results.xml")

	var stdout bytes.Buffer
	r := phpbench.NewRunner(phpbench.WithExecutable(bin), phpbench.WithOutput(&stdout, &stdout))

	v := phpbench.Variant{Name: "sqlsrv", BenchmarkDir: "benchmark/sqlsrv", ReportFile: report}
	require.NoError(t, r.Run(context.Background(), v, "SqlsrvCRUDBench.php"))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "run benchmark/sqlsrv/SqlsrvCRUDBench.php --dump-file="+report+"\n", string(args))
	assert.FileExists(t, report)
	assert.Equal(t, "running benchmarks\n", stdout.String())
}

func TestRunnerRunNonZeroExit(t *testing.T) {
	bin, _ := fakePHPBench(t, 1)
	report := filepath.Join(t.TempDir(), "pdo_sqlsrv-results.xml")

	var out bytes.Buffer
	r := phpbench.NewRunner(phpbench.WithExecutable(bin), phpbench.WithOutput(&out, &out))

	v := phpbench.Variant{Name: "pdo_sqlsrv", BenchmarkDir: "benchmark/pdo_sqlsrv", ReportFile: report}
	err := r.Run(context.Background(), v, phpbench.AllBenchmarks)

	var runErr phpbench.RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, "pdo_sqlsrv", runErr.Variant)

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitCode())
}

func TestRunnerRunMissingExecutable(t *testing.T) {
	t.Parallel()

	r := phpbench.NewRunner(phpbench.WithExecutable(filepath.Join(t.TempDir(), "nope")))

	err := r.Run(context.Background(), phpbench.DefaultVariants[0], phpbench.AllBenchmarks)
	var runErr phpbench.RunError
	require.True(t, errors.As(err, &runErr))
}
