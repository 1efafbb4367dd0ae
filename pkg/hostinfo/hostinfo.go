// SPDX-License-Identifier: Apache-2.0

package hostinfo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/xataio/perfrun/pkg/credentials"
)

// Environment describes the PHP runtime the benchmarks ran on.
type Environment struct {
	Arch          string
	ThreadSafety  string
	PHPVersion    string
	DriverVersion string
	ODBCVersion   string
}

// Introspector queries the host's default PHP installation.
type Introspector struct {
	php  string
	goos string
	run  CommandRunner
}

type OptionFn func(*Introspector)

// WithPHP sets the PHP binary used for introspection.
func WithPHP(php string) OptionFn {
	return func(i *Introspector) {
		i.php = php
	}
}

// WithCommandRunner replaces the runner used to invoke PHP.
func WithCommandRunner(run CommandRunner) OptionFn {
	return func(i *Introspector) {
		i.run = run
	}
}

// WithGOOS overrides the operating system used to pick driver file names.
func WithGOOS(goos string) OptionFn {
	return func(i *Introspector) {
		i.goos = goos
	}
}

func New(opts ...OptionFn) *Introspector {
	i := &Introspector{
		php:  "php",
		goos: runtime.GOOS,
		run:  ExecRunner{},
	}

	for _, opt := range opts {
		opt(i)
	}
	return i
}

// eval runs a PHP one-liner and returns what it echoes.
func (i *Introspector) eval(ctx context.Context, code string) (string, error) {
	return i.run.Output(ctx, i.php, "-r", code)
}

// Arch returns "x64" or "x86" depending on the integer size of the default
// PHP, or an empty string if it could not be determined.
func (i *Introspector) Arch(ctx context.Context) (string, error) {
	out, err := i.eval(ctx, "echo PHP_INT_SIZE;")
	if err != nil {
		return "", err
	}

	switch strings.TrimSpace(out) {
	case "8":
		return "x64", nil
	case "4":
		return "x86", nil
	}
	return "", nil
}

// ThreadSafety returns "nts" for a non thread safe PHP build and "ts"
// otherwise, based on the "Thread Safety => ..." line of phpinfo.
func (i *Introspector) ThreadSafety(ctx context.Context) (string, error) {
	out, err := i.run.Output(ctx, i.php, "-i")
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Thread") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 3 && fields[3] == "disabled" {
			return "nts", nil
		}
		return "ts", nil
	}
	return "", fmt.Errorf("phpinfo has no thread safety line")
}

func (i *Introspector) PHPVersion(ctx context.Context) (string, error) {
	return i.eval(ctx, "echo phpversion();")
}

// DriverVersion returns the version of the named PHP extension.
func (i *Introspector) DriverVersion(ctx context.Context, driver string) (string, error) {
	return i.eval(ctx, fmt.Sprintf("echo phpversion('%s');", driver))
}

// ODBCVersion returns the version of the ODBC driver for SQL Server, as
// reported by the sqlsrv extension for a live connection to the target.
func (i *Introspector) ODBCVersion(ctx context.Context, target *credentials.Credentials) (string, error) {
	code := fmt.Sprintf(
		"echo sqlsrv_client_info(sqlsrv_connect('%s', array('UID'=>'%s', 'PWD'=>'%s')))['DriverVer'];",
		target.Server, target.UID, target.PWD,
	)
	return i.eval(ctx, code)
}

func (i *Introspector) ExtensionDir(ctx context.Context) (string, error) {
	return i.eval(ctx, "echo ini_get('extension_dir');")
}

// DriverPath returns the full path of the named driver's shared library.
func (i *Introspector) DriverPath(ctx context.Context, driver string) (string, error) {
	dir, err := i.ExtensionDir(ctx)
	if err != nil {
		return "", err
	}

	if i.goos == "windows" {
		return filepath.Join(dir, "php_"+driver+".dll"), nil
	}
	return filepath.Join(dir, driver+".so"), nil
}

// Collect gathers the whole Environment for a driver variant.
func (i *Introspector) Collect(ctx context.Context, driver string, target *credentials.Credentials) (*Environment, error) {
	var env Environment
	var err error

	if env.Arch, err = i.Arch(ctx); err != nil {
		return nil, fmt.Errorf("php architecture: %w", err)
	}
	if env.ThreadSafety, err = i.ThreadSafety(ctx); err != nil {
		return nil, fmt.Errorf("php thread safety: %w", err)
	}
	if env.PHPVersion, err = i.PHPVersion(ctx); err != nil {
		return nil, fmt.Errorf("php version: %w", err)
	}
	if env.DriverVersion, err = i.DriverVersion(ctx, driver); err != nil {
		return nil, fmt.Errorf("%s version: %w", driver, err)
	}
	if env.ODBCVersion, err = i.ODBCVersion(ctx, target); err != nil {
		return nil, fmt.Errorf("msodbcsql version: %w", err)
	}

	return &env, nil
}

// Hostname is the name of the client machine running the benchmarks.
func Hostname() (string, error) {
	return os.Hostname()
}
