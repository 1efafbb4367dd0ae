// SPDX-License-Identifier: Apache-2.0

// Package toggle switches the MARS and connection pooling settings used by the
// benchmarks on and back off. Every Enable writes a backup that the matching
// Disable restores.
package toggle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/xataio/perfrun/pkg/hostinfo"
)

const (
	backupSuffix = ".bak"

	marsOff    = "$mars=false;"
	marsOn     = "$mars=true;"
	poolingOff = "$pooling=false;"
	poolingOn  = "$pooling=true;"

	// odbcPooling is appended to odbcinst.ini to enable driver manager pooling.
	odbcPooling = "CPTimeout=5\n[ODBC]\nPooling=Yes\n"
)

// DefaultConnectFile is the PHP file holding the benchmark connection settings.
const DefaultConnectFile = "lib/connect.php"

type Toggler struct {
	connectFile string
	goos        string
	run         hostinfo.CommandRunner
	appendFile  func(path, content string) error
}

type OptionFn func(*Toggler)

func WithConnectFile(path string) OptionFn {
	return func(t *Toggler) {
		t.connectFile = path
	}
}

// WithGOOS overrides the operating system that decides where pooling is
// configured.
func WithGOOS(goos string) OptionFn {
	return func(t *Toggler) {
		t.goos = goos
	}
}

// WithCommandRunner replaces the runner used to invoke odbcinst.
func WithCommandRunner(run hostinfo.CommandRunner) OptionFn {
	return func(t *Toggler) {
		t.run = run
	}
}

func New(opts ...OptionFn) *Toggler {
	t := &Toggler{
		connectFile: DefaultConnectFile,
		goos:        runtime.GOOS,
		run:         hostinfo.ExecRunner{},
		appendFile:  appendFile,
	}

	for _, opt := range opts {
		opt(t)
	}
	return t
}

// EnableMARS turns on multiple active result sets in the connect file.
func (t *Toggler) EnableMARS() error {
	return replaceWithBackup(t.connectFile, marsOff, marsOn)
}

// DisableMARS restores the connect file saved by EnableMARS.
func (t *Toggler) DisableMARS() error {
	return restoreBackup(t.connectFile, true)
}

// EnablePooling turns on connection pooling. On windows the connect file is
// patched; elsewhere pooling is a unixODBC setting and is appended to the
// driver manager's odbcinst.ini.
func (t *Toggler) EnablePooling(ctx context.Context) error {
	if t.goos == "windows" {
		return replaceWithBackup(t.connectFile, poolingOff, poolingOn)
	}

	ini, err := t.odbcinstPath(ctx)
	if err != nil {
		return err
	}

	if err := copyFile(ini, ini+backupSuffix); err != nil {
		return fmt.Errorf("backing up %s: %w", ini, err)
	}

	if err := t.appendFile(ini, odbcPooling); err != nil {
		// Leave neither a half-written ini nor a stray backup behind.
		return errors.Join(fmt.Errorf("enabling pooling in %s: %w", ini, err), restoreBackup(ini, false))
	}
	return nil
}

// DisablePooling undoes EnablePooling.
func (t *Toggler) DisablePooling(ctx context.Context) error {
	if t.goos == "windows" {
		return restoreBackup(t.connectFile, true)
	}

	ini, err := t.odbcinstPath(ctx)
	if err != nil {
		return err
	}
	return restoreBackup(ini, false)
}

// odbcinstPath returns the location of odbcinst.ini as reported on the
// second line of `odbcinst -j`.
func (t *Toggler) odbcinstPath(ctx context.Context) (string, error) {
	out, err := t.run.Output(ctx, "odbcinst", "-j")
	if err != nil {
		return "", err
	}

	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		return "", fmt.Errorf("unexpected odbcinst -j output: %q", out)
	}

	fields := strings.Fields(lines[1])
	if len(fields) < 2 {
		return "", fmt.Errorf("no odbcinst.ini location in %q", lines[1])
	}
	return fields[1], nil
}

func replaceWithBackup(path, old, replacement string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path+backupSuffix, content, 0o644); err != nil {
		return fmt.Errorf("backing up %s: %w", path, err)
	}

	patched := bytes.ReplaceAll(content, []byte(old), []byte(replacement))
	return os.WriteFile(path, patched, 0o644)
}

// restoreBackup puts path's backup back in place. The connect file backup is
// left behind when keep is set.
func restoreBackup(path string, keep bool) error {
	backup := path + backupSuffix

	if keep {
		return copyFile(backup, path)
	}
	return os.Rename(backup, path)
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, content, info.Mode().Perm())
}
