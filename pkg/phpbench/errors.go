// SPDX-License-Identifier: Apache-2.0

package phpbench

import (
	"fmt"
	"strings"
)

type UnknownVariantError struct {
	Name  string
	Valid []string
}

func (e UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown driver %q, must be one of: %s", e.Name, strings.Join(e.Valid, ", "))
}

type ReportNotFoundError struct {
	Path string
}

func (e ReportNotFoundError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Path)
}

type MissingVariantError struct {
	Benchmark string
}

func (e MissingVariantError) Error() string {
	return fmt.Sprintf("benchmark %q has no subject variant in the report", e.Benchmark)
}

type InvalidAttributeError struct {
	Benchmark string
	Attribute string
	Value     string
}

func (e InvalidAttributeError) Error() string {
	return fmt.Sprintf("benchmark %q: attribute %q has non-numeric value %q", e.Benchmark, e.Attribute, e.Value)
}

// RunError is returned when PHPBench could not be started or exited with a
// non-zero status.
type RunError struct {
	Variant string
	Err     error
}

func (e RunError) Error() string {
	return fmt.Sprintf("phpbench run for %s: %s", e.Variant, e.Err)
}

func (e RunError) Unwrap() error {
	return e.Err
}
