// SPDX-License-Identifier: Apache-2.0

package phpbench

import (
	"path/filepath"
)

const (
	// SelectBoth selects every known driver variant.
	SelectBoth = "both"

	// AllBenchmarks is the filter value that runs a variant's whole
	// benchmark directory.
	AllBenchmarks = "all"
)

// Variant describes one driver under benchmark: where its benchmarks live and
// where PHPBench dumps its XML report.
type Variant struct {
	Name         string
	BenchmarkDir string
	ReportFile   string
}

// DefaultVariants are the two PHP drivers for SQL Server.
var DefaultVariants = []Variant{
	{
		Name:         "sqlsrv",
		BenchmarkDir: filepath.Join("benchmark", "sqlsrv"),
		ReportFile:   "sqlsrv-results.xml",
	},
	{
		Name:         "pdo_sqlsrv",
		BenchmarkDir: filepath.Join("benchmark", "pdo_sqlsrv"),
		ReportFile:   "pdo_sqlsrv-results.xml",
	},
}

// SelectVariants returns the variants chosen by selector, which is either
// SelectBoth or the name of a single variant.
func SelectVariants(variants []Variant, selector string) ([]Variant, error) {
	if selector == SelectBoth {
		return variants, nil
	}

	for _, v := range variants {
		if v.Name == selector {
			return []Variant{v}, nil
		}
	}

	names := make([]string, 0, len(variants)+1)
	for _, v := range variants {
		names = append(names, v.Name)
	}
	names = append(names, SelectBoth)

	return nil, UnknownVariantError{Name: selector, Valid: names}
}

// BenchmarkPath is the path handed to PHPBench for variant v, narrowed to a
// single benchmark file or directory unless filter is AllBenchmarks.
func BenchmarkPath(v Variant, filter string) string {
	if filter == "" || filter == AllBenchmarks {
		return v.BenchmarkDir
	}
	return filepath.Join(v.BenchmarkDir, filter)
}
