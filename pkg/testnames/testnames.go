// SPDX-License-Identifier: Apache-2.0

package testnames

import (
	"fmt"
)

// Mapping maps PHPBench benchmark class names to the test names shared with
// other teams in the results store.
type Mapping map[string]string

// Default is the mapping for the sqlsrv and pdo_sqlsrv benchmark suites.
var Default = Mapping{
	"SqlsrvConnectionBench":        "connection",
	"SqlsrvCreateDbTableProcBench": "create",
	"SqlsrvCRUDBench":              "crud",
	"SqlsrvInsertBench":            "crud-create",
	"SqlsrvFetchBench":             "crud-retrieve",
	"SqlsrvUpdateBench":            "crud-update",
	"SqlsrvDeleteBench":            "crud-delete",
	"SqlsrvFetchLargeBench":        "large",
	"SqlsrvSelectVersionBench":     "version",
	"PDOConnectionBench":           "connection",
	"PDOCreateDbTableProcBench":    "create",
	"PDOCRUDBench":                 "crud",
	"PDOInsertBench":               "crud-create",
	"PDOFetchBench":                "crud-retrieve",
	"PDOUpdateBench":               "crud-update",
	"PDODeleteBench":               "crud-delete",
	"PDOFetchLargeBench":           "large",
	"PDOSelectVersionBench":        "version",
}

type UnknownBenchmarkError struct {
	Benchmark string
}

func (e UnknownBenchmarkError) Error() string {
	return fmt.Sprintf("benchmark %q has no test name mapping; the benchmark suite and the mapping are out of sync", e.Benchmark)
}

// Lookup returns the test name for benchmark. An unmapped benchmark is an
// error, never skipped.
func (m Mapping) Lookup(benchmark string) (string, error) {
	name, ok := m[benchmark]
	if !ok {
		return "", UnknownBenchmarkError{Benchmark: benchmark}
	}
	return name, nil
}
