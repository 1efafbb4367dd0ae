// SPDX-License-Identifier: Apache-2.0

package phpbench

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/oapi-codegen/nullable"
)

// microsecondsPerSecond converts PHPBench timings, reported in microseconds,
// to whole seconds.
const microsecondsPerSecond = 1_000_000

// Result is the outcome of one benchmark in a PHPBench report. A successful
// result carries Duration, Memory and Iterations; a failed one carries only
// ErrorMessage.
type Result struct {
	Benchmark    string                    `json:"benchmark"`
	Success      bool                      `json:"success"`
	Duration     nullable.Nullable[int64]  `json:"duration,omitempty"`
	Memory       nullable.Nullable[int64]  `json:"memory,omitempty"`
	Iterations   nullable.Nullable[int64]  `json:"iterations,omitempty"`
	ErrorMessage nullable.Nullable[string] `json:"error,omitempty"`
}

type xmlReport struct {
	Suites []xmlSuite `xml:"suite"`
}

type xmlSuite struct {
	Benchmarks []xmlBenchmark `xml:"benchmark"`
}

type xmlBenchmark struct {
	Class    string       `xml:"class,attr"`
	Subjects []xmlSubject `xml:"subject"`
}

type xmlSubject struct {
	Variants []xmlVariant `xml:"variant"`
}

type xmlVariant struct {
	Iterations []xmlIteration `xml:"iteration"`
	Stats      *xmlStats      `xml:"stats"`
	Errors     *xmlErrors     `xml:"errors"`
}

type xmlIteration struct {
	TimeNet string `xml:"time-net,attr"`
	MemPeak string `xml:"mem-peak,attr"`
}

type xmlStats struct {
	Sum string `xml:"sum,attr"`
}

type xmlErrors struct {
	Errors []xmlError `xml:"error"`
}

type xmlError struct {
	Message string `xml:",chardata"`
}

// ParseReportFile parses the PHPBench XML dump at path. A ReportNotFoundError
// is returned if the file does not exist.
func ParseReportFile(path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ReportNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	results, err := ParseReport(f)
	if err != nil {
		return nil, fmt.Errorf("parsing report %q: %w", path, err)
	}
	return results, nil
}

// ParseReport reads a PHPBench XML dump and returns one Result per benchmark
// of the first suite, in document order. Only the first variant of each
// benchmark's first subject is examined.
func ParseReport(r io.Reader) ([]Result, error) {
	var report xmlReport
	if err := xml.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding XML: %w", err)
	}

	if len(report.Suites) == 0 {
		return []Result{}, nil
	}

	benchmarks := report.Suites[0].Benchmarks
	results := make([]Result, 0, len(benchmarks))
	for _, b := range benchmarks {
		result, err := parseBenchmark(b)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

func parseBenchmark(b xmlBenchmark) (Result, error) {
	// PHPBench reports fully qualified class names
	name := strings.TrimPrefix(b.Class, `\`)

	if len(b.Subjects) == 0 || len(b.Subjects[0].Variants) == 0 {
		return Result{}, MissingVariantError{Benchmark: name}
	}
	variant := b.Subjects[0].Variants[0]

	if variant.Errors != nil {
		message := ""
		if len(variant.Errors.Errors) > 0 {
			message = variant.Errors.Errors[0].Message
		}
		return Result{
			Benchmark:    name,
			Success:      false,
			ErrorMessage: nullable.NewNullableWithValue(message),
		}, nil
	}

	timeSum, err := timingSum(name, variant)
	if err != nil {
		return Result{}, err
	}

	// Peak memory is per iteration and usually identical across iterations,
	// so the highest one is kept rather than a total.
	var memoryPeak int64
	for _, it := range variant.Iterations {
		peak, err := strconv.ParseInt(strings.TrimSpace(it.MemPeak), 10, 64)
		if err != nil {
			return Result{}, InvalidAttributeError{Benchmark: name, Attribute: "mem-peak", Value: it.MemPeak}
		}
		memoryPeak = max(memoryPeak, peak)
	}

	return Result{
		Benchmark:  name,
		Success:    true,
		Duration:   nullable.NewNullableWithValue(int64(math.RoundToEven(timeSum / microsecondsPerSecond))),
		Memory:     nullable.NewNullableWithValue(memoryPeak),
		Iterations: nullable.NewNullableWithValue(int64(len(variant.Iterations))),
	}, nil
}

// timingSum returns the total time in microseconds over all iterations. The
// sum computed by PHPBench in the stats element is preferred; reports without
// one fall back to adding up the iterations' net times.
func timingSum(benchmark string, v xmlVariant) (float64, error) {
	if v.Stats != nil {
		sum, err := strconv.ParseFloat(strings.TrimSpace(v.Stats.Sum), 64)
		if err != nil {
			return 0, InvalidAttributeError{Benchmark: benchmark, Attribute: "sum", Value: v.Stats.Sum}
		}
		return sum, nil
	}

	var sum float64
	for _, it := range v.Iterations {
		t, err := strconv.ParseFloat(strings.TrimSpace(it.TimeNet), 64)
		if err != nil {
			return 0, InvalidAttributeError{Benchmark: benchmark, Attribute: "time-net", Value: it.TimeNet}
		}
		sum += t
	}
	return sum, nil
}
