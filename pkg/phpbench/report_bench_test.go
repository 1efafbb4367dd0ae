// SPDX-License-Identifier: Apache-2.0

package phpbench_test

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xataio/perfrun/pkg/phpbench"
)

const unitBenchmarksPerSecond = "benchmarks/s"

var benchmarkCounts = []int{10, 1_000, 10_000}

// syntheticReport builds a single-suite report with n benchmarks of five
// iterations each.
func syntheticReport(n int) []byte {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0"?><phpbench version="0.13.0"><suite tag="bench">`)
	for i := range n {
		fmt.Fprintf(&sb, `<benchmark class="\Bench%d"><subject name="bench"><variant>`, i)
		for j := range 5 {
			fmt.Fprintf(&sb, `<iteration time-net="%d" mem-peak="%d"/>`, 100_000*(j+1), 2048*(j+1))
		}
		sb.WriteString(`<stats sum="1500000"/></variant></subject></benchmark>`)
	}
	sb.WriteString(`</suite></phpbench>`)

	return []byte(sb.String())
}

func BenchmarkParseReport(b *testing.B) {
	for _, n := range benchmarkCounts {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			report := syntheticReport(n)
			b.SetBytes(int64(len(report)))
			b.ResetTimer()

			for range b.N {
				res, err := phpbench.ParseReport(bytes.NewReader(report))
				require.NoError(b, err)
				require.Len(b, res, n)
			}

			b.ReportMetric(float64(n*b.N)/b.Elapsed().Seconds(), unitBenchmarksPerSecond)
		})
	}
}
