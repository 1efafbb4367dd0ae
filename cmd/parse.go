// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/oapi-codegen/nullable"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/perfrun/pkg/phpbench"
)

func parseCmd() *cobra.Command {
	var useJSON bool

	parseCmd := &cobra.Command{
		Use:       "parse <report>",
		Short:     "Print the results of a PHPBench XML report without storing them",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"report"},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := phpbench.ParseReportFile(args[0])
			if err != nil {
				return err
			}

			if useJSON {
				out, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			return pterm.DefaultTable.
				WithHasHeader().
				WithWriter(cmd.OutOrStdout()).
				WithData(resultTable(res)).
				Render()
		},
	}

	parseCmd.Flags().BoolVarP(&useJSON, "json", "j", false, "output in JSON format instead of a table")

	return parseCmd
}

func resultTable(res []phpbench.Result) pterm.TableData {
	data := pterm.TableData{{"Benchmark", "Success", "Duration (s)", "Memory (bytes)", "Iterations", "Error"}}

	for _, r := range res {
		data = append(data, []string{
			r.Benchmark,
			strconv.FormatBool(r.Success),
			formatInt(r.Duration),
			formatInt(r.Memory),
			formatInt(r.Iterations),
			formatString(r.ErrorMessage),
		})
	}
	return data
}

func formatInt(v nullable.Nullable[int64]) string {
	if !v.IsSpecified() || v.IsNull() {
		return ""
	}
	return strconv.FormatInt(v.MustGet(), 10)
}

func formatString(v nullable.Nullable[string]) string {
	if !v.IsSpecified() || v.IsNull() {
		return ""
	}
	return v.MustGet()
}
