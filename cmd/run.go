// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/perfrun/cmd/flags"
	"github.com/xataio/perfrun/pkg/hostinfo"
	"github.com/xataio/perfrun/pkg/phpbench"
	"github.com/xataio/perfrun/pkg/pipeline"
	"github.com/xataio/perfrun/pkg/testnames"
	"github.com/xataio/perfrun/pkg/toggle"
)

func runCmd() *cobra.Command {
	var platform string
	var driver string
	var testName string
	var testNamesFile string
	var mars bool
	var pooling bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the driver benchmarks and store their results",
		Example: "run --platform Ubuntu16\n" +
			"run --platform Windows10 --driver pdo_sqlsrv --testname PDOConnectionBench.php --mars",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if err := pipeline.ValidatePlatform(platform, pipeline.Platforms); err != nil {
				return err
			}

			variants, err := phpbench.SelectVariants(phpbench.DefaultVariants, driver)
			if err != nil {
				return err
			}

			names := testnames.Default
			if testNamesFile != "" {
				if names, err = testnames.LoadFile(testNamesFile); err != nil {
					return err
				}
			}

			target, err := loadCredentials(flags.ConnectFile())
			if err != nil {
				return fmt.Errorf("reading benchmark target settings: %w", err)
			}

			store, err := NewStoreWithInitCheck(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := pipeline.New(platform, target, store,
				pipeline.WithRunner(phpbench.NewRunner(phpbench.WithExecutable(flags.PHPBench()))),
				pipeline.WithEnvironmentCollector(hostinfo.New(hostinfo.WithPHP(flags.PHP()))),
				pipeline.WithToggles(toggle.New(toggle.WithConnectFile(flags.ConnectFile()))),
				pipeline.WithTestNames(names),
				pipeline.WithVariants(variants),
				pipeline.WithFilter(testName),
				pipeline.WithLogger(pipeline.NewLogger()),
			)
			if err != nil {
				return err
			}

			if err := p.Execute(ctx, pipeline.SelectPasses(mars, pooling)); err != nil {
				return err
			}

			pterm.Success.Println("Benchmark results stored")
			return nil
		},
	}

	runCmd.Flags().StringVarP(&platform, "platform", "p", "", "Platform the results are filed under, one of: "+strings.Join(pipeline.Platforms, ", "))
	runCmd.Flags().StringVarP(&driver, "driver", "d", phpbench.SelectBoth, "Driver to benchmark: sqlsrv, pdo_sqlsrv or both")
	runCmd.Flags().StringVarP(&testName, "testname", "t", phpbench.AllBenchmarks, "Benchmark file to run, or all")
	runCmd.Flags().StringVar(&testNamesFile, "test-names", "", "YAML file mapping benchmark classes to test names")
	runCmd.Flags().BoolVar(&mars, "mars", false, "Also run the benchmarks with MARS enabled")
	runCmd.Flags().BoolVar(&pooling, "pooling", false, "Also run the benchmarks with connection pooling enabled")

	runCmd.MarkFlagRequired("platform")

	return runCmd
}
