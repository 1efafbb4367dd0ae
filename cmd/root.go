// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xataio/perfrun/pkg/phpbench"
	"github.com/xataio/perfrun/pkg/results"
	"github.com/xataio/perfrun/pkg/toggle"
)

// Version is the perfrun version
var Version = "development"

func init() {
	viper.SetEnvPrefix("PERFRUN")
	viper.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.String("connect-file", toggle.DefaultConnectFile, "PHP file with the benchmark target connection settings")
	pf.String("result-file", "lib/result_db.php", "PHP file with the results database connection settings")
	pf.String("results-driver", string(results.SQLServer), "Results database driver, one of: sqlserver, postgres")
	pf.String("results-sslmode", "disable", "SSL mode of a postgres results database")
	pf.String("phpbench", phpbench.DefaultExecutable, "PHPBench executable")
	pf.String("php", "php", "PHP binary used to inspect the installed drivers")

	bindFlags(pf, map[string]string{
		"CONNECT_FILE":    "connect-file",
		"RESULT_FILE":     "result-file",
		"RESULTS_DRIVER":  "results-driver",
		"RESULTS_SSLMODE": "results-sslmode",
		"PHPBENCH":        "phpbench",
		"PHP":             "php",
	})
}

// bindFlags binds each viper key to the flag of the given name.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		viper.BindPFlag(key, fs.Lookup(name))
	}
}

var rootCmd = &cobra.Command{
	Use:          "perfrun",
	Short:        "Run the SQL Server PHP driver benchmarks and store their results",
	SilenceUsage: true,
	Version:      Version,
}

// Execute executes the root command.
func Execute() error {
	// register subcommands
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(initCmd())

	return rootCmd.Execute()
}
