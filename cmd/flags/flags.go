// SPDX-License-Identifier: Apache-2.0

package flags

import (
	"github.com/spf13/viper"
)

func ConnectFile() string {
	return viper.GetString("CONNECT_FILE")
}

func ResultFile() string {
	return viper.GetString("RESULT_FILE")
}

func ResultsDriver() string {
	return viper.GetString("RESULTS_DRIVER")
}

func ResultsSSLMode() string {
	return viper.GetString("RESULTS_SSLMODE")
}

func PHPBench() string {
	return viper.GetString("PHPBENCH")
}

func PHP() string {
	return viper.GetString("PHP")
}
