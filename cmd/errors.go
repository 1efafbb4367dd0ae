// SPDX-License-Identifier: Apache-2.0

package cmd

import "errors"

var errResultsNotInitialized = errors.New("results database is not initialized, run 'perfrun init' to initialize")
