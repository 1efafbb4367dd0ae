// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"slices"
	"strings"
)

// Platforms are the operating systems results can be filed under.
var Platforms = []string{
	"Windows10",
	"WindowsServer2016",
	"WindowsServer2012",
	"Ubuntu16",
	"RedHat7",
	"SUSE12",
	"Sierra",
}

type InvalidPlatformError struct {
	Name  string
	Valid []string
}

func (e InvalidPlatformError) Error() string {
	return fmt.Sprintf("platform %q is not valid, must be one of: %s", e.Name, strings.Join(e.Valid, ", "))
}

// ValidatePlatform checks that name is one of valid. The comparison is case
// sensitive.
func ValidatePlatform(name string, valid []string) error {
	if !slices.Contains(valid, name) {
		return InvalidPlatformError{Name: name, Valid: valid}
	}
	return nil
}
