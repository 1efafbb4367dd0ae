// SPDX-License-Identifier: Apache-2.0

package credentials

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Credentials holds the connection details for one database. Fields that the
// loader could not find are left empty.
type Credentials struct {
	Server   string
	Database string
	UID      string
	PWD      string
}

// IsComplete reports whether all four fields were found.
func (c *Credentials) IsComplete() bool {
	return c.Server != "" && c.Database != "" && c.UID != "" && c.PWD != ""
}

// LoadFile reads credentials from a PHP connect file such as lib/connect.php.
func LoadFile(path string) (*Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening credentials file: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file %q: %w", path, err)
	}
	return c, nil
}

// Load scrapes credentials out of PHP variable assignments of the form
//
//	$server = "db.example.com";
//
// Each line is checked for the substrings "server", "database", "uid" and
// "pwd", in that order, and the first match decides which field the line
// sets. Matching is substring based, so "$uidprefix" also sets UID. The value
// is the text after the first '=' with its leading quote and trailing quote
// plus statement terminator removed. Nothing is validated; a line that does not
// fit the pattern sets a garbled value or is skipped.
func Load(r io.Reader) (*Credentials, error) {
	c := &Credentials{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		var field *string
		switch {
		case strings.Contains(line, "server"):
			field = &c.Server
		case strings.Contains(line, "database"):
			field = &c.Database
		case strings.Contains(line, "uid"):
			field = &c.UID
		case strings.Contains(line, "pwd"):
			field = &c.PWD
		default:
			continue
		}

		value, ok := assignedValue(line)
		if !ok {
			continue
		}
		*field = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

// assignedValue returns the literal between the first '=' and the statement
// terminator, dropping one leading and two trailing characters.
func assignedValue(line string) (string, bool) {
	parts := strings.Split(line, "=")
	if len(parts) < 2 {
		return "", false
	}

	v := strings.TrimSpace(parts[1])
	if len(v) < 3 {
		return "", true
	}
	return v[1 : len(v)-2], true
}
