// SPDX-License-Identifier: Apache-2.0

package results

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xataio/perfrun/pkg/db"
)

// Dialect is the SQL flavour of the results store.
type Dialect string

const (
	Postgres  Dialect = db.DriverPostgres
	SQLServer Dialect = db.DriverSQLServer
)

type UnknownDialectError struct {
	Name string
}

func (e UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown results database driver %q, must be one of: %s, %s", e.Name, SQLServer, Postgres)
}

// ParseDialect returns the dialect for a database/sql driver name.
func ParseDialect(name string) (Dialect, error) {
	switch Dialect(name) {
	case Postgres, SQLServer:
		return Dialect(name), nil
	}
	return "", UnknownDialectError{Name: name}
}

// DriverName is the database/sql driver for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

// placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) placeholder(n int) string {
	if d == SQLServer {
		return "@p" + strconv.Itoa(n)
	}
	return "$" + strconv.Itoa(n)
}

func (d Dialect) placeholders(count int) string {
	ps := make([]string, count)
	for i := range ps {
		ps[i] = d.placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

// insertReturningID builds an INSERT that yields the generated identifier as
// a single-row, single-column result.
func (d Dialect) insertReturningID(table, idColumn string, columns []string) string {
	cols := strings.Join(columns, ", ")
	values := d.placeholders(len(columns))

	if d == SQLServer {
		return fmt.Sprintf("INSERT INTO %s (%s) OUTPUT INSERTED.%s VALUES (%s)", table, cols, idColumn, values)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s", table, cols, values, idColumn)
}

func (d Dialect) insert(table string, columns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), d.placeholders(len(columns)))
}

func (d Dialect) schema() string {
	if d == SQLServer {
		return sqlServerSchema
	}
	return postgresSchema
}
