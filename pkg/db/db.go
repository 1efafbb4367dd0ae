// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
)

const (
	// DriverPostgres is the database/sql driver name registered by lib/pq.
	DriverPostgres = "postgres"

	// DriverSQLServer is the database/sql driver name registered by go-mssqldb.
	DriverSQLServer = "sqlserver"
)

// DB is the subset of *sql.DB used to read and write benchmark results.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	Close() error
}

// Open opens a connection pool for driverName and checks that the database is
// reachable.
func Open(ctx context.Context, driverName, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", driverName, err)
	}

	return conn, nil
}

// ServerVersion returns the @@VERSION string of a SQL Server database.
func ServerVersion(ctx context.Context, conn DB) (string, error) {
	rows, err := conn.QueryContext(ctx, "SELECT @@VERSION")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var version string
	if err := ScanFirstValue(rows, &version); err != nil {
		return "", err
	}
	return version, nil
}

// ScanFirstValue is a helper function to scan the first value with the assumption that Rows contains
// a single row with a single value.
func ScanFirstValue[T any](rows *sql.Rows, dest *T) error {
	if rows.Next() {
		if err := rows.Scan(dest); err != nil {
			return err
		}
	}
	return rows.Err()
}
