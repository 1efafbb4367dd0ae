// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/xataio/perfrun/cmd/flags"
	"github.com/xataio/perfrun/internal/connstr"
	"github.com/xataio/perfrun/pkg/credentials"
	"github.com/xataio/perfrun/pkg/db"
	"github.com/xataio/perfrun/pkg/results"
)

// loadCredentials reads the connection settings of a PHP settings file and
// warns about any that are missing.
func loadCredentials(path string) (*credentials.Credentials, error) {
	c, err := credentials.LoadFile(path)
	if err != nil {
		return nil, err
	}

	if !c.IsComplete() {
		pterm.DefaultLogger.Warn("incomplete connection settings", pterm.DefaultLogger.Args("file", path))
	}
	return c, nil
}

// resultsDSN builds the connection string for the results database.
func resultsDSN(dialect results.Dialect, c *credentials.Credentials) string {
	if dialect == results.Postgres {
		return connstr.Postgres(c, flags.ResultsSSLMode())
	}
	return connstr.SQLServer(c)
}

// NewStore connects to the results database configured by the result file.
func NewStore(ctx context.Context) (*results.Store, error) {
	dialect, err := results.ParseDialect(flags.ResultsDriver())
	if err != nil {
		return nil, err
	}

	c, err := loadCredentials(flags.ResultFile())
	if err != nil {
		return nil, fmt.Errorf("reading results database settings: %w", err)
	}

	conn, err := db.Open(ctx, dialect.DriverName(), resultsDSN(dialect, c))
	if err != nil {
		return nil, fmt.Errorf("connecting to results database %s: %w", c.Server, err)
	}

	return results.New(conn, dialect), nil
}

// NewStoreWithInitCheck connects to the results database and fails if its
// tables have not been created.
func NewStoreWithInitCheck(ctx context.Context) (*results.Store, error) {
	store, err := NewStore(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := store.IsInitialized(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("unable to check results database: %w", err)
	}
	if !ok {
		store.Close()
		return nil, errResultsNotInitialized
	}

	return store, nil
}
