// SPDX-License-Identifier: Apache-2.0

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xataio/perfrun/pkg/results"
)

// The version of postgres against which the tests are run
// if the POSTGRES_VERSION environment variable is not set.
const defaultPostgresVersion = "15.3"

var (
	startOnce sync.Once
	ctr       *postgres.PostgresContainer
	tConnStr  string
	errStart  error
)

// SharedTestMain runs the tests of a package that share one postgres
// container. The container is started by the first test that asks for a
// connection, so packages mixing unit and container tests still run their
// unit tests without docker. Each test gets a database of its own.
func SharedTestMain(m *testing.M) {
	exitCode := m.Run()

	if ctr != nil {
		if err := ctr.Terminate(context.Background()); err != nil {
			log.Printf("Failed to terminate container: %v", err)
		}
	}

	os.Exit(exitCode)
}

func startContainer() {
	ctx := context.Background()

	waitForLogs := wait.
		ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(30 * time.Second)

	pgVersion := os.Getenv("POSTGRES_VERSION")
	if pgVersion == "" {
		pgVersion = defaultPostgresVersion
	}

	ctr, errStart = postgres.Run(ctx, "postgres:"+pgVersion, testcontainers.WithWaitStrategy(waitForLogs))
	if errStart != nil {
		return
	}

	tConnStr, errStart = ctr.ConnectionString(ctx, "sslmode=disable")
}

// WithConnectionToContainer calls fn with a connection to a fresh database
// and its connection string. The test is skipped when no container runtime is
// available.
func WithConnectionToContainer(t *testing.T, fn func(*sql.DB, string)) {
	t.Helper()

	db, connStr := setupTestDatabase(t)

	fn(db, connStr)
}

// WithStoreInContainer calls fn with an initialized postgres results store.
func WithStoreInContainer(t *testing.T, fn func(*results.Store, *sql.DB)) {
	t.Helper()

	db, connStr := setupTestDatabase(t)

	storeConn, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}

	store := results.New(storeConn, results.Postgres)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("Failed to close store: %v", err)
		}
	})

	if err := store.Init(context.Background()); err != nil {
		t.Fatal(err)
	}

	fn(store, db)
}

// setupTestDatabase creates a new database in the test container and returns
// a connection to it along with its connection string.
func setupTestDatabase(t *testing.T) (*sql.DB, string) {
	t.Helper()
	ctx := context.Background()

	testcontainers.SkipIfProviderIsNotHealthy(t)

	startOnce.Do(startContainer)
	if errStart != nil {
		t.Fatalf("Failed to start postgres container: %v", errStart)
	}

	tDB, err := sql.Open("postgres", tConnStr)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := tDB.Close(); err != nil {
			t.Fatalf("Failed to close database connection: %v", err)
		}
	})

	dbName := randomDBName()

	_, err = tDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName)))
	if err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(tConnStr)
	if err != nil {
		t.Fatal(err)
	}

	u.Path = "/" + dbName
	connStr := u.String()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("Failed to close database connection: %v", err)
		}
	})

	return db, connStr
}

func randomDBName() string {
	const length = 15
	const charset = "abcdefghijklmnopqrstuvwxyz"

	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))] // #nosec G404
	}

	return "perfrun_" + string(b)
}
