// SPDX-License-Identifier: Apache-2.0

package results_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/perfrun/internal/testutils"
	"github.com/xataio/perfrun/pkg/phpbench"
	"github.com/xataio/perfrun/pkg/results"
	"github.com/xataio/perfrun/pkg/testnames"
)

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func TestInitIsIdempotent(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(store *results.Store, db *sql.DB) {
		require.NoError(t, store.Init(context.Background()))

		n := countRows(t, db, "SELECT count(*) FROM information_schema.tables WHERE table_schema = 'public'")
		assert.Equal(t, 9, n)

		ok, err := store.IsInitialized(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestIsInitializedOnEmptyDatabase(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(db *sql.DB, _ string) {
		ok, err := results.New(db, results.Postgres).IsInitialized(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGetOrCreateInContainer(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(store *results.Store, db *sql.DB) {
		ctx := context.Background()

		versionCalls := 0
		version := func(context.Context) (string, error) {
			versionCalls++
			return "Microsoft SQL Server 2016 (RTM)", nil
		}

		first, err := store.ServerID(ctx, "db.example.com", version)
		require.NoError(t, err)
		second, err := store.ServerID(ctx, "db.example.com", version)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, versionCalls)
		assert.Equal(t, 1, countRows(t, db, "SELECT count(*) FROM Servers"))

		other, err := store.ServerID(ctx, "db2.example.com", version)
		require.NoError(t, err)
		assert.NotEqual(t, first, other)

		driver := results.Driver{
			Hash:     "0xabc",
			Arch:     "x64",
			FileDate: time.Date(2017, 5, 1, 8, 0, 0, 0, time.UTC),
		}
		d1, err := store.DriverID(ctx, driver)
		require.NoError(t, err)
		d2, err := store.DriverID(ctx, driver)
		require.NoError(t, err)
		assert.Equal(t, d1, d2)
	})
}

func TestGetOrCreateConvergesOnLowestID(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(store *results.Store, db *sql.DB) {
		ctx := context.Background()

		_, err := db.ExecContext(ctx, "INSERT INTO Teams (TeamName) VALUES ('PHP'), ('PHP')")
		require.NoError(t, err)

		var lowest int64
		require.NoError(t, db.QueryRowContext(ctx, "SELECT min(TeamId) FROM Teams").Scan(&lowest))

		id, err := store.TeamID(ctx, results.TeamName)
		require.NoError(t, err)
		assert.Equal(t, lowest, id)
	})
}

func TestPersistInContainer(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(store *results.Store, db *sql.DB) {
		ctx := context.Background()

		serverID, err := store.ServerID(ctx, "db.example.com", func(context.Context) (string, error) {
			return "Microsoft SQL Server 2016 (RTM)", nil
		})
		require.NoError(t, err)
		clientID, err := store.ClientID(ctx, "bench-01")
		require.NoError(t, err)
		teamID, err := store.TeamID(ctx, results.TeamName)
		require.NoError(t, err)
		driverID, err := store.DriverID(ctx, results.Driver{Hash: "0xabc", Arch: "x64", FileDate: time.Now().UTC()})
		require.NoError(t, err)

		dims := results.Dimensions{ServerID: serverID, ClientID: clientID, TeamID: teamID, DriverID: driverID}

		report, err := phpbench.ParseReportFile("../phpbench/testdata/sqlsrv-results.xml")
		require.NoError(t, err)

		n, err := store.Persist(ctx, dims, testRun, testEnv, testnames.Default, report)
		require.NoError(t, err)
		assert.Equal(t, len(report), n)

		// Running the same report again reuses the test rows.
		_, err = store.Persist(ctx, dims, testRun, testEnv, testnames.Default, report)
		require.NoError(t, err)

		assert.Equal(t, len(report), countRows(t, db, "SELECT count(*) FROM PerformanceTests"))
		assert.Equal(t, 2*len(report), countRows(t, db, "SELECT count(*) FROM PerformanceResults"))
		assert.Equal(t, 2, countRows(t, db, "SELECT count(*) FROM PerformanceResults WHERE NOT Success"))
		assert.Equal(t, 2, countRows(t, db, "SELECT count(*) FROM KeyValueTableString WHERE Name = 'error'"))
		assert.Equal(t, 2*len(report), countRows(t, db, "SELECT count(*) FROM KeyValueTableString WHERE Name = 'run_id'"))

		var duration int64
		require.NoError(t, db.QueryRowContext(ctx, `
			SELECT kv.Value FROM KeyValueTableBigInt kv
			JOIN PerformanceResults r ON r.ResultId = kv.ResultId
			JOIN PerformanceTests t ON t.TestId = r.TestId
			WHERE t.TestName = 'connection' AND kv.Name = 'duration'
			LIMIT 1`).Scan(&duration))
		assert.Equal(t, int64(4), duration)
	})
}
