// SPDX-License-Identifier: Apache-2.0

package results_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/perfrun/pkg/results"
)

func newMockStore(t *testing.T, dialect results.Dialect) (*results.Store, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})

	return results.New(conn, dialect), mock
}

func idRows(column string, ids ...int64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{column})
	for _, id := range ids {
		rows.AddRow(id)
	}
	return rows
}

func TestGetOrCreateReturnsExistingRow(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t, results.Postgres)

	mock.ExpectQuery("SELECT ServerId FROM Servers WHERE HostName = $1 ORDER BY ServerId").
		WithArgs("db.example.com").
		WillReturnRows(idRows("ServerId", 7))

	id, err := store.ServerID(context.Background(), "db.example.com", func(context.Context) (string, error) {
		t.Fatal("server version must only be fetched for new servers")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestGetOrCreateInsertsMissingRow(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t, results.Postgres)

	lookup := "SELECT ServerId FROM Servers WHERE HostName = $1 ORDER BY ServerId"
	mock.ExpectQuery(lookup).WithArgs("db.example.com").WillReturnRows(idRows("ServerId"))
	mock.ExpectExec("INSERT INTO Servers (HostName, Version) VALUES ($1, $2)").
		WithArgs("db.example.com", "Microsoft SQL Server 2016").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(lookup).WithArgs("db.example.com").WillReturnRows(idRows("ServerId", 3))

	calls := 0
	id, err := store.ServerID(context.Background(), "db.example.com", func(context.Context) (string, error) {
		calls++
		return "Microsoft SQL Server 2016", nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, 1, calls)
}

func TestGetOrCreateResolvesDuplicatesToLowestID(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t, results.Postgres)

	mock.ExpectQuery("SELECT ClientId FROM Clients WHERE HostName = $1 ORDER BY ClientId").
		WithArgs("perf-client").
		WillReturnRows(idRows("ClientId", 2, 5))

	id, err := store.ClientID(context.Background(), "perf-client")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestGetOrCreateSQLServer(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t, results.SQLServer)

	fileDate := time.Date(2017, 6, 1, 12, 0, 0, 0, time.UTC)
	lookup := "SELECT DriverId FROM Drivers WHERE Hash = @p1 ORDER BY DriverId"
	mock.ExpectQuery(lookup).WithArgs("0xabc").WillReturnRows(idRows("DriverId"))
	mock.ExpectExec("INSERT INTO Drivers (Hash, Arch, FileDate) VALUES (@p1, @p2, @p3)").
		WithArgs("0xabc", "x64", fileDate).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(lookup).WithArgs("0xabc").WillReturnRows(idRows("DriverId", 11))

	id, err := store.DriverID(context.Background(), results.Driver{Hash: "0xabc", Arch: "x64", FileDate: fileDate})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestGetOrCreateErrors(t *testing.T) {
	t.Parallel()

	t.Run("extras fail", func(t *testing.T) {
		store, mock := newMockStore(t, results.Postgres)

		mock.ExpectQuery("SELECT ServerId FROM Servers WHERE HostName = $1 ORDER BY ServerId").
			WithArgs("db").
			WillReturnRows(idRows("ServerId"))

		_, err := store.ServerID(context.Background(), "db", func(context.Context) (string, error) {
			return "", errors.New("login failed")
		})
		require.ErrorContains(t, err, "login failed")
	})

	t.Run("row missing after insert", func(t *testing.T) {
		store, mock := newMockStore(t, results.Postgres)

		lookup := "SELECT TeamId FROM Teams WHERE TeamName = $1 ORDER BY TeamId"
		mock.ExpectQuery(lookup).WithArgs("PHP").WillReturnRows(idRows("TeamId"))
		mock.ExpectExec("INSERT INTO Teams (TeamName) VALUES ($1)").
			WithArgs("PHP").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(lookup).WithArgs("PHP").WillReturnRows(idRows("TeamId"))

		_, err := store.TeamID(context.Background(), "PHP")
		require.ErrorContains(t, err, "not found after insert")
	})

	t.Run("wrong number of extra values", func(t *testing.T) {
		store, mock := newMockStore(t, results.Postgres)

		mock.ExpectQuery("SELECT ServerId FROM Servers WHERE HostName = $1 ORDER BY ServerId").
			WithArgs("db").
			WillReturnRows(idRows("ServerId"))

		_, err := store.GetOrCreate(context.Background(), results.Servers, "db", nil)
		require.ErrorContains(t, err, "needs 1 extra values, got 0")
	})
}

func TestInsertResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dialect results.Dialect
		query   string
	}{
		{
			dialect: results.Postgres,
			query:   "INSERT INTO PerformanceResults (TestId, ClientId, DriverId, ServerId, TeamId, Success) VALUES ($1, $2, $3, $4, $5, $6) RETURNING ResultId",
		},
		{
			dialect: results.SQLServer,
			query:   "INSERT INTO PerformanceResults (TestId, ClientId, DriverId, ServerId, TeamId, Success) OUTPUT INSERTED.ResultId VALUES (@p1, @p2, @p3, @p4, @p5, @p6)",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			store, mock := newMockStore(t, tt.dialect)

			mock.ExpectQuery(tt.query).
				WithArgs(int64(1), int64(2), int64(3), int64(4), int64(5), true).
				WillReturnRows(idRows("ResultId", 42))

			id, err := store.InsertResult(context.Background(), results.Fact{
				TestID: 1, ClientID: 2, DriverID: 3, ServerID: 4, TeamID: 5, Success: true,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(42), id)
		})
	}
}

func TestInsertAttribute(t *testing.T) {
	t.Parallel()

	start := time.Date(2017, 6, 20, 10, 12, 45, 0, time.UTC)

	tests := []struct {
		attr  results.Attribute
		query string
		value driver.Value
	}{
		{attr: results.Int("duration", 4), query: "INSERT INTO KeyValueTableBigInt (ResultId, Name, Value) VALUES ($1, $2, $3)", value: int64(4)},
		{attr: results.Flag("mars", true), query: "INSERT INTO KeyValueTableBigInt (ResultId, Name, Value) VALUES ($1, $2, $3)", value: int64(1)},
		{attr: results.Flag("pooling", false), query: "INSERT INTO KeyValueTableBigInt (ResultId, Name, Value) VALUES ($1, $2, $3)", value: int64(0)},
		{attr: results.Date("startTime", start), query: "INSERT INTO KeyValueTableDate (ResultId, Name, Value) VALUES ($1, $2, $3)", value: start},
		{attr: results.String("os", "Ubuntu16"), query: "INSERT INTO KeyValueTableString (ResultId, Name, Value) VALUES ($1, $2, $3)", value: "Ubuntu16"},
	}

	for _, tt := range tests {
		t.Run(tt.attr.Name, func(t *testing.T) {
			store, mock := newMockStore(t, results.Postgres)

			mock.ExpectExec(tt.query).
				WithArgs(int64(42), tt.attr.Name, tt.value).
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, store.InsertAttribute(context.Background(), 42, tt.attr))
		})
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherFunc(func(_, actual string) error {
		if !assert.Contains(t, actual, "CREATE TABLE IF NOT EXISTS PerformanceResults") {
			return errors.New("unexpected schema")
		}
		return nil
	})))
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec("schema").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, results.New(conn, results.Postgres).Init(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParseDialect(t *testing.T) {
	t.Parallel()

	d, err := results.ParseDialect("sqlserver")
	require.NoError(t, err)
	assert.Equal(t, results.SQLServer, d)
	assert.Equal(t, "sqlserver", d.DriverName())

	d, err = results.ParseDialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, results.Postgres, d)

	_, err = results.ParseDialect("mysql")
	assert.EqualError(t, err, `unknown results database driver "mysql", must be one of: sqlserver, postgres`)
}

func TestIsInitialized(t *testing.T) {
	t.Parallel()

	const query = "SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE LOWER(TABLE_NAME) = 'performanceresults'"

	for name, count := range map[string]int64{"initialized": 1, "empty database": 0} {
		t.Run(name, func(t *testing.T) {
			store, mock := newMockStore(t, results.SQLServer)

			mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))

			ok, err := store.IsInitialized(context.Background())
			require.NoError(t, err)
			assert.Equal(t, count > 0, ok)
		})
	}
}
