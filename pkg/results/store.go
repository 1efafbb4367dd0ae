// SPDX-License-Identifier: Apache-2.0

package results

import (
	"context"
	"fmt"
	"time"

	"github.com/xataio/perfrun/pkg/db"
)

// TeamName is the team every result is filed under.
const TeamName = "PHP"

// Dimension is a lookup table mapping a natural key to a generated identifier.
type Dimension struct {
	Table        string
	IDColumn     string
	KeyColumn    string
	ExtraColumns []string
}

var (
	Servers = Dimension{Table: "Servers", IDColumn: "ServerId", KeyColumn: "HostName", ExtraColumns: []string{"Version"}}
	Clients = Dimension{Table: "Clients", IDColumn: "ClientId", KeyColumn: "HostName"}
	Teams   = Dimension{Table: "Teams", IDColumn: "TeamId", KeyColumn: "TeamName"}
	Drivers = Dimension{Table: "Drivers", IDColumn: "DriverId", KeyColumn: "Hash", ExtraColumns: []string{"Arch", "FileDate"}}
	Tests   = Dimension{Table: "PerformanceTests", IDColumn: "TestId", KeyColumn: "TestName"}
)

// ExtrasFn supplies the non-key column values of a dimension row. It is only
// called when the row has to be created.
type ExtrasFn func(ctx context.Context) ([]any, error)

type Store struct {
	conn    db.DB
	dialect Dialect
}

func New(conn db.DB, dialect Dialect) *Store {
	return &Store{
		conn:    conn,
		dialect: dialect,
	}
}

// Init creates the results tables that do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, s.dialect.schema())
	return err
}

// IsInitialized reports whether the results tables have been created.
func (s *Store) IsInitialized(ctx context.Context) (bool, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE LOWER(TABLE_NAME) = 'performanceresults'")
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var n int
	if err := db.ScanFirstValue(rows, &n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// GetOrCreate returns the identifier of the row of dimension d whose natural
// key is key, inserting the row first if it does not exist.
//
// The operation is idempotent but not atomic: it is a lookup, an insert and a
// second lookup. Two writers racing on the same new key can both insert it;
// lookups then resolve to the lowest identifier so both converge on the same
// row, but the duplicate remains. Multi-writer use needs a uniqueness
// constraint on the key column.
func (s *Store) GetOrCreate(ctx context.Context, d Dimension, key any, extras ExtrasFn) (int64, error) {
	id, found, err := s.lookup(ctx, d, key)
	if err != nil {
		return 0, fmt.Errorf("looking up %s: %w", d.Table, err)
	}
	if found {
		return id, nil
	}

	var values []any
	if extras != nil {
		values, err = extras(ctx)
		if err != nil {
			return 0, fmt.Errorf("preparing %s entry: %w", d.Table, err)
		}
	}
	if len(values) != len(d.ExtraColumns) {
		return 0, fmt.Errorf("%s entry needs %d extra values, got %d", d.Table, len(d.ExtraColumns), len(values))
	}

	columns := append([]string{d.KeyColumn}, d.ExtraColumns...)
	args := append([]any{key}, values...)
	if _, err := s.conn.ExecContext(ctx, s.dialect.insert(d.Table, columns), args...); err != nil {
		return 0, fmt.Errorf("inserting %s entry: %w", d.Table, err)
	}

	id, found, err = s.lookup(ctx, d, key)
	if err != nil {
		return 0, fmt.Errorf("looking up %s: %w", d.Table, err)
	}
	if !found {
		return 0, fmt.Errorf("%s entry %v not found after insert", d.Table, key)
	}
	return id, nil
}

func (s *Store) lookup(ctx context.Context, d Dimension, key any) (int64, bool, error) {
	query := fmt.Sprintf("SELECT %[1]s FROM %[2]s WHERE %[3]s = %[4]s ORDER BY %[1]s",
		d.IDColumn, d.Table, d.KeyColumn, s.dialect.placeholder(1))

	rows, err := s.conn.QueryContext(ctx, query, key)
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, false, rows.Err()
	}

	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// ServerID resolves the benchmark target server by host name. version is
// only called the first time a server is seen.
func (s *Store) ServerID(ctx context.Context, hostName string, version func(context.Context) (string, error)) (int64, error) {
	return s.GetOrCreate(ctx, Servers, hostName, func(ctx context.Context) ([]any, error) {
		v, err := version(ctx)
		if err != nil {
			return nil, fmt.Errorf("server version: %w", err)
		}
		return []any{v}, nil
	})
}

func (s *Store) ClientID(ctx context.Context, hostName string) (int64, error) {
	return s.GetOrCreate(ctx, Clients, hostName, nil)
}

func (s *Store) TeamID(ctx context.Context, name string) (int64, error) {
	return s.GetOrCreate(ctx, Teams, name, nil)
}

func (s *Store) TestID(ctx context.Context, name string) (int64, error) {
	return s.GetOrCreate(ctx, Tests, name, nil)
}

// Driver identifies an installed driver binary by the hash of its content.
type Driver struct {
	Hash     string
	Arch     string
	FileDate time.Time
}

func (s *Store) DriverID(ctx context.Context, d Driver) (int64, error) {
	return s.GetOrCreate(ctx, Drivers, d.Hash, func(context.Context) ([]any, error) {
		return []any{d.Arch, d.FileDate}, nil
	})
}

// Fact is one benchmark execution.
type Fact struct {
	TestID   int64
	ClientID int64
	DriverID int64
	ServerID int64
	TeamID   int64
	Success  bool
}

// InsertResult stores a fact row and returns its generated identifier.
func (s *Store) InsertResult(ctx context.Context, f Fact) (int64, error) {
	query := s.dialect.insertReturningID("PerformanceResults", "ResultId",
		[]string{"TestId", "ClientId", "DriverId", "ServerId", "TeamId", "Success"})

	rows, err := s.conn.QueryContext(ctx, query, f.TestID, f.ClientID, f.DriverID, f.ServerID, f.TeamID, f.Success)
	if err != nil {
		return 0, fmt.Errorf("inserting result: %w", err)
	}
	defer rows.Close()

	var id int64
	if err := db.ScanFirstValue(rows, &id); err != nil {
		return 0, fmt.Errorf("reading result id: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("inserting result: no identifier returned")
	}
	return id, nil
}

// InsertAttribute attaches a named value to a stored result.
func (s *Store) InsertAttribute(ctx context.Context, resultID int64, a Attribute) error {
	query := s.dialect.insert(a.Kind.table(), []string{"ResultId", "Name", "Value"})

	if _, err := s.conn.ExecContext(ctx, query, resultID, a.Name, a.Value); err != nil {
		return fmt.Errorf("inserting attribute %q: %w", a.Name, err)
	}
	return nil
}
