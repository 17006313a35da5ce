package sql

import (
	"context"
	dsql "database/sql"
	"fmt"
	"sync/atomic"

	"github.com/syssam/dbx"
	"github.com/syssam/dbx/dialect"
)

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (dsql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*dsql.Rows, error)
}

// Conn implements dialect.ExecQuerier given an ExecQuerier. Driver failures
// surface as *dbx.ExecutionError; the broker never retries them.
type Conn struct {
	ExecQuerier
	dialect string
}

// Exec implements the dialect.Exec method.
func (c Conn) Exec(ctx context.Context, query string, args, v any) error {
	argv, ok := args.([]any)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	switch v := v.(type) {
	case nil:
		if _, err := c.ExecContext(ctx, query, argv...); err != nil {
			return dbx.NewExecutionError(query, err)
		}
	case *dsql.Result:
		res, err := c.ExecContext(ctx, query, argv...)
		if err != nil {
			return dbx.NewExecutionError(query, err)
		}
		*v = res
	default:
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Result", v)
	}
	return nil
}

// Query implements the dialect.Query method.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	vr, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Rows", v)
	}
	argv, ok := args.([]any)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	rows, err := c.QueryContext(ctx, query, argv...)
	if err != nil {
		return dbx.NewExecutionError(query, err)
	}
	*vr = Rows{rows}
	return nil
}

// Driver is a dialect.Driver implementation over database/sql, paired with
// the dialect's query builder.
type Driver struct {
	Conn
	dialect string
	builder Builder
	closed  atomic.Bool
}

// NewDriver creates a new Driver with the given Conn and dialect.
func NewDriver(dialect string, c Conn) *Driver {
	return &Driver{dialect: dialect, Conn: c, builder: NewBuilder(dialect)}
}

// Open wraps database/sql.Open and returns a broker Driver. The driver name
// passed to database/sql is the dialect name; register the backend driver
// under that name (the usual blank import) before calling Open.
func Open(dialect, source string) (*Driver, error) {
	db, err := dsql.Open(dialect, source)
	if err != nil {
		return nil, dbx.NewConfigurationError("open", err)
	}
	return NewDriver(dialect, Conn{db, dialect}), nil
}

// OpenDB wraps an existing database/sql.DB with a Driver.
func OpenDB(dialect string, db *dsql.DB) *Driver {
	return NewDriver(dialect, Conn{db, dialect})
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *dsql.DB {
	return d.ExecQuerier.(*dsql.DB)
}

// Dialect implements the dialect.Driver method.
func (d *Driver) Dialect() string { return d.dialect }

// Builder returns the dialect's query builder.
func (d *Driver) Builder() Builder { return d.builder }

// IsOpen reports whether the driver is usable. Transaction operations demand
// an open driver before issuing any command.
func (d *Driver) IsOpen() bool { return d != nil && !d.closed.Load() }

// Close closes the underlying connection pool.
func (d *Driver) Close() error {
	d.closed.Store(true)
	return d.DB().Close()
}

// Session pins a single connection out of the pool. The nested transaction
// manager operates on a session: BEGIN and SAVEPOINT are statement-level
// commands that must all reach the same backend session.
func (d *Driver) Session(ctx context.Context) (*Session, error) {
	if !d.IsOpen() {
		return nil, dbx.ErrNotOpen
	}
	conn, err := d.DB().Conn(ctx)
	if err != nil {
		return nil, dbx.NewConfigurationError("session", err)
	}
	return &Session{Conn: Conn{conn, d.dialect}, conn: conn, driver: d}, nil
}

// Session is a single pinned connection.
type Session struct {
	Conn
	conn   *dsql.Conn
	driver *Driver
}

// Dialect returns the dialect name of the session.
func (s *Session) Dialect() string { return s.driver.dialect }

// Builder returns the dialect's query builder.
func (s *Session) Builder() Builder { return s.driver.builder }

// IsOpen reports whether the session's driver is still open.
func (s *Session) IsOpen() bool { return s != nil && s.driver.IsOpen() }

// Close returns the connection to the pool.
func (s *Session) Close() error { return s.conn.Close() }

var _ dialect.Driver = (*Driver)(nil)

type (
	// Rows wraps the sql.Rows to avoid locks copy.
	Rows struct{ ColumnScanner }
	// Result is an alias to sql.Result.
	Result = dsql.Result
	// NullBool is an alias to sql.NullBool.
	NullBool = dsql.NullBool
	// NullInt64 is an alias to sql.NullInt64.
	NullInt64 = dsql.NullInt64
	// NullString is an alias to sql.NullString.
	NullString = dsql.NullString
	// NullFloat64 is an alias to sql.NullFloat64.
	NullFloat64 = dsql.NullFloat64
	// NullTime represents a time.Time that may be null.
	NullTime = dsql.NullTime
)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	ColumnTypes() ([]*dsql.ColumnType, error)
	Columns() ([]string, error)
	Err() error
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
}
