package dialect

import "context"

// Supported dialect names.
const (
	// MySQL is the dialect name for MySQL/MariaDB.
	MySQL = "mysql"
	// Postgres is the dialect name for PostgreSQL.
	Postgres = "postgres"
	// Oracle is the dialect name for Oracle Database.
	Oracle = "oracle"
	// SQLite is the dialect name for SQLite.
	SQLite = "sqlite"
)

// ExecQuerier wraps the two database operations the broker issues.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. The args is
	// expected to be []any, and v an optional *sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows, typically a SELECT,
	// binding v to a *sql.Rows wrapper.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the minimal interface a connection collaborator implements.
type Driver interface {
	ExecQuerier
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Features describes backend capabilities the transaction manager and the
// query builders consult.
type Features struct {
	// Savepoints reports whether the backend supports SAVEPOINT, RELEASE
	// SAVEPOINT and ROLLBACK TO SAVEPOINT.
	Savepoints bool
	// OffsetLimit reports whether the backend supports native
	// LIMIT/OFFSET pagination.
	OffsetLimit bool
	// Returning reports whether INSERT can return generated values natively.
	Returning bool
	// SelectExists reports whether EXISTS may appear directly in a select
	// list; backends without it wrap the check in a CASE expression.
	SelectExists bool
}

// FeaturesFor returns the capability set of the named dialect. Unknown
// dialects get conservative ANSI defaults.
func FeaturesFor(name string) Features {
	switch name {
	case MySQL:
		return Features{Savepoints: true, OffsetLimit: true, SelectExists: true}
	case Postgres:
		return Features{Savepoints: true, OffsetLimit: true, Returning: true, SelectExists: true}
	case SQLite:
		return Features{Savepoints: true, OffsetLimit: true, Returning: true, SelectExists: true}
	case Oracle:
		return Features{Savepoints: true}
	default:
		return Features{OffsetLimit: true, SelectExists: true}
	}
}
