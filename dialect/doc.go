// Package dialect provides database dialect abstraction for the dbx broker.
//
// This package defines the dialect names, capability sets and the interfaces
// the broker uses to talk to a connection, allowing dbx to target multiple
// database backends.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string:
//
//	dialect.MySQL    = "mysql"
//	dialect.Postgres = "postgres"
//	dialect.Oracle   = "oracle"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The Driver interface is the connection collaborator the broker executes
// through:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Close() error
//	    Dialect() string
//	}
//
// # Capabilities
//
// FeaturesFor reports what a backend can do (savepoints, native LIMIT/OFFSET,
// RETURNING, boolean SELECT results). The transaction manager and the query
// builders consult it instead of switching on dialect names.
//
// # Sub-packages
//
//   - dialect/sql: query compilation, clause assembly, driver implementation,
//     transaction manager and advisory locks
//   - dialect/sql/schema: column metadata and value casting
package dialect
