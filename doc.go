// Package dbx is a database-access broker: a single abstract query
// representation compiled to dialect-correct, parameterized SQL for multiple
// backends, plus a nested-transaction manager with savepoint emulation.
//
// # Supported Backends
//
//   - MySQL: backtick quoting, multi-row batch insert
//   - Postgres: double-quote quoting, typed binary parameters
//   - Oracle: ROWNUM pagination, INSERT ALL, RETURNING-INTO emulation
//   - SQLite: ANSI defaults
//
// # Building Queries
//
// Queries are described with a dialect-neutral intent and compiled by a
// per-backend builder:
//
//	import "github.com/syssam/dbx/dialect"
//	import "github.com/syssam/dbx/dialect/sql"
//
//	q := sql.NewQuery().
//	    Select("id", "name").
//	    From("users").
//	    Where(sql.Hash{"status": "active"}).
//	    OrderBy(sql.Asc("name")).
//	    Limit(10)
//
//	b := sql.NewBuilder(dialect.Postgres)
//	stmt, params, err := b.BuildQuery(q)
//
// The compiled statement carries named placeholders (:qp0, :qp1, ...) paired
// with an ordered parameter table. Finalize rewrites the statement into the
// driver's native placeholder style for execution:
//
//	text, args := b.Finalize(stmt, params)
//	err = drv.Exec(ctx, text, args, nil)
//
// # Transactions
//
// The transaction manager tracks a nesting level per connection and emulates
// nested transactions with savepoints where the backend supports them:
//
//	tx := sql.NewTxManager(drv)
//	err := tx.RunInTx(ctx, func(ctx context.Context) error {
//	    // unit of work
//	    return nil
//	})
//
// # Error Taxonomy
//
// All failures fall into one of five categories: ConfigurationError,
// BuildError, TxStateError, UnsupportedError, and ExecutionError. See the
// Is* helpers in this package. No operation in the core retries.
package dbx
