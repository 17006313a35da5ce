// Package sql compiles dialect-neutral query descriptions into parameterized
// SQL and manages nested transactions over database/sql connections.
//
// This package is the core of the broker. A query is described once, as a
// condition tree plus clause intent, and compiled per backend (MySQL,
// PostgreSQL, Oracle, SQLite) with correct identifier quoting, pagination,
// IN-list ceilings, batch insert, and RETURNING emulation.
//
// # Conditions
//
// Conditions form a closed tree of operator variants:
//
//	sql.Hash{"status": "active", "type": 2}    // status=:qp0 AND type=:qp1
//	sql.And(c1, c2)                            // (c1) AND (c2)
//	sql.In("id", []int{1, 2, 3})               // id IN (:qp0, :qp1, :qp2)
//	sql.Between("age", 18, 65)                 // age BETWEEN :qp0 AND :qp1
//	sql.Like("name", "john")                   // name LIKE :qp0
//	sql.Exists(sub)                            // EXISTS (SELECT ...)
//	sql.GT("price", 100)                       // price > :qp0
//
// # Queries
//
// The Query type accumulates clause intent through a fluent API:
//
//	q := sql.NewQuery().
//	    Select("id", "name").
//	    From("users u").
//	    LeftJoin("orders o", sql.Raw("o.user_id = u.id")).
//	    Where(sql.Hash{"u.status": "active"}).
//	    OrderBy(sql.Desc("u.created_at")).
//	    Limit(10)
//
// # Compilation
//
// Builders render a Query for one dialect. The compiled text carries named
// placeholders (:qp0, :qp1, ...) and an ordered parameter table; Finalize
// rewrites both into the backend driver's native argument style:
//
//	b := sql.NewBuilder(dialect.Postgres)
//	stmt, params, err := b.BuildQuery(q)
//	text, args := b.Finalize(stmt, params)
//
// # Transactions
//
// TxManager tracks a nesting level over one pinned connection, emulating
// nested transactions with level-named savepoints where the backend supports
// them:
//
//	tx := sql.NewTxManager(drv)
//	err := tx.RunInTx(ctx, func(ctx context.Context) error {
//	    return tx.Conn().Exec(ctx, text, args, nil)
//	})
//
// # Execution
//
// Driver wraps database/sql and reports backend failures as
// *dbx.ExecutionError. StatsDriver and DebugDriver layer statistics and
// statement logging over any driver; Locker exposes backend advisory locks.
package sql
