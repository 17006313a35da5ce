package sql

import (
	"github.com/syssam/dbx/dialect"
	"github.com/syssam/dbx/dialect/sql/schema"
)

// SQLiteBuilder compiles queries for SQLite, which follows the ANSI defaults
// except that an OFFSET requires an explicit LIMIT.
type SQLiteBuilder struct {
	BaseBuilder
}

var sqliteTypes = map[schema.Type]string{
	schema.TypeString:    "varchar(255)",
	schema.TypeText:      "text",
	schema.TypeInteger:   "integer",
	schema.TypeBigInt:    "integer",
	schema.TypeFloat:     "real",
	schema.TypeDecimal:   "numeric",
	schema.TypeBoolean:   "boolean",
	schema.TypeBinary:    "blob",
	schema.TypeTimestamp: "timestamp",
	schema.TypeDate:      "date",
	schema.TypeTime:      "time",
	schema.TypeUUID:      "char(36)",
	schema.TypeJSON:      "text",
}

// NewSQLiteBuilder returns the SQLite dialect builder.
func NewSQLiteBuilder() *SQLiteBuilder {
	b := &SQLiteBuilder{BaseBuilder{
		name:  dialect.SQLite,
		types: sqliteTypes,
	}}
	b.init(b)
	return b
}

// BuildOrderByLimit overrides the ANSI form only when an offset appears
// without a limit: SQLite rejects a bare OFFSET, so the limit is pinned
// to -1 (unlimited).
func (b *SQLiteBuilder) BuildOrderByLimit(sql string, q *Query, params *Params) (string, error) {
	if q.limit == nil && hasOffset(q.offset) {
		offset, err := b.limitValue(q.offset, params)
		if err != nil {
			return "", err
		}
		orderBy, err := b.buildOrderBy(q, params)
		if err != nil {
			return "", err
		}
		if orderBy != "" {
			sql += " " + orderBy
		}
		return sql + " LIMIT -1 OFFSET " + offset, nil
	}
	return b.BaseBuilder.BuildOrderByLimit(sql, q, params)
}
