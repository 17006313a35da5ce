package sql

import (
	"github.com/syssam/dbx"
	"github.com/syssam/dbx/dialect"
	"github.com/syssam/dbx/dialect/sql/schema"
)

// MySQLBuilder compiles queries for MySQL/MariaDB: backtick quoting,
// "LIMIT offset, limit" pagination and no RETURNING support.
type MySQLBuilder struct {
	BaseBuilder
}

var mysqlTypes = map[schema.Type]string{
	schema.TypeString:    "varchar(255)",
	schema.TypeText:      "text",
	schema.TypeInteger:   "int(11)",
	schema.TypeBigInt:    "bigint(20)",
	schema.TypeFloat:     "double",
	schema.TypeDecimal:   "decimal(10,0)",
	schema.TypeBoolean:   "tinyint(1)",
	schema.TypeBinary:    "blob",
	schema.TypeTimestamp: "timestamp",
	schema.TypeDate:      "date",
	schema.TypeTime:      "time",
	schema.TypeUUID:      "char(36)",
	schema.TypeJSON:      "json",
}

// NewMySQLBuilder returns the MySQL dialect builder.
func NewMySQLBuilder() *MySQLBuilder {
	b := &MySQLBuilder{BaseBuilder{
		name:        dialect.MySQL,
		colQuote:    "`",
		tblQuote:    "`",
		emptyInsert: "INSERT INTO %s VALUES ()",
		types:       mysqlTypes,
	}}
	b.init(b)
	return b
}

// BuildOrderByLimit overrides the ANSI form with MySQL's comma syntax. An
// offset without a limit pins the limit to the documented maximum row count,
// since MySQL has no way to express "all remaining rows".
func (b *MySQLBuilder) BuildOrderByLimit(sql string, q *Query, params *Params) (string, error) {
	orderBy, err := b.buildOrderBy(q, params)
	if err != nil {
		return "", err
	}
	if orderBy != "" {
		sql += " " + orderBy
	}
	switch {
	case hasOffset(q.offset):
		offset, err := b.limitValue(q.offset, params)
		if err != nil {
			return "", err
		}
		limit := "18446744073709551615"
		if q.limit != nil {
			if limit, err = b.limitValue(q.limit, params); err != nil {
				return "", err
			}
		}
		return sql + " LIMIT " + offset + ", " + limit, nil
	case q.limit != nil:
		limit, err := b.limitValue(q.limit, params)
		if err != nil {
			return "", err
		}
		return sql + " LIMIT " + limit, nil
	default:
		return sql, nil
	}
}

// InsertReturning overrides Builder: MySQL cannot return generated values
// from an INSERT; callers use LAST_INSERT_ID() instead.
func (b *MySQLBuilder) InsertReturning(string, map[string]any, *schema.Table, []string) (string, *Params, error) {
	return "", nil, dbx.NewUnsupportedError(dialect.MySQL, "INSERT with returning values")
}
