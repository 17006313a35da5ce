package sql

import (
	"github.com/syssam/dbx/dialect"
	"github.com/syssam/dbx/dialect/sql/schema"
)

// PostgresBuilder compiles queries for PostgreSQL: double-quote quoting,
// $N placeholders, ILIKE for case-insensitive matching and native RETURNING.
type PostgresBuilder struct {
	BaseBuilder
}

var postgresTypes = map[schema.Type]string{
	schema.TypeString:    "varchar(255)",
	schema.TypeText:      "text",
	schema.TypeInteger:   "integer",
	schema.TypeBigInt:    "bigint",
	schema.TypeFloat:     "double precision",
	schema.TypeDecimal:   "numeric(10,0)",
	schema.TypeBoolean:   "boolean",
	schema.TypeBinary:    "bytea",
	schema.TypeTimestamp: "timestamp",
	schema.TypeDate:      "date",
	schema.TypeTime:      "time",
	schema.TypeUUID:      "uuid",
	schema.TypeJSON:      "jsonb",
}

// NewPostgresBuilder returns the PostgreSQL dialect builder.
func NewPostgresBuilder() *PostgresBuilder {
	b := &PostgresBuilder{BaseBuilder{
		name:       dialect.Postgres,
		positional: true,
		likeFoldOp: "ILIKE",
		types:      postgresTypes,
	}}
	b.init(b)
	return b
}

// Insert overrides Builder to normalize binary-column values into typed
// parameters before binding: string values destined for bytea columns are
// converted to []byte so the driver sends them in binary form rather than
// as text literals.
func (b *PostgresBuilder) Insert(table string, values map[string]any, tbl *schema.Table) (string, *Params, error) {
	return b.BaseBuilder.Insert(table, normalizeBinary(values, tbl), tbl)
}

// BatchInsert applies the same binary normalization as Insert.
func (b *PostgresBuilder) BatchInsert(table string, columns []string, rows [][]any, tbl *schema.Table) (string, *Params, error) {
	if tbl != nil {
		normalized := make([][]any, len(rows))
		for i, row := range rows {
			out := make([]any, len(row))
			copy(out, row)
			for j, column := range columns {
				if j < len(out) {
					out[j] = binaryValue(tbl.Column(column), out[j])
				}
			}
			normalized[i] = out
		}
		rows = normalized
	}
	return b.BaseBuilder.BatchInsert(table, columns, rows, tbl)
}

func normalizeBinary(values map[string]any, tbl *schema.Table) map[string]any {
	if tbl == nil {
		return values
	}
	out := make(map[string]any, len(values))
	for column, v := range values {
		out[column] = binaryValue(tbl.Column(column), v)
	}
	return out
}

func binaryValue(c *schema.Column, v any) any {
	if c == nil || c.Type != schema.TypeBinary {
		return v
	}
	if s, ok := v.(string); ok {
		return []byte(s)
	}
	return v
}
