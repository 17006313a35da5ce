package sql

import (
	"strings"

	"github.com/syssam/dbx"
	"github.com/syssam/dbx/dialect"
	"github.com/syssam/dbx/dialect/sql/schema"
)

// oracleInLimit is Oracle's hard ceiling on IN-list operands; larger lists
// are split into recombined chunks.
const oracleInLimit = 1000

// OracleBuilder compiles queries for Oracle: ROWNUM-based pagination,
// INSERT ALL batch inserts, RETURNING-INTO emulation for generated keys and
// named parameters kept through finalization.
type OracleBuilder struct {
	BaseBuilder
}

var oracleTypes = map[schema.Type]string{
	schema.TypeString:    "varchar2(255)",
	schema.TypeText:      "clob",
	schema.TypeInteger:   "number(10)",
	schema.TypeBigInt:    "number(20)",
	schema.TypeFloat:     "binary_double",
	schema.TypeDecimal:   "number",
	schema.TypeBoolean:   "number(1)",
	schema.TypeBinary:    "blob",
	schema.TypeTimestamp: "timestamp",
	schema.TypeDate:      "date",
	schema.TypeTime:      "timestamp",
	schema.TypeUUID:      "char(36)",
	schema.TypeJSON:      "clob",
}

// NewOracleBuilder returns the Oracle dialect builder.
func NewOracleBuilder() *OracleBuilder {
	b := &OracleBuilder{BaseBuilder{
		name:        dialect.Oracle,
		named:       true,
		inLimit:     oracleInLimit,
		likeEscape:  "!",
		likeReplace: []string{"!", "!!", "%", "!%", "_", "!_"},
		types:       oracleTypes,
	}}
	b.init(b)
	return b
}

// Insert overrides Builder: Oracle has no DEFAULT VALUES form, so an insert
// without column values is a capability mismatch rather than a build error.
func (b *OracleBuilder) Insert(table string, values map[string]any, tbl *schema.Table) (string, *Params, error) {
	if len(values) == 0 {
		return "", nil, dbx.NewUnsupportedError(dialect.Oracle, "INSERT without column values")
	}
	return b.BaseBuilder.Insert(table, values, tbl)
}

// BuildOrderByLimit overrides the ANSI form: Oracle (before 12c) has no
// OFFSET/LIMIT, so the ordered statement is wrapped in a CTE pair numbering
// rows with ROWNUM and filtered on the row number.
func (b *OracleBuilder) BuildOrderByLimit(sql string, q *Query, params *Params) (string, error) {
	orderBy, err := b.buildOrderBy(q, params)
	if err != nil {
		return "", err
	}
	if orderBy != "" {
		sql += " " + orderBy
	}
	if q.limit == nil && !hasOffset(q.offset) {
		return sql, nil
	}
	var filters []string
	if hasOffset(q.offset) {
		offset, err := b.limitValue(q.offset, params)
		if err != nil {
			return "", err
		}
		filters = append(filters, "rn > "+offset)
	}
	if q.limit != nil {
		limit, err := b.limitValue(q.limit, params)
		if err != nil {
			return "", err
		}
		filters = append(filters, "ROWNUM <= "+limit)
	}
	return "WITH base AS (" + sql + "), paginated AS (SELECT base.*, ROWNUM AS rn FROM base) " +
		"SELECT * FROM paginated WHERE " + strings.Join(filters, " AND "), nil
}

// SelectExists overrides Builder: Oracle cannot select a bare boolean, so
// the existence check is wrapped in a CASE expression against DUAL.
func (b *OracleBuilder) SelectExists(sql string) string {
	return "SELECT CASE WHEN EXISTS(" + sql + ") THEN 1 ELSE 0 END FROM DUAL"
}

// BatchInsert overrides Builder with the INSERT ALL form, Oracle's multi-row
// insert syntax.
func (b *OracleBuilder) BatchInsert(table string, columns []string, rows [][]any, tbl *schema.Table) (string, *Params, error) {
	params := NewParams()
	if len(rows) == 0 {
		return "", params, nil
	}
	if len(columns) == 0 {
		return "", nil, errf("batch insert", "requires a column list")
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.QuoteColumnName(c)
	}
	into := " INTO " + b.QuoteTableName(table) + " (" + strings.Join(quoted, ", ") + ") VALUES "
	var sb strings.Builder
	sb.WriteString("INSERT ALL")
	for _, row := range rows {
		cells := make([]string, len(columns))
		for j, column := range columns {
			if j >= len(row) || row[j] == nil {
				cells[j] = "NULL"
				continue
			}
			if e, ok := row[j].(*Expr); ok {
				params.Merge(e.Params)
				cells[j] = e.SQL
				continue
			}
			cells[j] = params.Bind(castValue(tbl, column, row[j]))
		}
		sb.WriteString(into)
		sb.WriteString("(" + strings.Join(cells, ", ") + ")")
	}
	sb.WriteString(" SELECT 1 FROM DUAL")
	return sb.String(), params, nil
}

// InsertReturning overrides Builder with the RETURNING ... INTO emulation:
// each returned column binds a dedicated OUT-style parameter the driver
// fills after execution. The returning list defaults to the table's primary
// key; without one there is nothing to return.
func (b *OracleBuilder) InsertReturning(table string, values map[string]any, tbl *schema.Table, returning []string) (string, *Params, error) {
	if len(returning) == 0 {
		returning = tbl.PrimaryKey()
	}
	if len(returning) == 0 {
		return "", nil, errf("insert returning", "no returning columns and no primary key metadata for %q", table)
	}
	sql, params, err := b.self.Insert(table, values, tbl)
	if err != nil {
		return "", nil, err
	}
	names := make([]string, len(returning))
	outs := make([]string, len(returning))
	for i, column := range returning {
		names[i] = b.QuoteColumnName(column)
		outs[i] = params.Bind(Out{Name: column})
	}
	return sql + " RETURNING " + strings.Join(names, ", ") + " INTO " + strings.Join(outs, ", "), params, nil
}
