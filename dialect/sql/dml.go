package sql

import (
	"fmt"
	"strings"

	"github.com/syssam/dbx/dialect/sql/schema"
)

// castValue runs a value through the column metadata when available; absent
// metadata leaves the value opaque.
func castValue(tbl *schema.Table, column string, v any) any {
	if tbl == nil {
		return v
	}
	if c := tbl.Column(column); c != nil {
		return c.Cast(v)
	}
	return v
}

// Insert implements Builder.
func (b *BaseBuilder) Insert(table string, values map[string]any, tbl *schema.Table) (string, *Params, error) {
	params := NewParams()
	if len(values) == 0 {
		if b.emptyInsert == "" {
			return "", nil, errf("insert", "%s requires at least one column value", b.name)
		}
		return fmt.Sprintf(b.emptyInsert, b.self.QuoteTableName(table)), params, nil
	}
	columns := sortedKeys(values)
	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, column := range columns {
		names[i] = b.self.QuoteColumnName(column)
		v := values[column]
		switch value := v.(type) {
		case *Query:
			return "", nil, errf("insert", "sub-query value for column %q; use InsertSelect", column)
		case *Expr:
			params.Merge(value.Params)
			placeholders[i] = value.SQL
		default:
			placeholders[i] = params.Bind(castValue(tbl, column, v))
		}
	}
	sql := "INSERT INTO " + b.self.QuoteTableName(table) +
		" (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
	return sql, params, nil
}

// InsertReturning implements Builder for backends with native RETURNING.
// Dialects without it override with an error or an OUT-parameter emulation.
func (b *BaseBuilder) InsertReturning(table string, values map[string]any, tbl *schema.Table, returning []string) (string, *Params, error) {
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
	quoted := make([]string, len(returning))
	for i, c := range returning {
		quoted[i] = b.self.QuoteColumnName(c)
	}
	return sql + " RETURNING " + strings.Join(quoted, ", "), params, nil
}

// InsertSelect implements Builder.
func (b *BaseBuilder) InsertSelect(table string, columns []string, sel any) (string, *Params, error) {
	q, ok := sel.(*Query)
	if !ok {
		return "", nil, errf("insert", "select form expects a *Query, got %T", sel)
	}
	params := NewParams()
	sub, err := b.self.BuildQueryWith(q, params)
	if err != nil {
		return "", nil, err
	}
	sql := "INSERT INTO " + b.self.QuoteTableName(table)
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = b.self.QuoteColumnName(c)
		}
		sql += " (" + strings.Join(quoted, ", ") + ")"
	}
	return sql + " " + sub, params, nil
}

// BatchInsert implements Builder with the multi-row VALUES form. Rows shorter
// than the column list pad with NULL. Empty input compiles to the empty
// statement.
func (b *BaseBuilder) BatchInsert(table string, columns []string, rows [][]any, tbl *schema.Table) (string, *Params, error) {
	params := NewParams()
	if len(rows) == 0 {
		return "", params, nil
	}
	if len(columns) == 0 {
		return "", nil, errf("batch insert", "requires a column list")
	}
	groups := make([]string, len(rows))
	for i, row := range rows {
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
		groups[i] = "(" + strings.Join(cells, ", ") + ")"
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.self.QuoteColumnName(c)
	}
	sql := "INSERT INTO " + b.self.QuoteTableName(table) +
		" (" + strings.Join(quoted, ", ") + ") VALUES " + strings.Join(groups, ", ")
	return sql, params, nil
}

// Update implements Builder.
func (b *BaseBuilder) Update(table string, values map[string]any, cond Cond, tbl *schema.Table) (string, *Params, error) {
	if len(values) == 0 {
		return "", nil, errf("update", "requires at least one column value")
	}
	params := NewParams()
	columns := sortedKeys(values)
	sets := make([]string, len(columns))
	for i, column := range columns {
		quoted := b.self.QuoteColumnName(column)
		switch value := values[column].(type) {
		case *Expr:
			params.Merge(value.Params)
			sets[i] = quoted + "=" + value.SQL
		default:
			sets[i] = quoted + "=" + params.Bind(castValue(tbl, column, values[column]))
		}
	}
	sql := "UPDATE " + b.self.QuoteTableName(table) + " SET " + strings.Join(sets, ", ")
	where, err := b.self.BuildCondition(cond, params)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		sql += " WHERE " + where
	}
	return sql, params, nil
}

// Delete implements Builder.
func (b *BaseBuilder) Delete(table string, cond Cond) (string, *Params, error) {
	params := NewParams()
	sql := "DELETE FROM " + b.self.QuoteTableName(table)
	where, err := b.self.BuildCondition(cond, params)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		sql += " WHERE " + where
	}
	return sql, params, nil
}
