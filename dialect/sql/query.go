package sql

// Query is the dialect-neutral description of a SELECT statement. It is
// assembled through the fluent methods below and treated as an immutable
// snapshot once handed to a builder; compiling never mutates it.
type Query struct {
	selects      []any
	distinct     bool
	selectOption string
	from         []any
	joins        []JoinSpec
	where        Cond
	groupBy      []any
	having       Cond
	orderBy      []OrderSpec
	limit        any
	offset       any
	unions       []UnionSpec
	params       map[string]any
}

// JoinSpec is one join clause: kind, source and an optional on-condition.
type JoinSpec struct {
	Kind   string // "INNER JOIN", "LEFT JOIN", ...
	Source any    // string, *Expr, *Query or Aliased
	On     Cond
}

// OrderSpec is one ORDER BY key.
type OrderSpec struct {
	Expr any // string or *Expr
	Desc bool
}

// Asc orders by the expression ascending.
func Asc(expr any) OrderSpec { return OrderSpec{Expr: expr} }

// Desc orders by the expression descending.
func Desc(expr any) OrderSpec { return OrderSpec{Expr: expr, Desc: true} }

// UnionSpec is one UNION block.
type UnionSpec struct {
	Query *Query
	All   bool
}

// Aliased attaches an explicit alias to a select item or source.
type Aliased struct {
	Expr  any // string, *Expr or *Query
	Alias string
}

// As aliases a select expression, table or sub-query.
func As(expr any, alias string) Aliased { return Aliased{Expr: expr, Alias: alias} }

// NewQuery returns an empty query.
func NewQuery() *Query { return &Query{} }

// Select sets the select list. Items may be bare or qualified column names
// (optionally carrying "expr AS alias"), *Expr fragments, sub-queries or
// Aliased values. An empty list compiles to "*".
func (q *Query) Select(items ...any) *Query {
	q.selects = items
	return q
}

// AddSelect appends items to the select list.
func (q *Query) AddSelect(items ...any) *Query {
	q.selects = append(q.selects, items...)
	return q
}

// Distinct marks the query as SELECT DISTINCT.
func (q *Query) Distinct() *Query {
	q.distinct = true
	return q
}

// SelectOption sets a modifier emitted after SELECT [DISTINCT], such as
// SQL_CALC_FOUND_ROWS on MySQL.
func (q *Query) SelectOption(opt string) *Query {
	q.selectOption = opt
	return q
}

// From sets the source tables. Sources may be table names (optionally with a
// trailing alias), *Expr fragments, sub-queries or Aliased values.
func (q *Query) From(sources ...any) *Query {
	q.from = sources
	return q
}

// Join appends a join clause of the given kind.
func (q *Query) Join(kind string, source any, on Cond) *Query {
	q.joins = append(q.joins, JoinSpec{Kind: kind, Source: source, On: on})
	return q
}

// InnerJoin appends an INNER JOIN clause.
func (q *Query) InnerJoin(source any, on Cond) *Query {
	return q.Join("INNER JOIN", source, on)
}

// LeftJoin appends a LEFT JOIN clause.
func (q *Query) LeftJoin(source any, on Cond) *Query {
	return q.Join("LEFT JOIN", source, on)
}

// RightJoin appends a RIGHT JOIN clause.
func (q *Query) RightJoin(source any, on Cond) *Query {
	return q.Join("RIGHT JOIN", source, on)
}

// Where replaces the WHERE condition.
func (q *Query) Where(cond Cond) *Query {
	q.where = cond
	return q
}

// AndWhere conjoins a condition with the existing WHERE.
func (q *Query) AndWhere(cond Cond) *Query {
	if q.where == nil {
		q.where = cond
	} else {
		q.where = And(q.where, cond)
	}
	return q
}

// OrWhere disjoins a condition with the existing WHERE.
func (q *Query) OrWhere(cond Cond) *Query {
	if q.where == nil {
		q.where = cond
	} else {
		q.where = Or(q.where, cond)
	}
	return q
}

// GroupBy sets the group-by expressions.
func (q *Query) GroupBy(exprs ...any) *Query {
	q.groupBy = exprs
	return q
}

// AddGroupBy appends group-by expressions.
func (q *Query) AddGroupBy(exprs ...any) *Query {
	q.groupBy = append(q.groupBy, exprs...)
	return q
}

// Having replaces the HAVING condition.
func (q *Query) Having(cond Cond) *Query {
	q.having = cond
	return q
}

// AndHaving conjoins a condition with the existing HAVING.
func (q *Query) AndHaving(cond Cond) *Query {
	if q.having == nil {
		q.having = cond
	} else {
		q.having = And(q.having, cond)
	}
	return q
}

// OrHaving disjoins a condition with the existing HAVING.
func (q *Query) OrHaving(cond Cond) *Query {
	if q.having == nil {
		q.having = cond
	} else {
		q.having = Or(q.having, cond)
	}
	return q
}

// OrderBy sets the ORDER BY keys.
func (q *Query) OrderBy(keys ...OrderSpec) *Query {
	q.orderBy = keys
	return q
}

// AddOrderBy appends ORDER BY keys.
func (q *Query) AddOrderBy(keys ...OrderSpec) *Query {
	q.orderBy = append(q.orderBy, keys...)
	return q
}

// Limit caps the number of returned rows. Negative values clear the limit.
func (q *Query) Limit(n int) *Query {
	if n < 0 {
		q.limit = nil
	} else {
		q.limit = n
	}
	return q
}

// LimitExpr caps the number of returned rows with a raw expression.
func (q *Query) LimitExpr(e *Expr) *Query {
	q.limit = e
	return q
}

// Offset skips the first n rows. Negative values clear the offset.
func (q *Query) Offset(n int) *Query {
	if n < 0 {
		q.offset = nil
	} else {
		q.offset = n
	}
	return q
}

// OffsetExpr skips rows with a raw expression.
func (q *Query) OffsetExpr(e *Expr) *Query {
	q.offset = e
	return q
}

// Union appends a UNION block.
func (q *Query) Union(other *Query) *Query {
	q.unions = append(q.unions, UnionSpec{Query: other})
	return q
}

// UnionAll appends a UNION ALL block.
func (q *Query) UnionAll(other *Query) *Query {
	q.unions = append(q.unions, UnionSpec{Query: other, All: true})
	return q
}

// WithParams merges caller-fixed parameters into the compile pass, ahead of
// any generated placeholder.
func (q *Query) WithParams(params map[string]any) *Query {
	if q.params == nil {
		q.params = make(map[string]any, len(params))
	}
	for k, v := range params {
		q.params[k] = v
	}
	return q
}
