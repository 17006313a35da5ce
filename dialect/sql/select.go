package sql

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// selectAliasRe recovers an implicit alias from "expr AS alias" or a
	// bare trailing identifier in a select item.
	selectAliasRe = regexp.MustCompile(`(?i)^(.*?)(?:\s+as\s+|\s+)([\w.\-]+)$`)
	// tableAliasRe does the same for FROM/JOIN sources.
	tableAliasRe = regexp.MustCompile(`(?i)^(.*?)(?:\s+as)?\s+([^ ]+)$`)
)

// BuildQuery implements Builder.
func (b *BaseBuilder) BuildQuery(q *Query) (string, *Params, error) {
	params := NewParams()
	sql, err := b.self.BuildQueryWith(q, params)
	if err != nil {
		return "", nil, err
	}
	return sql, params, nil
}

// BuildQueryWith implements Builder. Clauses are assembled in fixed order
// into one shared parameter table: SELECT, FROM, JOIN, WHERE, GROUP BY,
// HAVING, then the dialect's ORDER BY/LIMIT/OFFSET, then UNION blocks.
func (b *BaseBuilder) BuildQueryWith(q *Query, params *Params) (string, error) {
	if q == nil {
		return "", errf("query", "nil query")
	}
	params.Merge(q.params)
	clauses := make([]string, 0, 6)
	appendClause := func(frag string, err error) error {
		if err != nil {
			return err
		}
		if frag != "" {
			clauses = append(clauses, frag)
		}
		return nil
	}
	if err := appendClause(b.buildSelect(q, params)); err != nil {
		return "", err
	}
	if err := appendClause(b.buildFrom(q, params)); err != nil {
		return "", err
	}
	if err := appendClause(b.buildJoins(q, params)); err != nil {
		return "", err
	}
	if err := appendClause(b.buildWhere(q.where, "WHERE", params)); err != nil {
		return "", err
	}
	if err := appendClause(b.buildGroupBy(q, params)); err != nil {
		return "", err
	}
	if err := appendClause(b.buildWhere(q.having, "HAVING", params)); err != nil {
		return "", err
	}
	sql := strings.Join(clauses, " ")
	sql, err := b.self.BuildOrderByLimit(sql, q, params)
	if err != nil {
		return "", err
	}
	for _, u := range q.unions {
		sub, err := b.self.BuildQueryWith(u.Query, params)
		if err != nil {
			return "", err
		}
		kind := " UNION "
		if u.All {
			kind = " UNION ALL "
		}
		sql = strings.TrimRight(sql, " ") + kind + "(" + sub + ")"
	}
	return strings.TrimRight(sql, " "), nil
}

func (b *BaseBuilder) buildSelect(q *Query, params *Params) (string, error) {
	sql := "SELECT"
	if q.distinct {
		sql += " DISTINCT"
	}
	if q.selectOption != "" {
		sql += " " + q.selectOption
	}
	if len(q.selects) == 0 {
		return sql + " *", nil
	}
	items := make([]string, len(q.selects))
	for i, item := range q.selects {
		frag, err := b.selectItem(item, params)
		if err != nil {
			return "", err
		}
		items[i] = frag
	}
	return sql + " " + strings.Join(items, ", "), nil
}

func (b *BaseBuilder) selectItem(item any, params *Params) (string, error) {
	switch v := item.(type) {
	case Aliased:
		inner, err := b.selectItem(v.Expr, params)
		if err != nil {
			return "", err
		}
		return inner + " AS " + b.QuoteSimpleColumnName(v.Alias), nil
	case *Query:
		sub, err := b.self.BuildQueryWith(v, params)
		if err != nil {
			return "", err
		}
		return "(" + sub + ")", nil
	case *Expr:
		params.Merge(v.Params)
		return v.SQL, nil
	case string:
		if strings.Contains(v, "(") {
			return v, nil
		}
		if m := selectAliasRe.FindStringSubmatch(v); m != nil {
			return b.self.QuoteColumnName(m[1]) + " AS " + b.QuoteSimpleColumnName(m[2]), nil
		}
		return b.self.QuoteColumnName(v), nil
	default:
		return "", errf("select", "unsupported select item type %T", item)
	}
}

func (b *BaseBuilder) buildFrom(q *Query, params *Params) (string, error) {
	if len(q.from) == 0 {
		return "", nil
	}
	sources := make([]string, len(q.from))
	for i, src := range q.from {
		frag, err := b.source(src, params)
		if err != nil {
			return "", err
		}
		sources[i] = frag
	}
	return "FROM " + strings.Join(sources, ", "), nil
}

// source renders a FROM/JOIN source: quoting-or-passthrough plus alias
// extraction from "expr AS alias" / "expr alias" forms. Sub-query sources
// must carry an explicit alias.
func (b *BaseBuilder) source(src any, params *Params) (string, error) {
	switch v := src.(type) {
	case Aliased:
		switch inner := v.Expr.(type) {
		case *Query:
			sub, err := b.self.BuildQueryWith(inner, params)
			if err != nil {
				return "", err
			}
			return "(" + sub + ") " + b.QuoteSimpleTableName(v.Alias), nil
		case *Expr:
			params.Merge(inner.Params)
			return inner.SQL + " " + b.QuoteSimpleTableName(v.Alias), nil
		case string:
			return b.self.QuoteTableName(inner) + " " + b.QuoteSimpleTableName(v.Alias), nil
		default:
			return "", errf("from", "unsupported source type %T", v.Expr)
		}
	case *Query:
		return "", errf("from", "sub-query source requires an alias")
	case *Expr:
		params.Merge(v.Params)
		return v.SQL, nil
	case string:
		if strings.Contains(v, "(") {
			return v, nil
		}
		if m := tableAliasRe.FindStringSubmatch(v); m != nil {
			return b.self.QuoteTableName(m[1]) + " " + b.QuoteSimpleTableName(m[2]), nil
		}
		return b.self.QuoteTableName(v), nil
	default:
		return "", errf("from", "unsupported source type %T", src)
	}
}

func (b *BaseBuilder) buildJoins(q *Query, params *Params) (string, error) {
	if len(q.joins) == 0 {
		return "", nil
	}
	joins := make([]string, len(q.joins))
	for i, j := range q.joins {
		src, err := b.source(j.Source, params)
		if err != nil {
			return "", err
		}
		kind := j.Kind
		if kind == "" {
			kind = "JOIN"
		}
		frag := kind + " " + src
		on, err := b.self.BuildCondition(j.On, params)
		if err != nil {
			return "", err
		}
		if on != "" {
			frag += " ON " + on
		}
		joins[i] = frag
	}
	return strings.Join(joins, " "), nil
}

func (b *BaseBuilder) buildWhere(cond Cond, keyword string, params *Params) (string, error) {
	frag, err := b.self.BuildCondition(cond, params)
	if err != nil || frag == "" {
		return "", err
	}
	return keyword + " " + frag, nil
}

func (b *BaseBuilder) buildGroupBy(q *Query, params *Params) (string, error) {
	if len(q.groupBy) == 0 {
		return "", nil
	}
	exprs := make([]string, len(q.groupBy))
	for i, g := range q.groupBy {
		switch v := g.(type) {
		case *Expr:
			params.Merge(v.Params)
			exprs[i] = v.SQL
		case string:
			exprs[i] = b.self.QuoteColumnName(v)
		default:
			return "", errf("group by", "unsupported expression type %T", g)
		}
	}
	return "GROUP BY " + strings.Join(exprs, ", "), nil
}

// buildOrderBy renders the ORDER BY clause, or "" when the query has none.
func (b *BaseBuilder) buildOrderBy(q *Query, params *Params) (string, error) {
	if len(q.orderBy) == 0 {
		return "", nil
	}
	keys := make([]string, len(q.orderBy))
	for i, k := range q.orderBy {
		var expr string
		switch v := k.Expr.(type) {
		case *Expr:
			params.Merge(v.Params)
			expr = v.SQL
		case string:
			expr = b.self.QuoteColumnName(v)
		default:
			return "", errf("order by", "unsupported expression type %T", k.Expr)
		}
		if k.Desc {
			expr += " DESC"
		}
		keys[i] = expr
	}
	return "ORDER BY " + strings.Join(keys, ", "), nil
}

// limitValue renders a limit/offset operand: a non-negative integer or a raw
// expression.
func (b *BaseBuilder) limitValue(v any, params *Params) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), nil
	case *Expr:
		params.Merge(n.Params)
		return n.SQL, nil
	default:
		return "", errf("limit", "unsupported operand type %T", v)
	}
}

// BuildOrderByLimit implements Builder with the ANSI default: ORDER BY keys
// followed by LIMIT n and OFFSET m.
func (b *BaseBuilder) BuildOrderByLimit(sql string, q *Query, params *Params) (string, error) {
	orderBy, err := b.buildOrderBy(q, params)
	if err != nil {
		return "", err
	}
	if orderBy != "" {
		sql += " " + orderBy
	}
	if q.limit != nil {
		limit, err := b.limitValue(q.limit, params)
		if err != nil {
			return "", err
		}
		sql += " LIMIT " + limit
	}
	if hasOffset(q.offset) {
		offset, err := b.limitValue(q.offset, params)
		if err != nil {
			return "", err
		}
		sql += " OFFSET " + offset
	}
	return sql, nil
}

func hasOffset(v any) bool {
	if n, ok := v.(int); ok {
		return n > 0
	}
	return v != nil
}
