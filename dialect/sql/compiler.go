package sql

import (
	"reflect"
	"sort"
	"strings"
)

// BuildCondition implements Builder. It dispatches on the closed set of
// condition variants; every branch that indexes operands fails fast with a
// BuildError when required operands are missing. Compiling a nil or empty
// condition returns the empty fragment and leaves params untouched.
func (b *BaseBuilder) BuildCondition(cond Cond, params *Params) (string, error) {
	switch c := cond.(type) {
	case nil:
		return "", nil
	case *Expr:
		if c == nil {
			return "", nil
		}
		params.Merge(c.Params)
		return c.SQL, nil
	case Hash:
		return b.buildHash(c, params)
	case *AndCond:
		if c == nil {
			return "", nil
		}
		return b.buildConj("AND", c.Ops, params)
	case *OrCond:
		if c == nil {
			return "", nil
		}
		return b.buildConj("OR", c.Ops, params)
	case *NotCond:
		return b.buildNot(c, params)
	case *BetweenCond:
		return b.buildBetween(c, params)
	case *InCond:
		return b.buildIn(c, params)
	case *LikeCond:
		return b.buildLike(c, params)
	case *ExistsCond:
		return b.buildExists(c, params)
	case *CompareCond:
		return b.buildCompare(c, params)
	default:
		return "", errf("condition", "unknown condition type %T", cond)
	}
}

func (b *BaseBuilder) buildHash(h Hash, params *Params) (string, error) {
	if len(h) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(h))
	for _, column := range sortedKeys(h) {
		v := h[column]
		quoted := b.self.QuoteColumnName(column)
		switch value := v.(type) {
		case nil:
			parts = append(parts, quoted+" IS NULL")
		case *Query:
			frag, err := b.buildIn(&InCond{Columns: []string{column}, Values: value}, params)
			if err != nil {
				return "", err
			}
			parts = append(parts, frag)
		case *Expr:
			params.Merge(value.Params)
			parts = append(parts, quoted+"="+value.SQL)
		default:
			if vs, ok := sliceValues(v); ok {
				frag, err := b.buildIn(&InCond{Columns: []string{column}, Values: vs}, params)
				if err != nil {
					return "", err
				}
				parts = append(parts, frag)
				continue
			}
			parts = append(parts, quoted+"="+params.Bind(v))
		}
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, ") AND (") + ")", nil
}

func (b *BaseBuilder) buildConj(op string, ops []Cond, params *Params) (string, error) {
	parts := make([]string, 0, len(ops))
	for _, o := range ops {
		frag, err := b.self.BuildCondition(o, params)
		if err != nil {
			return "", err
		}
		if frag != "" {
			parts = append(parts, frag)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, ") "+op+" (") + ")", nil
}

func (b *BaseBuilder) buildNot(c *NotCond, params *Params) (string, error) {
	if c == nil {
		return "", nil
	}
	frag, err := b.self.BuildCondition(c.Op, params)
	if err != nil {
		return "", err
	}
	if frag == "" {
		return "", nil
	}
	return "NOT (" + frag + ")", nil
}

func (b *BaseBuilder) buildBetween(c *BetweenCond, params *Params) (string, error) {
	if c == nil {
		return "", nil
	}
	if c.Column == "" {
		return "", errf("BETWEEN", "requires a column operand")
	}
	if c.Low == nil || c.High == nil {
		return "", errf("BETWEEN", "requires both range operands")
	}
	op := "BETWEEN"
	if c.Not {
		op = "NOT BETWEEN"
	}
	low, err := b.bindOperand(c.Low, params)
	if err != nil {
		return "", err
	}
	high, err := b.bindOperand(c.High, params)
	if err != nil {
		return "", err
	}
	return b.self.QuoteColumnName(c.Column) + " " + op + " " + low + " AND " + high, nil
}

func (b *BaseBuilder) buildExists(c *ExistsCond, params *Params) (string, error) {
	if c == nil {
		return "", nil
	}
	if c.Query == nil {
		return "", errf("EXISTS", "operand must be a sub-query")
	}
	sub, err := b.self.BuildQueryWith(c.Query, params)
	if err != nil {
		return "", err
	}
	if c.Not {
		return "NOT EXISTS (" + sub + ")", nil
	}
	return "EXISTS (" + sub + ")", nil
}

func (b *BaseBuilder) buildCompare(c *CompareCond, params *Params) (string, error) {
	if c == nil {
		return "", nil
	}
	if c.Column == "" {
		return "", errf("comparison", "requires a column operand")
	}
	if c.Op == "" {
		return "", errf("comparison", "requires an operator")
	}
	column := b.self.QuoteColumnName(c.Column)
	switch v := c.Value.(type) {
	case nil:
		switch c.Op {
		case "=":
			return column + " IS NULL", nil
		case "<>", "!=":
			return column + " IS NOT NULL", nil
		default:
			return column + " " + c.Op + " NULL", nil
		}
	case *Query:
		sub, err := b.self.BuildQueryWith(v, params)
		if err != nil {
			return "", err
		}
		return column + " " + c.Op + " (" + sub + ")", nil
	case *Expr:
		params.Merge(v.Params)
		return column + " " + c.Op + " " + v.SQL, nil
	default:
		return column + " " + c.Op + " " + params.Bind(c.Value), nil
	}
}

// bindOperand renders a scalar-or-expression operand: expressions are inlined
// with their parameters merged, anything else binds a fresh placeholder.
func (b *BaseBuilder) bindOperand(v any, params *Params) (string, error) {
	switch value := v.(type) {
	case *Expr:
		params.Merge(value.Params)
		return value.SQL, nil
	case *Query:
		sub, err := b.self.BuildQueryWith(value, params)
		if err != nil {
			return "", err
		}
		return "(" + sub + ")", nil
	default:
		return params.Bind(v), nil
	}
}

func (b *BaseBuilder) buildIn(c *InCond, params *Params) (string, error) {
	if c == nil {
		return "", nil
	}
	if len(c.Columns) == 0 {
		return "", errf("IN", "requires at least one column operand")
	}
	op := "IN"
	if c.Not {
		op = "NOT IN"
	}
	switch values := c.Values.(type) {
	case *Query:
		sub, err := b.self.BuildQueryWith(values, params)
		if err != nil {
			return "", err
		}
		return b.inColumns(c.Columns) + " " + op + " (" + sub + ")", nil
	case [][]any:
		return b.buildCompositeIn(c, values, params)
	case []map[string]any:
		rows := make([][]any, len(values))
		for i, m := range values {
			row := make([]any, len(c.Columns))
			for j, col := range c.Columns {
				if v, ok := m[col]; ok {
					row[j] = v
				} else {
					row[j] = missingValue{}
				}
			}
			rows[i] = row
		}
		return b.buildCompositeIn(c, rows, params)
	default:
		vs, ok := sliceValues(values)
		if !ok {
			if values == nil {
				vs = nil
			} else {
				return "", errf(op, "operand must be a value list, a sub-query or candidate rows, got %T", values)
			}
		}
		if len(c.Columns) > 1 {
			return "", errf(op, "composite column list requires candidate rows")
		}
		return b.buildScalarIn(c.Columns[0], op, vs, params)
	}
}

// missingValue marks an absent cell in a candidate row; it binds as literal
// NULL rather than a placeholder.
type missingValue struct{}

func (b *BaseBuilder) buildCompositeIn(c *InCond, rows [][]any, params *Params) (string, error) {
	op := "IN"
	if c.Not {
		op = "NOT IN"
	}
	if len(rows) == 0 {
		if c.Not {
			return "", nil
		}
		return "0=1", nil
	}
	if len(c.Columns) == 1 {
		// Single-column rows degrade to a scalar list.
		vs := make([]any, len(rows))
		for i, row := range rows {
			if len(row) > 0 {
				vs[i] = row[0]
			}
		}
		return b.buildScalarIn(c.Columns[0], op, vs, params)
	}
	groups := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(c.Columns))
		for j := range c.Columns {
			var v any = missingValue{}
			if j < len(row) {
				v = row[j]
			}
			if _, missing := v.(missingValue); missing || v == nil {
				cells[j] = "NULL"
			} else {
				cells[j] = params.Bind(v)
			}
		}
		groups[i] = "(" + strings.Join(cells, ", ") + ")"
	}
	return b.inColumns(c.Columns) + " " + op + " (" + strings.Join(groups, ", ") + ")", nil
}

func (b *BaseBuilder) buildScalarIn(column, op string, values []any, params *Params) (string, error) {
	quoted := b.self.QuoteColumnName(column)
	switch len(values) {
	case 0:
		// IN () is unsatisfiable; NOT IN () is vacuously true.
		if op == "NOT IN" {
			return "", nil
		}
		return "0=1", nil
	case 1:
		// Degrade to a plain comparison; the changed SQL shape is part of
		// the compatibility contract.
		v := values[0]
		if v == nil {
			if op == "NOT IN" {
				return quoted + " IS NOT NULL", nil
			}
			return quoted + " IS NULL", nil
		}
		cmp := "="
		if op == "NOT IN" {
			cmp = "<>"
		}
		if e, ok := v.(*Expr); ok {
			params.Merge(e.Params)
			return quoted + cmp + e.SQL, nil
		}
		return quoted + cmp + params.Bind(v), nil
	}
	if limit := b.self.InLimit(); limit > 0 && len(values) > limit {
		return b.buildSplitIn(column, op, values, limit, params)
	}
	parts := make([]string, len(values))
	for i, v := range values {
		if e, ok := v.(*Expr); ok {
			params.Merge(e.Params)
			parts[i] = e.SQL
		} else {
			parts[i] = params.Bind(v)
		}
	}
	return quoted + " " + op + " (" + strings.Join(parts, ", ") + ")", nil
}

// buildSplitIn rewrites an oversized IN list into chunks recombined through
// the normal AND/OR path: OR of IN chunks, AND of NOT IN chunks. Every chunk
// shares the single running parameter table.
func (b *BaseBuilder) buildSplitIn(column, op string, values []any, limit int, params *Params) (string, error) {
	chunks := make([]Cond, 0, (len(values)+limit-1)/limit)
	for start := 0; start < len(values); start += limit {
		end := min(start+limit, len(values))
		chunks = append(chunks, &InCond{
			Columns: []string{column},
			Values:  values[start:end],
			Not:     op == "NOT IN",
		})
	}
	if op == "NOT IN" {
		return b.buildConj("AND", chunks, params)
	}
	return b.buildConj("OR", chunks, params)
}

func (b *BaseBuilder) buildLike(c *LikeCond, params *Params) (string, error) {
	if c == nil {
		return "", nil
	}
	if c.Column == "" {
		return "", errf("LIKE", "requires a column operand")
	}
	if len(c.Values) == 0 {
		// Mirrors empty IN: LIKE nothing is unsatisfiable, NOT LIKE
		// nothing is vacuously true.
		if c.Not {
			return "", nil
		}
		return "0=1", nil
	}
	op := "LIKE"
	if c.Fold && b.likeFoldOp != "" {
		op = b.likeFoldOp
	}
	if c.Not {
		op = "NOT " + op
	}
	// An explicitly empty escape map means the caller pre-escaped the
	// patterns; no replacement and no %...% wrapping.
	noEscape := c.NoEscape || (c.Escape != nil && len(c.Escape) == 0)
	var escape string
	if b.likeEscape != "" && !noEscape {
		escape = " ESCAPE '" + b.likeEscape + "'"
	}
	replace := b.likeReplace
	if len(c.Escape) > 0 {
		replace = make([]string, 0, len(c.Escape)*2)
		for _, k := range sortedKeys(c.Escape) {
			replace = append(replace, k, c.Escape[k])
		}
	}
	replacer := strings.NewReplacer(replace...)
	quoted := b.self.QuoteColumnName(c.Column)
	parts := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if e, ok := v.(*Expr); ok {
			params.Merge(e.Params)
			parts = append(parts, quoted+" "+op+" "+e.SQL+escape)
			continue
		}
		pattern, ok := v.(string)
		if !ok {
			return "", errf("LIKE", "pattern must be a string or expression, got %T", v)
		}
		if !noEscape {
			pattern = "%" + replacer.Replace(pattern) + "%"
		}
		parts = append(parts, quoted+" "+op+" "+params.Bind(pattern)+escape)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	join := " AND "
	if c.Or {
		join = " OR "
	}
	return strings.Join(parts, join), nil
}

func (b *BaseBuilder) inColumns(columns []string) string {
	if len(columns) == 1 {
		return b.self.QuoteColumnName(columns[0])
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.self.QuoteColumnName(c)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// sliceValues normalizes an arbitrary slice or array into []any. Byte slices
// are scalar binary values, not lists.
func sliceValues(v any) ([]any, bool) {
	switch vs := v.(type) {
	case nil:
		return nil, false
	case []any:
		return vs, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Go map iteration order is not stable; sort for deterministic SQL.
	sort.Strings(keys)
	return keys
}
