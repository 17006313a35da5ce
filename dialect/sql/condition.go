package sql

// Cond is a node of the condition tree: the structured representation of a
// WHERE/HAVING/JOIN-ON predicate prior to SQL rendering. The set of variants
// is closed; the compiler dispatches on the concrete type and fails fast on
// malformed nodes.
type Cond interface {
	cond()
}

// Expr is a literal SQL fragment with already-named parameters. It is usable
// both as a condition and as a value inside other conditions; its text is
// emitted verbatim and its parameters merged into the running table. The
// caller is responsible for pre-quoting identifiers inside the fragment.
type Expr struct {
	SQL    string
	Params map[string]any
}

func (*Expr) cond() {}

// Raw returns a literal SQL fragment condition.
func Raw(sql string, params ...map[string]any) *Expr {
	e := &Expr{SQL: sql}
	if len(params) > 0 {
		e.Params = params[0]
	}
	return e
}

// Hash is a conjunction of per-column tests, one per entry. A nil value
// renders IS NULL, a slice or sub-query delegates to IN handling, an *Expr
// is inlined, and any other value binds a fresh placeholder. Entries are
// compiled in sorted column order for deterministic output.
type Hash map[string]any

func (Hash) cond() {}

// AndCond combines operand conditions with AND, dropping empty fragments.
type AndCond struct {
	Ops []Cond
}

func (*AndCond) cond() {}

// And combines conditions with AND.
func And(ops ...Cond) *AndCond { return &AndCond{Ops: ops} }

// OrCond combines operand conditions with OR, dropping empty fragments.
type OrCond struct {
	Ops []Cond
}

func (*OrCond) cond() {}

// Or combines conditions with OR.
func Or(ops ...Cond) *OrCond { return &OrCond{Ops: ops} }

// NotCond negates exactly one operand.
type NotCond struct {
	Op Cond
}

func (*NotCond) cond() {}

// Not negates the condition.
func Not(op Cond) *NotCond { return &NotCond{Op: op} }

// BetweenCond tests a column against an inclusive range. Low and High may be
// scalars or *Expr fragments.
type BetweenCond struct {
	Column    string
	Low, High any
	Not       bool
}

func (*BetweenCond) cond() {}

// Between tests column BETWEEN low AND high.
func Between(column string, low, high any) *BetweenCond {
	return &BetweenCond{Column: column, Low: low, High: high}
}

// NotBetween tests column NOT BETWEEN low AND high.
func NotBetween(column string, low, high any) *BetweenCond {
	return &BetweenCond{Column: column, Low: low, High: high, Not: true}
}

// InCond tests one column, or a tuple of columns, against candidate values.
// Values holds one of:
//
//   - []any: a scalar list for a single column
//   - *Query: a sub-query operand
//   - [][]any or []map[string]any: candidate rows for a composite
//     (row-value) IN; missing values bind literal NULL
type InCond struct {
	Columns []string
	Values  any
	Not     bool
}

func (*InCond) cond() {}

// In tests column IN (values...). A single *Query argument is treated as a
// sub-query operand.
func In(column string, values ...any) *InCond {
	return &InCond{Columns: []string{column}, Values: inValues(values)}
}

// NotIn tests column NOT IN (values...).
func NotIn(column string, values ...any) *InCond {
	return &InCond{Columns: []string{column}, Values: inValues(values), Not: true}
}

// CompositeIn tests a tuple of columns against candidate rows (row-value IN).
func CompositeIn(columns []string, rows ...[]any) *InCond {
	return &InCond{Columns: columns, Values: rows}
}

func inValues(values []any) any {
	if len(values) == 1 {
		if q, ok := values[0].(*Query); ok {
			return q
		}
	}
	return values
}

// LikeCond matches a column against one or more patterns. Unless NoEscape is
// set, every pattern is escaped through the dialect's escape map (default:
// %, _ and backslash) and wrapped in %...%; NoEscape means the caller
// pre-escaped the patterns. Multiple patterns combine with AND, or with OR
// when the Or flag is set.
type LikeCond struct {
	Column string
	Values []any
	Or     bool
	Not    bool
	// Fold requests case-insensitive matching where the dialect has it
	// (ILIKE on Postgres; other backends fall back to LIKE).
	Fold bool
	// Escape overrides the dialect escape map. NoEscape disables escaping
	// and the %...% wrapping entirely.
	Escape   map[string]string
	NoEscape bool
}

func (*LikeCond) cond() {}

// Like matches column LIKE each pattern, combined with AND.
func Like(column string, patterns ...any) *LikeCond {
	return &LikeCond{Column: column, Values: patterns}
}

// NotLike matches column NOT LIKE each pattern, combined with AND.
func NotLike(column string, patterns ...any) *LikeCond {
	return &LikeCond{Column: column, Values: patterns, Not: true}
}

// OrLike matches column LIKE each pattern, combined with OR.
func OrLike(column string, patterns ...any) *LikeCond {
	return &LikeCond{Column: column, Values: patterns, Or: true}
}

// OrNotLike matches column NOT LIKE each pattern, combined with OR.
func OrNotLike(column string, patterns ...any) *LikeCond {
	return &LikeCond{Column: column, Values: patterns, Or: true, Not: true}
}

// LikeFold matches case-insensitively where the dialect supports it.
func LikeFold(column string, patterns ...any) *LikeCond {
	return &LikeCond{Column: column, Values: patterns, Fold: true}
}

// ExistsCond tests a sub-query for row existence. The operand must be a
// *Query; anything else is a build-time error.
type ExistsCond struct {
	Query *Query
	Not   bool
}

func (*ExistsCond) cond() {}

// Exists tests EXISTS (sub-query).
func Exists(q *Query) *ExistsCond { return &ExistsCond{Query: q} }

// NotExists tests NOT EXISTS (sub-query).
func NotExists(q *Query) *ExistsCond { return &ExistsCond{Query: q, Not: true} }

// CompareCond is the simple-comparison fallback for any operator without a
// dedicated variant, e.g. ">", "<=", "!=". Value may be nil (rendered as an
// IS test), an *Expr, a *Query, or a bound scalar.
type CompareCond struct {
	Op     string
	Column string
	Value  any
}

func (*CompareCond) cond() {}

// Op compares column against value with an arbitrary operator.
func Op(op, column string, value any) *CompareCond {
	return &CompareCond{Op: op, Column: column, Value: value}
}

// EQ compares column = value.
func EQ(column string, value any) *CompareCond { return Op("=", column, value) }

// NEQ compares column <> value.
func NEQ(column string, value any) *CompareCond { return Op("<>", column, value) }

// GT compares column > value.
func GT(column string, value any) *CompareCond { return Op(">", column, value) }

// GTE compares column >= value.
func GTE(column string, value any) *CompareCond { return Op(">=", column, value) }

// LT compares column < value.
func LT(column string, value any) *CompareCond { return Op("<", column, value) }

// LTE compares column <= value.
func LTE(column string, value any) *CompareCond { return Op("<=", column, value) }
