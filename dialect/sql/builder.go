package sql

import (
	dsql "database/sql"
	"strconv"
	"strings"

	"github.com/syssam/dbx"
	"github.com/syssam/dbx/dialect"
	"github.com/syssam/dbx/dialect/sql/schema"
)

// Builder is the per-backend policy object: identifier quoting, abstract type
// mapping, condition compilation and the clause-generation override points
// whose syntax varies across backends. One implementation exists per dialect;
// NewBuilder returns the right one.
//
// Builders are stateless: all accumulation happens in the Params table
// threaded through the calls, so a single Builder may be used concurrently as
// long as each compile pass owns its own table.
type Builder interface {
	// Dialect returns the dialect name of the builder.
	Dialect() string

	// QuoteTableName quotes a simple or schema-qualified table name.
	// Quoting is idempotent against already-quoted input.
	QuoteTableName(name string) string

	// QuoteColumnName quotes a bare or table-qualified column name.
	// Input containing a function-call parenthesis passes through unchanged.
	QuoteColumnName(name string) string

	// ColumnType maps an abstract column type to the backend's physical type.
	ColumnType(t schema.Type) string

	// InLimit returns the backend's ceiling on IN-list operands, or zero
	// when unlimited. Larger lists are split transparently.
	InLimit() int

	// BuildCondition compiles a condition tree into a SQL fragment,
	// appending bound values to params.
	BuildCondition(cond Cond, params *Params) (string, error)

	// BuildQuery compiles a full SELECT statement with a fresh parameter
	// table.
	BuildQuery(q *Query) (string, *Params, error)

	// BuildQueryWith compiles a SELECT into an existing parameter table,
	// used for sub-queries and unions sharing one compile pass.
	BuildQueryWith(q *Query, params *Params) (string, error)

	// BuildOrderByLimit appends ORDER BY / LIMIT / OFFSET to a compiled
	// statement in the backend's pagination syntax.
	BuildOrderByLimit(sql string, q *Query, params *Params) (string, error)

	// Insert builds a single-row INSERT. Table metadata, when supplied, is
	// used for value casting only.
	Insert(table string, values map[string]any, tbl *schema.Table) (string, *Params, error)

	// InsertReturning builds an INSERT returning the given columns (the
	// table's primary key when empty), in the backend's RETURNING syntax or
	// its OUT-parameter emulation.
	InsertReturning(table string, values map[string]any, tbl *schema.Table, returning []string) (string, *Params, error)

	// InsertSelect builds INSERT INTO ... <select>. The select must be a
	// *Query; anything else is a BuildError.
	InsertSelect(table string, columns []string, sel any) (string, *Params, error)

	// BatchInsert builds a multi-row INSERT.
	BatchInsert(table string, columns []string, rows [][]any, tbl *schema.Table) (string, *Params, error)

	// Update builds an UPDATE statement.
	Update(table string, values map[string]any, cond Cond, tbl *schema.Table) (string, *Params, error)

	// Delete builds a DELETE statement.
	Delete(table string, cond Cond) (string, *Params, error)

	// SelectExists wraps a compiled SELECT in the backend's existence check.
	SelectExists(sql string) string

	// Finalize rewrites the compiled named placeholders into the driver's
	// native style and returns the ordered argument list.
	Finalize(sql string, params *Params) (string, []any)
}

// NewBuilder returns the builder for the named dialect. Unknown names get an
// ANSI builder quoting with double quotes.
func NewBuilder(name string) Builder {
	switch name {
	case dialect.MySQL:
		return NewMySQLBuilder()
	case dialect.Postgres:
		return NewPostgresBuilder()
	case dialect.Oracle:
		return NewOracleBuilder()
	case dialect.SQLite:
		return NewSQLiteBuilder()
	default:
		b := &BaseBuilder{name: name}
		b.init(b)
		return b
	}
}

// BaseBuilder is the default ANSI implementation embedded by the concrete
// dialect builders. The self reference dispatches override points back to
// the outermost builder.
type BaseBuilder struct {
	self Builder
	name string

	// Quote characters for columns and tables.
	colQuote string
	tblQuote string

	// LIKE escaping: ordered replacement pairs and the optional
	// ESCAPE '<char>' suffix declared by the dialect.
	likeReplace []string
	likeEscape  string

	// likeFoldOp is the operator used for case-insensitive LIKE where the
	// dialect has one; empty falls back to LIKE.
	likeFoldOp string

	// inLimit is the IN-list operand ceiling, zero when unlimited.
	inLimit int

	// emptyInsert is the statement format for an INSERT with no values;
	// empty means the dialect has no such form.
	emptyInsert string

	// placeholder styles for Finalize.
	positional bool // $N-style numbering instead of ?
	named      bool // keep named parameters (sql.Named)

	types map[schema.Type]string
}

// ansiTypes is the default abstract-to-physical type map; dialects override
// entries as needed.
var ansiTypes = map[schema.Type]string{
	schema.TypeString:    "varchar(255)",
	schema.TypeText:      "text",
	schema.TypeInteger:   "integer",
	schema.TypeBigInt:    "bigint",
	schema.TypeFloat:     "double precision",
	schema.TypeDecimal:   "decimal(10,0)",
	schema.TypeBoolean:   "boolean",
	schema.TypeBinary:    "blob",
	schema.TypeTimestamp: "timestamp",
	schema.TypeDate:      "date",
	schema.TypeTime:      "time",
	schema.TypeUUID:      "char(36)",
	schema.TypeJSON:      "json",
}

// defaultLikeReplace escapes %, _ and backslash; the escape char itself
// comes first so replacements do not cascade.
var defaultLikeReplace = []string{`\`, `\\`, `%`, `\%`, `_`, `\_`}

func (b *BaseBuilder) init(self Builder) {
	b.self = self
	if b.colQuote == "" {
		b.colQuote = `"`
	}
	if b.tblQuote == "" {
		b.tblQuote = `"`
	}
	if b.likeReplace == nil {
		b.likeReplace = defaultLikeReplace
	}
	if b.emptyInsert == "" {
		b.emptyInsert = "INSERT INTO %s DEFAULT VALUES"
	}
	if b.types == nil {
		b.types = ansiTypes
	}
}

// Dialect implements Builder.
func (b *BaseBuilder) Dialect() string { return b.name }

// InLimit implements Builder.
func (b *BaseBuilder) InLimit() int { return b.inLimit }

// ColumnType implements Builder.
func (b *BaseBuilder) ColumnType(t schema.Type) string {
	if s, ok := b.types[t]; ok {
		return s
	}
	return string(t)
}

// QuoteSimpleTableName quotes an unqualified table name. Already-quoted
// input is returned unchanged.
func (b *BaseBuilder) QuoteSimpleTableName(name string) string {
	if strings.Contains(name, b.tblQuote) {
		return name
	}
	return b.tblQuote + name + b.tblQuote
}

// QuoteTableName implements Builder. Composed (schema-qualified) names are
// quoted part by part; input containing a parenthesis passes through.
func (b *BaseBuilder) QuoteTableName(name string) string {
	if strings.Contains(name, "(") {
		return name
	}
	if !strings.Contains(name, ".") {
		return b.QuoteSimpleTableName(name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = b.QuoteSimpleTableName(p)
	}
	return strings.Join(parts, ".")
}

// QuoteSimpleColumnName quotes an unqualified column name. "*" and
// already-quoted input are returned unchanged.
func (b *BaseBuilder) QuoteSimpleColumnName(name string) string {
	if name == "*" || strings.Contains(name, b.colQuote) {
		return name
	}
	return b.colQuote + name + b.colQuote
}

// QuoteColumnName implements Builder. A name containing a function-call
// parenthesis passes through to avoid mangling COUNT(x)-style expressions;
// a qualified name has its table prefix quoted as a table name.
func (b *BaseBuilder) QuoteColumnName(name string) string {
	if strings.Contains(name, "(") {
		return name
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		return b.QuoteTableName(name[:i]) + "." + b.QuoteSimpleColumnName(name[i+1:])
	}
	return b.QuoteSimpleColumnName(name)
}

// SelectExists implements Builder.
func (b *BaseBuilder) SelectExists(sql string) string {
	return "SELECT EXISTS(" + sql + ")"
}

// Finalize implements Builder. The compiled text is scanned for :name
// placeholders outside string literals; each occurrence is rewritten into
// the driver's style and its value appended to the argument list. Postgres
// reuses one $N per distinct name; named dialects emit sql.Named arguments.
func (b *BaseBuilder) Finalize(sql string, params *Params) (string, []any) {
	var (
		out      strings.Builder
		args     []any
		numbered = make(map[string]int)
		named    = make(map[string]bool)
	)
	out.Grow(len(sql))
	for i := 0; i < len(sql); {
		ch := sql[i]
		switch {
		case ch == '\'':
			// Copy the string literal verbatim, honoring '' escapes.
			j := i + 1
			for j < len(sql) {
				if sql[j] == '\'' {
					if j+1 < len(sql) && sql[j+1] == '\'' {
						j += 2
						continue
					}
					j++
					break
				}
				j++
			}
			out.WriteString(sql[i:j])
			i = j
		case ch == ':' && i+1 < len(sql) && sql[i+1] == ':':
			// Postgres-style cast, not a placeholder.
			out.WriteString("::")
			i += 2
		case ch == ':' && i+1 < len(sql) && isNameStart(sql[i+1]):
			j := i + 1
			for j < len(sql) && isNameByte(sql[j]) {
				j++
			}
			name := sql[i+1 : j]
			v, ok := params.Get(name)
			if !ok {
				out.WriteString(sql[i:j])
				i = j
				continue
			}
			switch {
			case b.named:
				out.WriteString(":" + name)
				if !named[name] {
					named[name] = true
					args = append(args, namedArg(name, v))
				}
			case b.positional:
				n, ok := numbered[name]
				if !ok {
					args = append(args, v)
					n = len(args)
					numbered[name] = n
				}
				out.WriteString("$" + strconv.Itoa(n))
			default:
				out.WriteString("?")
				args = append(args, v)
			}
			i = j
		default:
			out.WriteByte(ch)
			i++
		}
	}
	return out.String(), args
}

func namedArg(name string, v any) any {
	if o, ok := v.(Out); ok {
		return dsql.Named(name, dsql.Out{Dest: o.Dest})
	}
	return dsql.Named(name, v)
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// errf returns a BuildError for the given operator.
func errf(op, format string, args ...any) error {
	return dbx.NewBuildError(op, format, args...)
}
