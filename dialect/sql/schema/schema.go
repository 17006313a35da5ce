// Package schema describes table and column metadata used by the dbx query
// builders for value casting before binding. Metadata is supplied by a
// Provider collaborator; compilation degrades gracefully (values pass through
// unchanged) when it is absent.
package schema

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type is the abstract column type shared between the schema package and the
// dialect type maps.
type Type string

// Abstract column types.
const (
	TypeString    Type = "string"
	TypeText      Type = "text"
	TypeInteger   Type = "integer"
	TypeBigInt    Type = "bigint"
	TypeFloat     Type = "float"
	TypeDecimal   Type = "decimal"
	TypeBoolean   Type = "boolean"
	TypeBinary    Type = "binary"
	TypeTimestamp Type = "timestamp"
	TypeDate      Type = "date"
	TypeTime      Type = "time"
	TypeUUID      Type = "uuid"
	TypeJSON      Type = "json"
)

// Column is the metadata of a single table column.
type Column struct {
	Name          string `msgpack:"name"`
	Type          Type   `msgpack:"type"`
	Nullable      bool   `msgpack:"nullable"`
	PrimaryKey    bool   `msgpack:"pk"`
	AutoIncrement bool   `msgpack:"auto_increment"`
	Size          int    `msgpack:"size"`
	Precision     int    `msgpack:"precision"`
	Scale         int    `msgpack:"scale"`
	// Default is the column default. DefaultRaw marks it as a raw SQL
	// expression such as CURRENT_TIMESTAMP rather than a literal.
	Default    any  `msgpack:"default"`
	DefaultRaw bool `msgpack:"default_raw"`
}

// Cast normalizes a value for binding against this column. Values that do
// not fit the column type are returned unchanged; Cast never fails.
func (c *Column) Cast(v any) any {
	if v == nil || c == nil {
		return v
	}
	switch c.Type {
	case TypeInteger, TypeBigInt:
		if b, ok := v.(bool); ok {
			if b {
				return 1
			}
			return 0
		}
	case TypeFloat:
		if s, ok := v.(string); ok {
			// Normalize comma decimal separators from locale-formatted input.
			if f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
				return f
			}
		}
	case TypeDecimal:
		switch s := v.(type) {
		case string:
			if d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1)); err == nil {
				return d
			}
		case float64:
			return decimal.NewFromFloat(s)
		case float32:
			return decimal.NewFromFloat32(s)
		}
	case TypeBoolean:
		switch n := v.(type) {
		case int:
			return n != 0
		case int64:
			return n != 0
		case string:
			if b, err := strconv.ParseBool(n); err == nil {
				return b
			}
		}
	case TypeUUID:
		switch u := v.(type) {
		case uuid.UUID:
			return u.String()
		case [16]byte:
			return uuid.UUID(u).String()
		case []byte:
			if id, err := uuid.FromBytes(u); err == nil {
				return id.String()
			}
		case string:
			if id, err := uuid.Parse(u); err == nil {
				return id.String()
			}
		}
	}
	return v
}

// Table is the metadata of a single table.
type Table struct {
	Name       string    `msgpack:"name"`
	SchemaName string    `msgpack:"schema"`
	Columns    []*Column `msgpack:"columns"`
}

// Column returns the named column, or nil if the table does not have it.
func (t *Table) Column(name string) *Column {
	if t == nil {
		return nil
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the names of the primary-key columns in declaration
// order.
func (t *Table) PrimaryKey() []string {
	if t == nil {
		return nil
	}
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// AutoIncrementColumn returns the auto-increment column, or nil.
func (t *Table) AutoIncrementColumn() *Column {
	if t == nil {
		return nil
	}
	for _, c := range t.Columns {
		if c.AutoIncrement {
			return c
		}
	}
	return nil
}

// Provider is the metadata lookup service. Table returns (nil, nil) when the
// table is unknown; compilation must not fail on absent metadata.
type Provider interface {
	Table(ctx context.Context, name string) (*Table, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, name string) (*Table, error)

// Table implements Provider.
func (f ProviderFunc) Table(ctx context.Context, name string) (*Table, error) {
	return f(ctx, name)
}
