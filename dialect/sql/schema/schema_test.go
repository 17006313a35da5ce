package schema

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnCast(t *testing.T) {
	t.Run("integer from bool", func(t *testing.T) {
		c := &Column{Name: "active", Type: TypeInteger}
		assert.Equal(t, 1, c.Cast(true))
		assert.Equal(t, 0, c.Cast(false))
		assert.Equal(t, 42, c.Cast(42))
	})

	t.Run("float normalizes comma separators", func(t *testing.T) {
		c := &Column{Name: "score", Type: TypeFloat}
		assert.Equal(t, 12.5, c.Cast("12,5"))
		assert.Equal(t, 12.5, c.Cast("12.5"))
		assert.Equal(t, "abc", c.Cast("abc"), "unparseable input passes through")
	})

	t.Run("decimal", func(t *testing.T) {
		c := &Column{Name: "price", Type: TypeDecimal}

		d, ok := c.Cast("12,50").(decimal.Decimal)
		require.True(t, ok)
		assert.True(t, d.Equal(decimal.RequireFromString("12.50")))

		d, ok = c.Cast(3.25).(decimal.Decimal)
		require.True(t, ok)
		assert.True(t, d.Equal(decimal.RequireFromString("3.25")))

		assert.Equal(t, "not a number", c.Cast("not a number"))
	})

	t.Run("boolean", func(t *testing.T) {
		c := &Column{Name: "enabled", Type: TypeBoolean}
		assert.Equal(t, true, c.Cast(1))
		assert.Equal(t, false, c.Cast(int64(0)))
		assert.Equal(t, true, c.Cast("true"))
		assert.Equal(t, true, c.Cast(true))
		assert.Equal(t, "maybe", c.Cast("maybe"))
	})

	t.Run("uuid normalizes to canonical text", func(t *testing.T) {
		c := &Column{Name: "id", Type: TypeUUID}
		id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
		assert.Equal(t, id.String(), c.Cast(id))
		assert.Equal(t, id.String(), c.Cast(id.String()))
		assert.Equal(t, id.String(), c.Cast([16]byte(id)))
		assert.Equal(t, id.String(), c.Cast(id[:]))
		assert.Equal(t, "not-a-uuid", c.Cast("not-a-uuid"))
	})

	t.Run("nil and opaque values pass through", func(t *testing.T) {
		c := &Column{Name: "payload", Type: TypeJSON}
		assert.Nil(t, c.Cast(nil))
		assert.Equal(t, []byte(`{"a":1}`), c.Cast([]byte(`{"a":1}`)))
		var nilCol *Column
		assert.Equal(t, "x", nilCol.Cast("x"))
	})
}

func TestTable(t *testing.T) {
	tbl := &Table{
		Name: "users",
		Columns: []*Column{
			{Name: "id", Type: TypeBigInt, PrimaryKey: true, AutoIncrement: true},
			{Name: "tenant_id", Type: TypeBigInt, PrimaryKey: true},
			{Name: "name", Type: TypeString},
		},
	}

	t.Run("column lookup", func(t *testing.T) {
		require.NotNil(t, tbl.Column("name"))
		assert.Equal(t, TypeString, tbl.Column("name").Type)
		assert.Nil(t, tbl.Column("missing"))
	})

	t.Run("primary key in declaration order", func(t *testing.T) {
		assert.Equal(t, []string{"id", "tenant_id"}, tbl.PrimaryKey())
	})

	t.Run("auto increment column", func(t *testing.T) {
		require.NotNil(t, tbl.AutoIncrementColumn())
		assert.Equal(t, "id", tbl.AutoIncrementColumn().Name)
	})

	t.Run("nil table", func(t *testing.T) {
		var nilTbl *Table
		assert.Nil(t, nilTbl.Column("id"))
		assert.Nil(t, nilTbl.PrimaryKey())
		assert.Nil(t, nilTbl.AutoIncrementColumn())
	})
}
