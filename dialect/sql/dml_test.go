package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbx"
	"github.com/syssam/dbx/dialect/sql/schema"
)

func usersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Columns: []*schema.Column{
			{Name: "id", Type: schema.TypeBigInt, PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Type: schema.TypeString},
			{Name: "active", Type: schema.TypeInteger},
			{Name: "avatar", Type: schema.TypeBinary},
		},
	}
}

func TestInsert(t *testing.T) {
	b := NewMySQLBuilder()

	t.Run("columns sorted for deterministic output", func(t *testing.T) {
		sql, params, err := b.Insert("users", map[string]any{"name": "john", "age": 30}, nil)
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO `users` (`age`, `name`) VALUES (:qp0, :qp1)", sql)
		age, _ := params.Get("qp0")
		name, _ := params.Get("qp1")
		assert.Equal(t, 30, age)
		assert.Equal(t, "john", name)
	})

	t.Run("expression values are inlined", func(t *testing.T) {
		sql, params, err := b.Insert("users", map[string]any{"updated_at": Raw("NOW()")}, nil)
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO `users` (`updated_at`) VALUES (NOW())", sql)
		assert.Zero(t, params.Len())
	})

	t.Run("metadata casts values", func(t *testing.T) {
		_, params, err := b.Insert("users", map[string]any{"active": true}, usersTable())
		require.NoError(t, err)
		v, _ := params.Get("qp0")
		assert.Equal(t, 1, v, "boolean cast to integer column")
	})

	t.Run("sub-query value is a build error", func(t *testing.T) {
		_, _, err := b.Insert("users", map[string]any{"id": NewQuery().From("t")}, nil)
		assert.True(t, dbx.IsBuild(err))
	})

	t.Run("empty values per dialect", func(t *testing.T) {
		sql, _, err := NewMySQLBuilder().Insert("users", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO `users` VALUES ()", sql)

		sql, _, err = NewSQLiteBuilder().Insert("users", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "users" DEFAULT VALUES`, sql)

		_, _, err = NewOracleBuilder().Insert("users", nil, nil)
		assert.True(t, dbx.IsUnsupported(err))
	})
}

func TestInsertReturning(t *testing.T) {
	t.Run("postgres native returning", func(t *testing.T) {
		b := NewPostgresBuilder()
		sql, _, err := b.InsertReturning("users", map[string]any{"name": "a"}, usersTable(), nil)
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "users" ("name") VALUES (:qp0) RETURNING "id"`, sql)
	})

	t.Run("explicit returning columns", func(t *testing.T) {
		b := NewPostgresBuilder()
		sql, _, err := b.InsertReturning("users", map[string]any{"name": "a"}, usersTable(), []string{"id", "name"})
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "users" ("name") VALUES (:qp0) RETURNING "id", "name"`, sql)
	})

	t.Run("no returning columns and no primary key", func(t *testing.T) {
		b := NewPostgresBuilder()
		tbl := &schema.Table{Name: "logs", Columns: []*schema.Column{{Name: "line", Type: schema.TypeText}}}
		_, _, err := b.InsertReturning("logs", map[string]any{"line": "x"}, tbl, nil)
		assert.True(t, dbx.IsBuild(err))
	})

	t.Run("mysql is a capability mismatch", func(t *testing.T) {
		b := NewMySQLBuilder()
		_, _, err := b.InsertReturning("users", map[string]any{"name": "a"}, usersTable(), nil)
		assert.True(t, dbx.IsUnsupported(err))
	})

	t.Run("oracle binds out parameters", func(t *testing.T) {
		b := NewOracleBuilder()
		sql, params, err := b.InsertReturning("users", map[string]any{"name": "a"}, usersTable(), nil)
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "users" ("name") VALUES (:qp0) RETURNING "id" INTO :qp1`, sql)
		v, ok := params.Get("qp1")
		require.True(t, ok)
		assert.Equal(t, Out{Name: "id"}, v)
	})
}

func TestInsertSelect(t *testing.T) {
	b := NewMySQLBuilder()

	t.Run("with column list", func(t *testing.T) {
		sel := NewQuery().Select("id", "name").From("users").Where(Hash{"status": "inactive"})
		sql, params, err := b.InsertSelect("archive", []string{"id", "name"}, sel)
		require.NoError(t, err)
		assert.Equal(t,
			"INSERT INTO `archive` (`id`, `name`) SELECT `id`, `name` FROM `users` WHERE `status`=:qp0",
			sql)
		assert.Equal(t, 1, params.Len())
	})

	t.Run("without column list", func(t *testing.T) {
		sql, _, err := b.InsertSelect("archive", nil, NewQuery().From("users"))
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO `archive` SELECT * FROM `users`", sql)
	})

	t.Run("non-query select is a build error", func(t *testing.T) {
		_, _, err := b.InsertSelect("archive", nil, []any{1, 2})
		assert.True(t, dbx.IsBuild(err))
	})
}

func TestBatchInsert(t *testing.T) {
	t.Run("multi-row values", func(t *testing.T) {
		b := NewMySQLBuilder()
		sql, params, err := b.BatchInsert("users", []string{"a", "b"}, [][]any{{1, 2}, {3, 4}}, nil)
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO `users` (`a`, `b`) VALUES (:qp0, :qp1), (:qp2, :qp3)", sql)
		assert.Equal(t, 4, params.Len())
	})

	t.Run("short rows pad with NULL", func(t *testing.T) {
		b := NewMySQLBuilder()
		sql, _, err := b.BatchInsert("users", []string{"a", "b"}, [][]any{{1}}, nil)
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO `users` (`a`, `b`) VALUES (:qp0, NULL)", sql)
	})

	t.Run("empty rows compile to the empty statement", func(t *testing.T) {
		b := NewMySQLBuilder()
		sql, params, err := b.BatchInsert("users", []string{"a"}, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, sql)
		assert.Zero(t, params.Len())
	})

	t.Run("missing column list is a build error", func(t *testing.T) {
		b := NewMySQLBuilder()
		_, _, err := b.BatchInsert("users", nil, [][]any{{1}}, nil)
		assert.True(t, dbx.IsBuild(err))
	})

	t.Run("oracle insert all", func(t *testing.T) {
		b := NewOracleBuilder()
		sql, params, err := b.BatchInsert("users", []string{"a", "b"}, [][]any{{1, 2}, {3, 4}}, nil)
		require.NoError(t, err)
		assert.Equal(t,
			`INSERT ALL`+
				` INTO "users" ("a", "b") VALUES (:qp0, :qp1)`+
				` INTO "users" ("a", "b") VALUES (:qp2, :qp3)`+
				` SELECT 1 FROM DUAL`,
			sql)
		assert.Equal(t, 4, params.Len())
	})
}

func TestUpdate(t *testing.T) {
	b := NewMySQLBuilder()

	t.Run("sets then condition", func(t *testing.T) {
		sql, params, err := b.Update("users", map[string]any{"name": "x", "age": 2}, EQ("id", 7), nil)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE `users` SET `age`=:qp0, `name`=:qp1 WHERE `id` = :qp2", sql)
		id, _ := params.Get("qp2")
		assert.Equal(t, 7, id)
	})

	t.Run("expression set", func(t *testing.T) {
		sql, _, err := b.Update("users", map[string]any{"count": Raw("count + 1")}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE `users` SET `count`=count + 1", sql)
	})

	t.Run("empty values is a build error", func(t *testing.T) {
		_, _, err := b.Update("users", nil, nil, nil)
		assert.True(t, dbx.IsBuild(err))
	})
}

func TestDelete(t *testing.T) {
	b := NewMySQLBuilder()

	t.Run("with condition", func(t *testing.T) {
		sql, params, err := b.Delete("users", EQ("id", 7))
		require.NoError(t, err)
		assert.Equal(t, "DELETE FROM `users` WHERE `id` = :qp0", sql)
		assert.Equal(t, 1, params.Len())
	})

	t.Run("without condition", func(t *testing.T) {
		sql, params, err := b.Delete("users", nil)
		require.NoError(t, err)
		assert.Equal(t, "DELETE FROM `users`", sql)
		assert.Zero(t, params.Len())
	})
}

func TestPostgresBinaryNormalization(t *testing.T) {
	b := NewPostgresBuilder()
	tbl := usersTable()

	t.Run("insert converts strings to bytes", func(t *testing.T) {
		_, params, err := b.Insert("users", map[string]any{"avatar": "abc"}, tbl)
		require.NoError(t, err)
		v, _ := params.Get("qp0")
		assert.Equal(t, []byte("abc"), v)
	})

	t.Run("non-binary columns keep strings", func(t *testing.T) {
		_, params, err := b.Insert("users", map[string]any{"name": "abc"}, tbl)
		require.NoError(t, err)
		v, _ := params.Get("qp0")
		assert.Equal(t, "abc", v)
	})

	t.Run("batch insert does not mutate caller rows", func(t *testing.T) {
		row := []any{"abc"}
		_, params, err := b.BatchInsert("users", []string{"avatar"}, [][]any{row}, tbl)
		require.NoError(t, err)
		v, _ := params.Get("qp0")
		assert.Equal(t, []byte("abc"), v)
		assert.Equal(t, "abc", row[0], "caller row must stay intact")
	})
}
