package sql

import (
	"context"
	dsql "database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbx"
	"github.com/syssam/dbx/dialect"
)

func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	drv := OpenDB(dialect.MySQL, db)
	ctx := context.Background()

	t.Run("without result", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 2))
		require.NoError(t, drv.Exec(ctx, "DELETE FROM users", []any{}, nil))
	})

	t.Run("with result", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(7, 1))
		var res dsql.Result
		require.NoError(t, drv.Exec(ctx, "INSERT INTO users (name) VALUES (?)", []any{"a"}, &res))
		id, err := res.LastInsertId()
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
	})

	t.Run("invalid args type", func(t *testing.T) {
		err := drv.Exec(ctx, "DELETE FROM users", "not-a-slice", nil)
		assert.Error(t, err)
	})

	t.Run("invalid result type", func(t *testing.T) {
		err := drv.Exec(ctx, "DELETE FROM users", []any{}, "bad")
		assert.Error(t, err)
	})

	t.Run("driver failure surfaces as execution error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users").WillReturnError(errors.New("gone"))
		err := drv.Exec(ctx, "DELETE FROM users", []any{}, nil)
		assert.True(t, dbx.IsExecution(err))
		var ee *dbx.ExecutionError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "DELETE FROM users", ee.Query)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	drv := OpenDB(dialect.Postgres, db)
	ctx := context.Background()

	t.Run("scans rows", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "a").AddRow(2, "b"))
		var rows Rows
		require.NoError(t, drv.Query(ctx, "SELECT id, name FROM users", []any{}, &rows))
		defer rows.Close()
		var ids []int
		for rows.Next() {
			var (
				id   int
				name string
			)
			require.NoError(t, rows.Scan(&id, &name))
			ids = append(ids, id)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []int{1, 2}, ids)
	})

	t.Run("invalid rows type", func(t *testing.T) {
		err := drv.Query(ctx, "SELECT 1", []any{}, &struct{}{})
		assert.Error(t, err)
	})

	t.Run("driver failure surfaces as execution error", func(t *testing.T) {
		mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("gone"))
		var rows Rows
		err := drv.Query(ctx, "SELECT 1", []any{}, &rows)
		assert.True(t, dbx.IsExecution(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	drv := OpenDB(dialect.Postgres, db)
	ctx := context.Background()

	session, err := drv.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, dialect.Postgres, session.Dialect())
	assert.True(t, session.IsOpen())

	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, session.Exec(ctx, "SELECT 1", []any{}, nil))
	require.NoError(t, session.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	drv := OpenDB(dialect.SQLite, db)
	assert.True(t, drv.IsOpen())
	require.NoError(t, drv.Close())
	assert.False(t, drv.IsOpen())

	_, err = drv.Session(context.Background())
	assert.ErrorIs(t, err, dbx.ErrNotOpen)
}

func TestDriverBuilder(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	drv := OpenDB(dialect.Oracle, db)
	assert.Equal(t, dialect.Oracle, drv.Dialect())
	assert.Equal(t, dialect.Oracle, drv.Builder().Dialect())
}
