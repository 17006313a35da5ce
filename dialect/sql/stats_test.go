package sql_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbx"
	"github.com/syssam/dbx/dialect"
	"github.com/syssam/dbx/dialect/sql"
)

func TestStatsDriver(t *testing.T) {
	t.Run("counters", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		drv := sql.NewStatsDriver(sql.OpenDB(dialect.MySQL, db))

		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
		mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE").WillReturnError(context.DeadlineExceeded)

		ctx := context.Background()
		var rows sql.Rows
		require.NoError(t, drv.Query(ctx, "SELECT 1", []any{}, &rows))
		rows.Close()
		require.NoError(t, drv.Exec(ctx, "UPDATE t SET a=1", []any{}, nil))
		require.Error(t, drv.Exec(ctx, "DELETE FROM t", []any{}, nil))

		s := drv.QueryStats().Stats()
		assert.Equal(t, int64(1), s.TotalQueries)
		assert.Equal(t, int64(2), s.TotalExecs)
		assert.Equal(t, int64(1), s.Errors)
		assert.Greater(t, s.TotalDuration, time.Duration(0))
		assert.Greater(t, s.AvgQueryDuration(), time.Duration(0))

		drv.QueryStats().Reset()
		assert.Equal(t, int64(0), drv.QueryStats().Stats().TotalQueries)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("slow query hook", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		var slow []string
		drv := sql.NewStatsDriver(sql.OpenDB(dialect.MySQL, db),
			sql.WithSlowThreshold(1*time.Nanosecond),
			sql.WithSlowQueryHook(func(_ context.Context, query string, _ []any, d time.Duration) {
				slow = append(slow, query)
				assert.Greater(t, d, time.Duration(0))
			}),
		)
		assert.Equal(t, 1*time.Nanosecond, drv.SlowThreshold())

		mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))
		require.NoError(t, drv.Exec(context.Background(), "INSERT INTO t VALUES (1)", []any{}, nil))

		require.Len(t, slow, 1)
		assert.Equal(t, "INSERT INTO t VALUES (1)", slow[0])
		assert.Equal(t, int64(1), drv.QueryStats().Stats().SlowQueries)

		// Raising the threshold stops further slow counts.
		drv.SetSlowThreshold(time.Hour)
		mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(2, 1))
		require.NoError(t, drv.Exec(context.Background(), "INSERT INTO t VALUES (2)", []any{}, nil))
		assert.Equal(t, int64(1), drv.QueryStats().Stats().SlowQueries)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	var logged []string
	drv := sql.NewDebugDriver(sql.OpenDB(dialect.MySQL, db), sql.DebugWithLog(func(_ context.Context, v ...any) {
		for _, item := range v {
			logged = append(logged, item.(string))
		}
	}))

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, drv.Exec(context.Background(), "UPDATE t SET a=?", []any{1}, nil))

	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "exec: UPDATE t SET a=?")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenConfig(t *testing.T) {
	t.Run("invalid configuration", func(t *testing.T) {
		_, _, err := sql.OpenConfig(&dbx.Config{Dialect: dialect.MySQL})
		assert.True(t, dbx.IsConfiguration(err))
	})

	t.Run("stats wrapping", func(t *testing.T) {
		cfg := &dbx.Config{
			Dialect:       dialect.SQLite,
			DSN:           "file:cfgtest?mode=memory&cache=shared",
			MaxOpenConns:  1,
			SlowThreshold: 200 * time.Millisecond,
		}
		drv, stats, err := sql.OpenConfig(cfg)
		require.NoError(t, err)
		defer drv.Close()
		require.NotNil(t, stats)
		assert.Equal(t, 200*time.Millisecond, stats.SlowThreshold())
	})

	t.Run("no threshold no stats", func(t *testing.T) {
		cfg := &dbx.Config{Dialect: dialect.SQLite, DSN: "file:cfgtest2?mode=memory&cache=shared"}
		drv, stats, err := sql.OpenConfig(cfg)
		require.NoError(t, err)
		defer drv.Close()
		assert.Nil(t, stats)
	})
}
