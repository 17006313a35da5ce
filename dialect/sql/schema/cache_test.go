package schema

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls  atomic.Int64
	tables map[string]*Table
	err    error
}

func (p *countingProvider) Table(_ context.Context, name string) (*Table, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.tables[name], nil
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	t.Run("missing key", func(t *testing.T) {
		v, err := c.Get(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
	})

	t.Run("expired entries read as missing", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "ttl", []byte("v"), time.Nanosecond))
		time.Sleep(time.Millisecond)
		v, err := c.Get(ctx, "ttl")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("delete and clear", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
		require.NoError(t, c.Delete(ctx, "k"))
		v, _ := c.Get(ctx, "k")
		assert.Nil(t, v)

		require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
		require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
		require.NoError(t, c.Clear(ctx))
		v, _ = c.Get(ctx, "a")
		assert.Nil(t, v)
	})
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	users := &Table{
		Name: "users",
		Columns: []*Column{
			{Name: "id", Type: TypeBigInt, PrimaryKey: true},
			{Name: "name", Type: TypeString, Nullable: true},
		},
	}

	t.Run("second lookup is served from cache", func(t *testing.T) {
		src := &countingProvider{tables: map[string]*Table{"users": users}}
		p := NewCachedProvider(src, NewMemoryCache(), time.Minute)

		got, err := p.Table(ctx, "users")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "users", got.Name)

		got, err = p.Table(ctx, "users")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(1), src.calls.Load())

		// The round-trip keeps the column metadata intact.
		require.Len(t, got.Columns, 2)
		assert.True(t, got.Column("id").PrimaryKey)
		assert.True(t, got.Column("name").Nullable)
	})

	t.Run("absent tables are not cached", func(t *testing.T) {
		src := &countingProvider{tables: map[string]*Table{}}
		p := NewCachedProvider(src, NewMemoryCache(), time.Minute)

		got, err := p.Table(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)

		_, _ = p.Table(ctx, "missing")
		assert.Equal(t, int64(2), src.calls.Load(), "late DDL must be picked up")
	})

	t.Run("source errors propagate", func(t *testing.T) {
		src := &countingProvider{err: errors.New("catalog query failed")}
		p := NewCachedProvider(src, NewMemoryCache(), time.Minute)
		_, err := p.Table(ctx, "users")
		assert.Error(t, err)
	})

	t.Run("corrupt entries are refreshed", func(t *testing.T) {
		src := &countingProvider{tables: map[string]*Table{"users": users}}
		cache := NewMemoryCache()
		p := NewCachedProvider(src, cache, time.Minute)
		require.NoError(t, cache.Set(ctx, "dbx:schema:users", []byte("garbage"), 0))

		got, err := p.Table(ctx, "users")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(1), src.calls.Load())
	})

	t.Run("invalidate forces a source lookup", func(t *testing.T) {
		src := &countingProvider{tables: map[string]*Table{"users": users}}
		p := NewCachedProvider(src, NewMemoryCache(), time.Minute)

		_, _ = p.Table(ctx, "users")
		require.NoError(t, p.Invalidate(ctx, "users"))
		_, _ = p.Table(ctx, "users")
		assert.Equal(t, int64(2), src.calls.Load())
	})
}
