package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"tablesync/core/codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	db := setupSQLite(t,
		"CREATE TABLE users (name VARCHAR(64), Age INT, id INTEGER PRIMARY KEY, balance DECIMAL(10,2), avatar BLOB)",
		"CREATE TABLE orders (id INTEGER PRIMARY KEY, total DOUBLE)",
		"CREATE TABLE logs (message TEXT)",
	)
	catalog := NewCatalog(db)

	t.Run("ListTables", func(t *testing.T) {
		tables, err := catalog.ListTables(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"logs", "orders", "users"}, tables)
	})

	t.Run("Columns Id First Then Alphabetical", func(t *testing.T) {
		columns, err := catalog.Columns(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "Age", "avatar", "balance", "name"}, Names(columns))
	})

	t.Run("ColumnTypes", func(t *testing.T) {
		tags, err := catalog.ColumnTypes(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, []codec.TypeTag{
			codec.TagInteger, codec.TagInteger, codec.TypeTag("blob"), codec.TagFloat, codec.TagText,
		}, tags)
	})

	t.Run("Missing Id Column", func(t *testing.T) {
		_, err := catalog.ColumnTypes(ctx, "logs")
		assert.True(t, errors.Is(err, codec.ErrSchemaMismatch))
	})

	t.Run("Missing Table", func(t *testing.T) {
		_, err := catalog.Columns(ctx, "nope")
		assert.True(t, errors.Is(err, codec.ErrSchemaMismatch))
	})
}

type countingCatalog struct {
	calls atomic.Int32
}

func (c *countingCatalog) ListTables(ctx context.Context) ([]string, error) {
	return []string{"users"}, nil
}

func (c *countingCatalog) Columns(ctx context.Context, table string) ([]Column, error) {
	c.calls.Add(1)
	if table == "broken" {
		return nil, errors.New("boom")
	}
	return []Column{{Name: "id", Type: "int", Tag: codec.TagInteger}}, nil
}

func (c *countingCatalog) ColumnTypes(ctx context.Context, table string) ([]codec.TypeTag, error) {
	cols, err := c.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	return Tags(cols), nil
}

func TestRunCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("Memoizes Per Table", func(t *testing.T) {
		inner := &countingCatalog{}
		catalog := NewRunCatalog(inner)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tags, err := catalog.ColumnTypes(ctx, "users")
				assert.NoError(t, err)
				assert.Equal(t, []codec.TypeTag{codec.TagInteger}, tags)
			}()
		}
		wg.Wait()

		_, err := catalog.Columns(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, int32(1), inner.calls.Load())
	})

	t.Run("Errors Are Not Cached", func(t *testing.T) {
		inner := &countingCatalog{}
		catalog := NewRunCatalog(inner)

		_, err := catalog.Columns(ctx, "broken")
		assert.Error(t, err)
		_, err = catalog.Columns(ctx, "broken")
		assert.Error(t, err)
		assert.Equal(t, int32(2), inner.calls.Load())
	})

	t.Run("Separate Runs Query Again", func(t *testing.T) {
		inner := &countingCatalog{}
		_, _ = NewRunCatalog(inner).Columns(ctx, "users")
		_, _ = NewRunCatalog(inner).Columns(ctx, "users")
		assert.Equal(t, int32(2), inner.calls.Load())
	})
}
