package database

import (
	"context"
	"sync"

	"tablesync/core/codec"

	"golang.org/x/sync/singleflight"
)

// RunCatalog memoizes another catalog for the lifetime of a single run.
// Concurrent lookups of the same table share one query. Create a new RunCatalog
// per run: the schema may change between runs.
type RunCatalog struct {
	inner SchemaCatalog

	mu      sync.RWMutex
	columns map[string][]Column
	sf      singleflight.Group
}

// NewRunCatalog wraps inner.
func NewRunCatalog(inner SchemaCatalog) *RunCatalog {
	return &RunCatalog{inner: inner, columns: make(map[string][]Column)}
}

func (c *RunCatalog) ListTables(ctx context.Context) ([]string, error) {
	return c.inner.ListTables(ctx)
}

func (c *RunCatalog) Columns(ctx context.Context, table string) ([]Column, error) {
	// Fast path
	c.mu.RLock()
	cols, ok := c.columns[table]
	c.mu.RUnlock()
	if ok {
		return cols, nil
	}

	result, err, _ := c.sf.Do(table, func() (interface{}, error) {
		c.mu.RLock()
		cols, ok := c.columns[table]
		c.mu.RUnlock()
		if ok {
			return cols, nil
		}

		cols, err := c.inner.Columns(ctx, table)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.columns[table] = cols
		c.mu.Unlock()
		return cols, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Column), nil
}

func (c *RunCatalog) ColumnTypes(ctx context.Context, table string) ([]codec.TypeTag, error) {
	cols, err := c.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	return Tags(cols), nil
}
