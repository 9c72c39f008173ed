package tablesync

import (
	"context"
	"fmt"

	"tablesync/core/codec"
	"tablesync/core/database"
	"tablesync/core/entity"
	"tablesync/core/reconcile"
)

// DeleteMatch selects the WHERE clause of relational deletes.
type DeleteMatch string

const (
	// DeleteMatchRow deletes only a row whose every column still holds the
	// entity's values.
	DeleteMatchRow DeleteMatch = "row"
	// DeleteMatchKey deletes the row with the entity's id.
	DeleteMatchKey DeleteMatch = "key"
)

var (
	_ reconcile.Store    = (*RelationalAdapter)(nil)
	_ reconcile.Store    = (*KeyValueAdapter)(nil)
	_ reconcile.Preparer = (*KeyValueAdapter)(nil)
)

// RelationalAdapter exposes relational tables as entity sets.
type RelationalAdapter struct {
	name        string
	store       *database.Store
	catalog     database.SchemaCatalog
	deleteMatch DeleteMatch
}

// NewRelationalAdapter creates the adapter. catalog should be scoped to one run.
func NewRelationalAdapter(name string, store *database.Store, catalog database.SchemaCatalog, match DeleteMatch) *RelationalAdapter {
	if match == "" {
		match = DeleteMatchRow
	}
	return &RelationalAdapter{name: name, store: store, catalog: catalog, deleteMatch: match}
}

func (a *RelationalAdapter) Name() string { return a.name }

func (a *RelationalAdapter) FetchAll(ctx context.Context, table string) ([]entity.Entity, error) {
	set, err := a.store.FetchAllRows(ctx, table)
	if err != nil {
		return nil, err
	}

	entities := make([]entity.Entity, 0, len(set.Rows))
	for _, row := range set.Rows {
		e, err := codec.FromRelationalRow(table, set.Columns, row)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (a *RelationalAdapter) Upsert(ctx context.Context, table string, e entity.Entity) error {
	columns, values, err := a.encode(ctx, table, e)
	if err != nil {
		return err
	}
	return a.store.UpsertRow(ctx, table, columns, values)
}

func (a *RelationalAdapter) Delete(ctx context.Context, table string, e entity.Entity) error {
	if a.deleteMatch == DeleteMatchKey {
		return a.store.DeleteRow(ctx, table, []string{codec.IDColumn}, []any{e.ID()})
	}

	columns, values, err := a.encode(ctx, table, e)
	if err != nil {
		return err
	}
	return a.store.DeleteRow(ctx, table, columns, values)
}

// encode converts e to the column names and coerced values of table.
func (a *RelationalAdapter) encode(ctx context.Context, table string, e entity.Entity) ([]string, []any, error) {
	cols, err := a.catalog.Columns(ctx, table)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read schema of %s: %w", table, err)
	}
	names := database.Names(cols)
	if err := codec.CheckColumns(e, names); err != nil {
		return nil, nil, err
	}

	row, err := codec.ToRelationalRow(e.WithTable(table), database.Tags(cols))
	if err != nil {
		return nil, nil, err
	}
	return names, row.Values, nil
}
