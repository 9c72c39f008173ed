package tablesync

import (
	"context"
	"strconv"

	"tablesync/core/codec"
	"tablesync/core/entity"
	"tablesync/core/kvstore"
)

// KeyValueAdapter exposes key-value tables as entity sets.
type KeyValueAdapter struct {
	name  string
	store kvstore.TableStore
}

// NewKeyValueAdapter creates the adapter.
func NewKeyValueAdapter(name string, store kvstore.TableStore) *KeyValueAdapter {
	return &KeyValueAdapter{name: name, store: store}
}

func (a *KeyValueAdapter) Name() string { return a.name }

// Prepare creates the table if it does not exist.
func (a *KeyValueAdapter) Prepare(ctx context.Context, table string) error {
	return a.store.EnsureTable(ctx, table)
}

func (a *KeyValueAdapter) FetchAll(ctx context.Context, table string) ([]entity.Entity, error) {
	items, err := a.store.ListItems(ctx, table)
	if err != nil {
		return nil, err
	}

	entities := make([]entity.Entity, 0, len(items))
	for _, item := range items {
		e, err := codec.FromKeyValueItem(item)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (a *KeyValueAdapter) Upsert(ctx context.Context, table string, e entity.Entity) error {
	return a.store.UpsertItem(ctx, table, codec.ToKeyValueItem(e.WithTable(table)))
}

// Delete removes the item addressed by the entity's partition and id. Fetched
// entities carry the partition key they were stored under, which may differ from
// the table name.
func (a *KeyValueAdapter) Delete(ctx context.Context, table string, e entity.Entity) error {
	partition := e.Table()
	if partition == "" {
		partition = table
	}
	return a.store.DeleteItem(ctx, table, kvstore.Item{
		PartitionKey: partition,
		RowKey:       strconv.FormatInt(e.ID(), 10),
	})
}
