package kvstore

import (
	"context"
	"sort"
)

// TableStore is a key-value store organised in tables of items.
type TableStore interface {
	// EnsureTable creates the table if it does not exist yet.
	EnsureTable(ctx context.Context, table string) error
	// ListItems returns every item of the table. A missing table has no items.
	ListItems(ctx context.Context, table string) ([]Item, error)
	// UpsertItem writes the item, fully replacing any item with the same keys.
	UpsertItem(ctx context.Context, table string, item Item) error
	// DeleteItem removes the item addressed by its partition and row keys.
	// Deleting a missing item is not an error.
	DeleteItem(ctx context.Context, table string, item Item) error
	// Close releases the underlying connection or file handle.
	Close() error
}

// BackendName names the backend of store for reports and logs.
func BackendName(store TableStore) string {
	switch store.(type) {
	case *RedisStore:
		return "redis"
	case *BoltStore:
		return "bolt"
	case *ObjectStore:
		return "object"
	default:
		return "kv"
	}
}

// sortItems orders items by partition then row key so listings are stable.
func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].PartitionKey != items[j].PartitionKey {
			return items[i].PartitionKey < items[j].PartitionKey
		}
		return items[i].RowKey < items[j].RowKey
	})
}
