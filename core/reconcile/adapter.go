package reconcile

import (
	"context"

	"tablesync/core/entity"
)

// Store is one side of a synchronization. Implementations own their connection
// and must be safe for concurrent use.
type Store interface {
	// Name identifies the store in reports and logs (e.g. "mysql", "redis").
	Name() string

	// FetchAll returns every entity of table.
	FetchAll(ctx context.Context, table string) ([]entity.Entity, error)

	// Upsert writes e, fully replacing any record with the same id.
	Upsert(ctx context.Context, table string, e entity.Entity) error

	// Delete removes the record of e.
	Delete(ctx context.Context, table string, e entity.Entity) error
}

// Preparer is implemented by stores that need per-table setup before they can be
// written to, such as creating the table.
type Preparer interface {
	Prepare(ctx context.Context, table string) error
}
