// Package kvstore provides the schema-less key-value table store tablesync backs
// relational tables up to.
//
// A table is a set of items. Every item is addressed by a two-part key: the
// partition key (the grouping key, always the table name for tablesync) and the row
// key (unique within the partition). The remaining attributes are scalar values
// (int64, float64 or string) stored with their kind, so they come back exactly as
// they were written.
//
// # Backends
//
//   - redis: one hash per table, field = encoded partition/row key, value = item.
//   - bolt: one bbolt bucket per table in a local file.
//   - object: one object per item in an S3/MinIO bucket (see core/storage).
//
// All backends share the msgpack item encoding in encoding.go.
//
// # Usage
//
//	store, err := kvstore.Open(ctx, cfg.KV, objects, cfg.Storage.Bucket)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := store.EnsureTable(ctx, "users"); err != nil {
//	    return err
//	}
//	items, err := store.ListItems(ctx, "users")
package kvstore
