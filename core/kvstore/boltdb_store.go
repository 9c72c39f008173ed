package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// BoltStore keeps each table in its own bbolt bucket.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) the bbolt file at path.
// timeout bounds the wait for the file lock; zero waits forever.
func OpenBoltStore(path string, timeout time.Duration) (*BoltStore, error) {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, errors.Wrapf(err, "os.MkdirAll failed. directory: %s", directory)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrapf(err, "bolt.Open failed. path: %s", path)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) EnsureTable(ctx context.Context, table string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(table)); err != nil {
			return errors.Wrapf(err, "create bucket failed. table: %s", table)
		}
		return nil
	})
}

// Tables returns the names of every bucket in the file.
func (s *BoltStore) Tables(ctx context.Context) ([]string, error) {
	var tables []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			tables = append(tables, string(name))
			return nil
		})
	})
	return tables, err
}

func (s *BoltStore) ListItems(ctx context.Context, table string) ([]Item, error) {
	var items []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(table))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := Unmarshal(v)
			if err != nil {
				return errors.WithMessagef(err, "decode item failed. table: %s, key: %q", table, k)
			}
			items = append(items, item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortItems(items)
	return items, nil
}

func (s *BoltStore) UpsertItem(ctx context.Context, table string, item Item) error {
	data, err := Marshal(item)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(table))
		if err != nil {
			return errors.Wrapf(err, "create bucket failed. table: %s", table)
		}
		return bucket.Put([]byte(itemKey(item.PartitionKey, item.RowKey)), data)
	})
}

func (s *BoltStore) DeleteItem(ctx context.Context, table string, item Item) error {
	if err := validate(item); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(table))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(itemKey(item.PartitionKey, item.RowKey)))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
