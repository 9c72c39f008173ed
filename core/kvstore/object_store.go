package kvstore

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"path"
	"strings"

	"tablesync/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

const objectExtension = ".msgpack"

// ObjectStore keeps one object per item under <prefix>/<table>/<partition>/<row>.msgpack.
type ObjectStore struct {
	client storage.Client
	bucket string
	prefix string
}

// NewObjectStore stores items in bucket through the storage client.
func NewObjectStore(client storage.Client, bucket, prefix string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *ObjectStore) tablePrefix(table string) string {
	return path.Join(s.prefix, url.PathEscape(table)) + "/"
}

func (s *ObjectStore) objectName(table string, item Item) string {
	return s.tablePrefix(table) + url.PathEscape(item.PartitionKey) + "/" + url.PathEscape(item.RowKey) + objectExtension
}

// EnsureTable makes sure the bucket exists. Tables are plain key prefixes.
func (s *ObjectStore) EnsureTable(ctx context.Context, table string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrapf(err, "BucketExists failed. bucket: %s", s.bucket)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrapf(err, "MakeBucket failed. bucket: %s", s.bucket)
	}
	return nil
}

func (s *ObjectStore) ListItems(ctx context.Context, table string) ([]Item, error) {
	var items []Item
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.tablePrefix(table),
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, errors.Wrapf(obj.Err, "ListObjects failed. table: %s", table)
		}
		if !strings.HasSuffix(obj.Key, objectExtension) {
			continue
		}
		item, err := s.readItem(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	sortItems(items)
	return items, nil
}

func (s *ObjectStore) readItem(ctx context.Context, key string) (Item, error) {
	reader, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return Item{}, errors.Wrapf(err, "GetObject failed. key: %s", key)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return Item{}, errors.Wrapf(err, "read object failed. key: %s", key)
	}
	item, err := Unmarshal(data)
	if err != nil {
		return Item{}, errors.WithMessagef(err, "decode item failed. key: %s", key)
	}
	return item, nil
}

func (s *ObjectStore) UpsertItem(ctx context.Context, table string, item Item) error {
	data, err := Marshal(item)
	if err != nil {
		return err
	}
	name := s.objectName(table, item)
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/msgpack"})
	if err != nil {
		return errors.Wrapf(err, "PutObject failed. key: %s", name)
	}
	return nil
}

func (s *ObjectStore) DeleteItem(ctx context.Context, table string, item Item) error {
	if err := validate(item); err != nil {
		return err
	}
	name := s.objectName(table, item)
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, "RemoveObject failed. key: %s", name)
	}
	return nil
}

func (s *ObjectStore) Close() error {
	return nil
}
