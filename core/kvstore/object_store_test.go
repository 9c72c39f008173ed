package kvstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"tablesync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func objectChannel(infos ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(infos))
	for _, info := range infos {
		ch <- info
	}
	close(ch)
	return ch
}

func TestObjectStore(t *testing.T) {
	ctx := context.Background()
	alice := Item{PartitionKey: "users", RowKey: "1", Attributes: []Attribute{{Name: "name", Value: "Alice"}}}

	t.Run("EnsureTable Creates Missing Bucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "backup").Return(false, nil)
		client.On("MakeBucket", ctx, "backup", minio.MakeBucketOptions{}).Return(nil)

		store := NewObjectStore(client, "backup", "tablesync")
		assert.NoError(t, store.EnsureTable(ctx, "users"))
		client.AssertExpectations(t)
	})

	t.Run("EnsureTable Skips Existing Bucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "backup").Return(true, nil)

		store := NewObjectStore(client, "backup", "tablesync")
		assert.NoError(t, store.EnsureTable(ctx, "users"))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UpsertItem Writes Msgpack Object", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("PutObject", ctx, "backup", "tablesync/users/users/1.msgpack", mock.Anything, mock.AnythingOfType("int64"),
			minio.PutObjectOptions{ContentType: "application/msgpack"}).Return(minio.UploadInfo{}, nil)

		store := NewObjectStore(client, "backup", "/tablesync/")
		assert.NoError(t, store.UpsertItem(ctx, "users", alice))
		client.AssertExpectations(t)
	})

	t.Run("Object Names Escape Keys", func(t *testing.T) {
		store := NewObjectStore(nil, "backup", "")
		name := store.objectName("a/b", Item{PartitionKey: "a/b", RowKey: "1"})
		assert.Equal(t, "a%2Fb/a%2Fb/1.msgpack", name)
	})

	t.Run("ListItems Reads Every Object", func(t *testing.T) {
		data, err := Marshal(alice)
		require.NoError(t, err)

		client := new(mocks.Client)
		client.On("ListObjects", ctx, "backup", minio.ListObjectsOptions{Prefix: "tablesync/users/", Recursive: true}).
			Return(objectChannel(
				minio.ObjectInfo{Key: "tablesync/users/users/1.msgpack"},
				minio.ObjectInfo{Key: "tablesync/users/README"},
			))
		client.On("GetObject", ctx, "backup", "tablesync/users/users/1.msgpack", minio.GetObjectOptions{}).
			Return(io.NopCloser(bytes.NewReader(data)), nil)

		store := NewObjectStore(client, "backup", "tablesync")
		items, err := store.ListItems(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, []Item{alice}, items)
	})

	t.Run("ListItems Surfaces Listing Errors", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", ctx, "backup", mock.Anything).
			Return(objectChannel(minio.ObjectInfo{Err: errors.New("access denied")}))

		store := NewObjectStore(client, "backup", "tablesync")
		_, err := store.ListItems(ctx, "users")
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("DeleteItem Removes Object", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("RemoveObject", ctx, "backup", "tablesync/users/users/1.msgpack", minio.RemoveObjectOptions{}).Return(nil)

		store := NewObjectStore(client, "backup", "tablesync")
		assert.NoError(t, store.DeleteItem(ctx, "users", Item{PartitionKey: "users", RowKey: "1"}))
		client.AssertExpectations(t)
	})
}
