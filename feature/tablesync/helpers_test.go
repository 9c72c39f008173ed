package tablesync

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tablesync/core/database"
	"tablesync/core/kvstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T, ddl ...string) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: name})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func setupBolt(t *testing.T) *kvstore.BoltStore {
	t.Helper()
	store, err := kvstore.OpenBoltStore(filepath.Join(t.TempDir(), "kv.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func setupRedis(t *testing.T) (*kvstore.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := kvstore.NewRedisStore(client, "test")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func item(table, id string, attrs ...kvstore.Attribute) kvstore.Item {
	return kvstore.Item{PartitionKey: table, RowKey: id, Attributes: attrs}
}

func attr(name string, value any) kvstore.Attribute {
	return kvstore.Attribute{Name: name, Value: value}
}

func listItems(t *testing.T, store kvstore.TableStore, table string) []kvstore.Item {
	t.Helper()
	items, err := store.ListItems(context.Background(), table)
	require.NoError(t, err)
	return items
}

type userRow struct {
	ID   int64
	Name string
	Age  int64
}

func listUsers(t *testing.T, db *gorm.DB) []userRow {
	t.Helper()
	var rows []userRow
	require.NoError(t, db.Raw("SELECT id, name, age FROM users ORDER BY id").Scan(&rows).Error)
	return rows
}
