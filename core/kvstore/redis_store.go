package kvstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each table in a hash keyed by the encoded partition/row key.
// Table names are registered in a set so EnsureTable is observable.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisClient creates a go-redis client from the key-value configuration.
func NewRedisClient(cfg Config) *redis.Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
}

// NewRedisStore wraps an existing client. Keys are namespaced by prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tablesync"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Client exposes the underlying client, e.g. for distributed locking.
func (s *RedisStore) Client() redis.UniversalClient {
	return s.client
}

// Prefix returns the key namespace of the store.
func (s *RedisStore) Prefix() string {
	return s.prefix
}

func (s *RedisStore) tablesKey() string {
	return s.prefix + ":tables"
}

func (s *RedisStore) tableKey(table string) string {
	return s.prefix + ":table:" + table
}

func (s *RedisStore) EnsureTable(ctx context.Context, table string) error {
	if err := s.client.SAdd(ctx, s.tablesKey(), table).Err(); err != nil {
		return errors.Wrapf(err, "redis SADD failed. table: %s", table)
	}
	return nil
}

// Tables returns the registered table names.
func (s *RedisStore) Tables(ctx context.Context) ([]string, error) {
	tables, err := s.client.SMembers(ctx, s.tablesKey()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis SMEMBERS failed")
	}
	return tables, nil
}

func (s *RedisStore) ListItems(ctx context.Context, table string) ([]Item, error) {
	raw, err := s.client.HGetAll(ctx, s.tableKey(table)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "redis HGETALL failed. table: %s", table)
	}

	items := make([]Item, 0, len(raw))
	for field, data := range raw {
		item, err := Unmarshal([]byte(data))
		if err != nil {
			return nil, errors.WithMessagef(err, "decode item failed. table: %s, field: %q", table, field)
		}
		items = append(items, item)
	}
	sortItems(items)
	return items, nil
}

func (s *RedisStore) UpsertItem(ctx context.Context, table string, item Item) error {
	data, err := Marshal(item)
	if err != nil {
		return err
	}
	key := itemKey(item.PartitionKey, item.RowKey)
	if err := s.client.HSet(ctx, s.tableKey(table), key, data).Err(); err != nil {
		return errors.Wrapf(err, "redis HSET failed. table: %s, row: %s", table, item.RowKey)
	}
	return nil
}

func (s *RedisStore) DeleteItem(ctx context.Context, table string, item Item) error {
	if err := validate(item); err != nil {
		return err
	}
	key := itemKey(item.PartitionKey, item.RowKey)
	if err := s.client.HDel(ctx, s.tableKey(table), key).Err(); err != nil {
		return errors.Wrapf(err, "redis HDEL failed. table: %s, row: %s", table, item.RowKey)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
