package kvstore

import (
	"context"
	"fmt"
	"time"

	"tablesync/core/storage"
)

// Open builds the TableStore selected by cfg.Backend.
// objects and bucket are only used by the object backend.
func Open(ctx context.Context, cfg Config, objects storage.Client, bucket string) (TableStore, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	switch cfg.Backend {
	case "redis":
		client := NewRedisClient(cfg)
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisStore(client, cfg.Prefix), nil
	case "bolt", "":
		store, err := OpenBoltStore(cfg.BoltPath, timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		return store, nil
	case "object":
		if objects == nil {
			return nil, fmt.Errorf("object backend requires a storage client")
		}
		return NewObjectStore(objects, bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown key-value backend %q", cfg.Backend)
	}
}
