package cmd

import (
	"context"
	"fmt"

	"tablesync/core/config"
	"tablesync/core/database"
	"tablesync/core/kvstore"
	"tablesync/core/logger"
	"tablesync/core/metrics"
	"tablesync/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the resources shared by the commands.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	kv      kvstore.TableStore
	metrics *metrics.Recorder
}

// bootstrap loads the configuration and connects the database. The key-value
// store is opened only when withKV is set.
func bootstrap(ctx context.Context, withKV bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	a := &app{cfg: cfg, log: logg, metrics: metrics.New(cfg.Metrics.Namespace)}

	a.db, err = database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}
	logg.Debug("Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("name", cfg.Database.Name))

	if !withKV {
		return a, nil
	}

	var objects storage.Client
	if cfg.KV.Backend == "object" {
		objects, err = storage.NewClient(cfg.Storage)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	a.kv, err = kvstore.Open(ctx, cfg.KV, objects, cfg.Storage.Bucket)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open key-value store: %w", err)
	}
	logg.Debug("Opened key-value store", zap.String("backend", kvstore.BackendName(a.kv)))

	return a, nil
}

func (a *app) close() {
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			a.log.Warn("Failed to close key-value store", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.log.Warn("Failed to close database", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
