package tablesync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tablesync/core/database"
	"tablesync/core/kvstore"
	"tablesync/core/metrics"
	"tablesync/core/reconcile"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunOptions overrides the configured settings for a single run.
type RunOptions struct {
	// Tables narrows the run to these tables.
	Tables []string
	// DryRun computes plans without writing.
	DryRun bool
	// Concurrency overrides Config.Concurrency when positive.
	Concurrency int
	// Workers overrides Config.Workers when positive.
	Workers int
}

// Service runs backup and recovery between the relational database and the
// key-value store.
type Service struct {
	db         *gorm.DB
	relational string
	kv         kvstore.TableStore
	kvName     string
	catalog    database.SchemaCatalog
	cfg        Config
	log        *zap.Logger
	metrics    *metrics.Recorder
	lockClient redis.UniversalClient
}

// NewService binds the stores. rec may be nil. The run lock needs kv to be a
// redis store.
func NewService(db *gorm.DB, kv kvstore.TableStore, cfg Config, log *zap.Logger, rec *metrics.Recorder) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		db:         db,
		relational: db.Dialector.Name(),
		kv:         kv,
		kvName:     kvstore.BackendName(kv),
		catalog:    database.NewCatalog(db),
		cfg:        cfg,
		log:        log,
		metrics:    rec,
	}
	if cfg.Lock {
		rs, ok := kv.(*kvstore.RedisStore)
		if !ok {
			return nil, fmt.Errorf("sync.lock requires the redis key-value backend, got %s", s.kvName)
		}
		s.lockClient = rs.Client()
	}
	return s, nil
}

// Catalog returns the schema catalog of the relational database.
func (s *Service) Catalog() database.SchemaCatalog {
	return s.catalog
}

// Tables returns the relational tables selected by the configured and requested
// filters. Naming a table that does not exist is an error.
func (s *Service) Tables(ctx context.Context, requested []string) ([]string, error) {
	all, err := s.catalog.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return selectTables(all, s.cfg.Tables, requested, s.cfg.Exclude)
}

// Run reconciles every selected table in the direction of mode. Table and entity
// failures are in the report. A setup failure returns no report; a lost run lock
// returns the partial report together with ErrLockLost.
func (s *Service) Run(ctx context.Context, mode Mode, opts RunOptions) (*reconcile.Report, error) {
	runID := uuid.NewString()
	log := s.log.With(zap.String("run_id", runID))

	if s.lockClient != nil && !opts.DryRun {
		ttl := time.Duration(s.cfg.LockTTLSeconds) * time.Second
		lock, err := AcquireRunLock(ctx, s.lockClient, s.lockKey(), runID, ttl, log)
		if err != nil {
			return nil, err
		}
		releaseCtx := context.WithoutCancel(ctx)
		defer func() {
			if err := lock.Release(releaseCtx); err != nil {
				log.Warn("Failed to release run lock", zap.Error(err))
			}
		}()

		var stop func()
		ctx, stop = lock.Guard(ctx)
		defer stop()
	}

	// A fresh catalog per run so schema changes between runs are picked up.
	catalog := database.NewRunCatalog(s.catalog)
	tables, err := catalog.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	tables, err = selectTables(tables, s.cfg.Tables, opts.Tables, s.cfg.Exclude)
	if err != nil {
		return nil, err
	}

	relational := NewRelationalAdapter(s.relational, database.NewStore(s.db), catalog, DeleteMatch(s.cfg.DeleteMatch))
	kv := NewKeyValueAdapter(s.kvName, s.kv)

	var source, target reconcile.Store
	switch mode {
	case ModeBackup:
		source, target = relational, kv
	case ModeRecovery:
		source, target = kv, relational
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	ropts := reconcile.Options{
		RunID:       runID,
		Mode:        mode.String(),
		DryRun:      opts.DryRun,
		Workers:     firstPositive(opts.Workers, s.cfg.Workers),
		Concurrency: firstPositive(opts.Concurrency, s.cfg.Concurrency),
	}
	log.Info("Starting synchronization",
		zap.String("mode", mode.String()),
		zap.String("source", source.Name()),
		zap.String("target", target.Name()),
		zap.Strings("tables", tables),
		zap.Bool("dry_run", opts.DryRun))

	report := reconcile.NewRunner(source, target, ropts, s.log, s.metrics).Run(ctx, tables)

	totals := report.Totals()
	log.Info("Synchronization finished",
		zap.Int("tables", totals.Tables),
		zap.Int("failed_tables", totals.FailedTables),
		zap.Int("upserted", totals.Upserted),
		zap.Int("deleted", totals.Deleted),
		zap.Int("entity_errors", totals.EntityErrors),
		zap.Duration("duration", report.Duration))

	if errors.Is(context.Cause(ctx), ErrLockLost) {
		return report, fmt.Errorf("%s run %s stopped: %w", mode, runID, ErrLockLost)
	}
	return report, nil
}

func (s *Service) lockKey() string {
	if rs, ok := s.kv.(*kvstore.RedisStore); ok {
		return rs.Prefix() + ":lock"
	}
	return "tablesync:lock"
}

// selectTables keeps the tables named by both include lists (an empty list allows
// every table) and drops the excluded ones. Names match case-insensitively and the
// catalog spelling is kept.
func selectTables(all, configured, requested, exclude []string) ([]string, error) {
	byName := make(map[string]string, len(all))
	for _, t := range all {
		byName[strings.ToLower(t)] = t
	}

	allowed := func(list []string) (map[string]bool, error) {
		if len(list) == 0 {
			return nil, nil
		}
		set := make(map[string]bool, len(list))
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			t, ok := byName[strings.ToLower(name)]
			if !ok {
				return nil, fmt.Errorf("unknown table %q", name)
			}
			set[t] = true
		}
		return set, nil
	}

	cfgSet, err := allowed(configured)
	if err != nil {
		return nil, err
	}
	reqSet, err := allowed(requested)
	if err != nil {
		return nil, err
	}
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[strings.ToLower(strings.TrimSpace(name))] = true
	}

	tables := make([]string, 0, len(all))
	for _, t := range all {
		if cfgSet != nil && !cfgSet[t] {
			continue
		}
		if reqSet != nil && !reqSet[t] {
			continue
		}
		if excluded[strings.ToLower(t)] {
			continue
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
