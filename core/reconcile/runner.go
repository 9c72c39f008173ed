package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tablesync/core/codec"
	"tablesync/core/entity"
	"tablesync/core/logger"
	"tablesync/core/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner reconciles tables of a target store onto a source store.
type Runner struct {
	source  Store
	target  Store
	opts    Options
	log     *zap.Logger
	metrics *metrics.Recorder
	tracer  trace.Tracer
}

// NewRunner creates a runner. rec may be nil.
func NewRunner(source, target Store, opts Options, log *zap.Logger, rec *metrics.Recorder) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		source:  source,
		target:  target,
		opts:    opts,
		log:     logger.WithRun(log, opts.RunID, opts.Mode),
		metrics: rec,
		tracer:  otel.Tracer("tablesync/reconcile"),
	}
}

// Run reconciles every table and returns the aggregated report. Tables run in
// parallel up to the configured concurrency and share no state; a failing table
// does not stop the others.
func (r *Runner) Run(ctx context.Context, tables []string) *Report {
	report := &Report{
		RunID:  r.opts.RunID,
		Mode:   r.opts.Mode,
		DryRun: r.opts.DryRun,
		Tables: make([]TableReport, len(tables)),
	}
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(r.opts.concurrency())
	for i, table := range tables {
		i, table := i, table
		g.Go(func() error {
			report.Tables[i] = r.ReconcileTable(ctx, table)
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	return report
}

// ReconcileTable prepares the target, fetches both sides, diffs and applies.
func (r *Runner) ReconcileTable(ctx context.Context, table string) (rep TableReport) {
	start := time.Now()
	log := logger.WithTable(r.log, table)

	ctx, span := r.tracer.Start(ctx, "reconcile.table", trace.WithAttributes(
		attribute.String("table", table),
		attribute.String("mode", r.opts.Mode),
		attribute.Bool("dry_run", r.opts.DryRun),
	))
	defer span.End()

	rep = TableReport{
		Table:  table,
		Mode:   r.opts.Mode,
		Source: r.source.Name(),
		Target: r.target.Name(),
		DryRun: r.opts.DryRun,
	}
	defer func() {
		rep.Duration = time.Since(start)
		r.finish(span, log, &rep)
	}()

	if p, ok := r.target.(Preparer); ok && !r.opts.DryRun {
		if err := p.Prepare(ctx, table); err != nil {
			rep.Err = fmt.Errorf("prepare %s %s: %w", r.target.Name(), table, err)
			return rep
		}
	}

	sourceSet, targetSet, err := r.fetch(ctx, table)
	if err != nil {
		rep.Err = err
		return rep
	}

	plan := Diff(table, sourceSet, targetSet)
	rep.Planned = plan.Summary()
	log.Debug("Plan computed",
		zap.Int("source", len(sourceSet)),
		zap.Int("target", len(targetSet)),
		zap.Int("upserts", rep.Planned.Upserts),
		zap.Int("deletes", rep.Planned.Deletes))

	if len(sourceSet) == 0 && len(targetSet) > 0 {
		log.Warn("Source table is empty, every target entity will be deleted",
			zap.String("source", r.source.Name()),
			zap.Int("deletes", len(targetSet)))
	}

	result := Apply(ctx, plan, r.target, r.opts)
	rep.Upserted = result.Upserted
	rep.Deleted = result.Deleted
	rep.Errors = result.Errors
	return rep
}

// fetch reads both sides concurrently.
func (r *Runner) fetch(ctx context.Context, table string) (source, target []entity.Entity, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		source, err = r.source.FetchAll(gctx, table)
		if err != nil {
			return fmt.Errorf("fetch %s %s: %w", r.source.Name(), table, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		target, err = r.target.FetchAll(gctx, table)
		if err != nil {
			return fmt.Errorf("fetch %s %s: %w", r.target.Name(), table, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return source, target, nil
}

// abortFields names the entity and column a conversion failure points at.
func abortFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	var cerr *codec.Error
	if errors.As(err, &cerr) {
		if cerr.ID != "" {
			fields = append(fields, zap.String("entity_id", cerr.ID))
		}
		if cerr.Column != "" {
			fields = append(fields, zap.String("column", cerr.Column))
		}
	}
	return fields
}

func (r *Runner) finish(span trace.Span, log *zap.Logger, rep *TableReport) {
	failedUpserts, failedDeletes := 0, 0
	for _, e := range rep.Errors {
		if e.Op == ActionUpsert {
			failedUpserts++
		} else {
			failedDeletes++
		}
		log.Error("Entity operation failed",
			zap.String("op", string(e.Op)),
			zap.Int64("id", e.ID),
			zap.Error(e.Err))
	}

	span.SetAttributes(
		attribute.Int("upserted", rep.Upserted),
		attribute.Int("deleted", rep.Deleted),
		attribute.Int("errors", len(rep.Errors)),
	)

	switch {
	case rep.Err != nil:
		span.RecordError(rep.Err)
		span.SetStatus(codes.Error, rep.Err.Error())
		log.Error("Table aborted", append(abortFields(rep.Err), zap.Duration("duration", rep.Duration))...)
	case len(rep.Errors) > 0:
		span.SetStatus(codes.Error, "entity operations failed")
		log.Warn("Table reconciled with errors",
			zap.Int("upserted", rep.Upserted),
			zap.Int("deleted", rep.Deleted),
			zap.Int("errors", len(rep.Errors)),
			zap.Duration("duration", rep.Duration))
	default:
		span.SetStatus(codes.Ok, "")
		log.Info("Table reconciled",
			zap.Int("upserted", rep.Upserted),
			zap.Int("deleted", rep.Deleted),
			zap.Int("planned_upserts", rep.Planned.Upserts),
			zap.Int("planned_deletes", rep.Planned.Deletes),
			zap.Bool("dry_run", rep.DryRun),
			zap.Duration("duration", rep.Duration))
	}

	r.metrics.ObserveTable(r.opts.Mode, rep.Table, metrics.TableStats{
		Upserted:      rep.Upserted,
		Deleted:       rep.Deleted,
		FailedUpserts: failedUpserts,
		FailedDeletes: failedDeletes,
		Failed:        rep.Failed(),
		Duration:      rep.Duration,
	})
}
