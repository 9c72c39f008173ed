package reconcile

import (
	"context"
	"sort"
	"sync"

	"tablesync/core/entity"
)

type mutation func(ctx context.Context, table string, e entity.Entity) error

// Apply executes plan against target. Deletes run first, then upserts, each
// through a pool of opts.Workers goroutines. A failed entity is recorded and the
// remaining entities still run.
func Apply(ctx context.Context, plan *Plan, target Store, opts Options) ApplyResult {
	var result ApplyResult
	if plan == nil || plan.Empty() || opts.DryRun {
		return result
	}

	deleted, deleteErrs := runPool(ctx, plan.Table, ActionDelete, plan.Deletes, opts.workers(), target.Delete)
	upserted, upsertErrs := runPool(ctx, plan.Table, ActionUpsert, plan.Upserts, opts.workers(), target.Upsert)

	result.Deleted = deleted
	result.Upserted = upserted
	result.Errors = append(deleteErrs, upsertErrs...)
	return result
}

// runPool applies fn to every entity using a worker pool.
// Concurrent calls are safe as each entity targets a distinct primary key.
func runPool(ctx context.Context, table string, op ActionType, entities []entity.Entity, numWorkers int, fn mutation) (int, []EntityError) {
	if len(entities) == 0 {
		return 0, nil
	}
	numWorkers = min(numWorkers, len(entities))

	entitiesCh := make(chan entity.Entity, len(entities))
	errorCh := make(chan EntityError, len(entities)) // Buffered to avoid blocking
	for _, e := range entities {
		entitiesCh <- e
	}
	close(entitiesCh)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for e := range entitiesCh {
				err := ctx.Err()
				if err == nil {
					err = fn(ctx, table, e)
				}
				if err != nil {
					errorCh <- EntityError{Table: table, ID: e.ID(), Op: op, Err: err}
				}
			}
		}()
	}

	wg.Wait()
	close(errorCh)

	var errs []EntityError
	for err := range errorCh {
		errs = append(errs, err)
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].ID < errs[j].ID })

	return len(entities) - len(errs), errs
}
