// Package reconcile converges one store onto another, table by table.
//
// Both stores are seen through the Store interface as sets of entity.Entity. For a
// table, the source and target sets are fetched, their symmetric difference is
// computed by Diff and the resulting Plan is applied to the target:
//
//   - Upserts: entities present in the source but not in the target.
//   - Deletes: entities present in the target but not in the source.
//
// An entity whose fields changed appears in both lists (its new version as an
// upsert, its old version as a delete). Apply runs every delete before any upsert,
// so removing a stale version never removes its replacement.
//
// # Failure Model
//
// Fetch and diff errors abort the table. Apply errors are collected per entity
// and never stop the remaining entities: nothing is rolled back, and re-running
// recomputes the diff from the current state of both stores.
//
// # Concurrency
//
// Runner.Run processes tables in parallel up to Options.Concurrency (one by
// default). Within a table Apply uses Options.Workers goroutines; each operation
// targets a distinct primary key.
//
// # Usage Example
//
//	runner := reconcile.NewRunner(source, target, reconcile.Options{Mode: "backup"}, log, rec)
//	report := runner.Run(ctx, tables)
//	if err := report.Err(); err != nil {
//	    return err
//	}
package reconcile
