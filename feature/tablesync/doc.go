// Package tablesync synchronizes the relational database with the key-value table
// store.
//
// It adapts both stores to reconcile.Store and picks the direction from the mode:
//
//   - backup: the relational database is the source, the key-value store the target.
//   - recovery: the key-value store is the source, the relational database the target.
//
// Every run reads the schema afresh through a run-scoped catalog, so column types
// are queried once per table and reused for every upsert and delete of that table.
//
// # Usage
//
//	svc, err := tablesync.NewService(db, kv, cfg.Sync, log, rec)
//	report, err := svc.Run(ctx, tablesync.ModeBackup, tablesync.RunOptions{})
package tablesync
