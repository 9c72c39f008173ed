// Package metrics collects Prometheus counters for synchronization runs.
//
// A Recorder owns its own registry, so several recorders (one per test, say) can
// live in one process. At the end of a batch run the registry can be pushed to a
// Pushgateway, since the process exits before any scrape would happen.
//
// # Usage
//
//	rec := metrics.New("tablesync")
//	rec.ObserveTable("backup", "users", metrics.TableStats{Upserted: 3})
//	if cfg.Metrics.PushgatewayURL != "" {
//	    err := rec.Push(ctx, cfg.Metrics)
//	}
package metrics
