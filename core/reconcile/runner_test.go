package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"tablesync/core/codec"
	"tablesync/core/entity"
	"tablesync/core/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("Converges And Is Idempotent", func(t *testing.T) {
		source := newMemStore("mysql")
		target := newMemStore("redis")
		source.put(
			ent(t, "users", 1, map[string]any{"name": "Alice", "age": 30}),
			ent(t, "users", 2, map[string]any{"name": "Bob", "age": 41}),
			ent(t, "orders", 7, map[string]any{"total": 9.5}),
		)
		target.put(
			ent(t, "users", 2, map[string]any{"name": "Bob", "age": 40}),
			ent(t, "users", 5, map[string]any{"name": "Eve"}),
		)

		runner := NewRunner(source, target, Options{Mode: "backup", RunID: "r1"}, zap.NewNop(), nil)
		report := runner.Run(ctx, []string{"users", "orders"})
		require.NoError(t, report.Err())
		assert.False(t, report.Failed())
		assert.Equal(t, "r1", report.RunID)

		users := report.Tables[0]
		assert.Equal(t, "users", users.Table)
		assert.Equal(t, "mysql", users.Source)
		assert.Equal(t, "redis", users.Target)
		assert.Equal(t, PlanSummary{Upserts: 2, Deletes: 2}, users.Planned)
		assert.Equal(t, 2, users.Upserted)
		assert.Equal(t, 2, users.Deleted)
		assert.True(t, target.prepared["users"])

		assert.Equal(t, Totals{Tables: 2, Upserted: 3, Deleted: 2, PlannedUpserts: 3, PlannedDeletes: 2}, report.Totals())

		before := target.ops()
		second := runner.Run(ctx, []string{"users", "orders"})
		require.NoError(t, second.Err())
		for _, tr := range second.Tables {
			assert.Equal(t, PlanSummary{}, tr.Planned, tr.Table)
		}
		assert.Equal(t, before, target.ops())
	})

	t.Run("Fetch Error Aborts Only That Table", func(t *testing.T) {
		source := newMemStore("mysql")
		source.put(ent(t, "users", 1, nil))
		target := &failingFetch{memStore: newMemStore("redis"), table: "broken"}

		report := NewRunner(source, target, Options{Mode: "backup"}, zap.NewNop(), nil).
			Run(ctx, []string{"broken", "users"})

		assert.True(t, report.Failed())
		require.Error(t, report.Tables[0].Err)
		assert.True(t, errors.Is(report.Tables[0].Err, errBoom))
		assert.Contains(t, report.Tables[0].Err.Error(), "fetch redis broken")
		assert.NoError(t, report.Tables[1].Err)
		assert.Equal(t, 1, report.Tables[1].Upserted)
		assert.Equal(t, 1, report.Totals().FailedTables)
	})

	t.Run("Entity Errors Fail The Run", func(t *testing.T) {
		source := newMemStore("kv")
		source.put(ent(t, "users", 1, nil), ent(t, "users", 2, nil))
		target := newMemStore("mysql")
		target.failIDs[2] = errBoom

		report := NewRunner(source, target, Options{Mode: "recovery"}, zap.NewNop(), nil).Run(ctx, []string{"users"})
		assert.True(t, report.Failed())
		assert.Equal(t, 1, report.Tables[0].Upserted)

		err := report.Err()
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 1)
		assert.True(t, errors.Is(err, errBoom))
	})

	t.Run("Dry Run Does Not Touch Target", func(t *testing.T) {
		source := newMemStore("mysql")
		source.put(ent(t, "users", 1, nil))
		target := newMemStore("redis")

		report := NewRunner(source, target, Options{DryRun: true}, zap.NewNop(), nil).Run(ctx, []string{"users"})
		assert.Equal(t, PlanSummary{Upserts: 1}, report.Tables[0].Planned)
		assert.Zero(t, report.Tables[0].Upserted)
		assert.Zero(t, target.ops())
		assert.False(t, target.prepared["users"])
	})

	t.Run("Concurrency Limit", func(t *testing.T) {
		source := newMemStore("mysql")
		target := newMemStore("redis")
		var inFlight, peak atomic.Int32
		source.fetchHook = func() {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
		}

		tables := []string{"a", "b", "c", "d", "e", "f"}
		report := NewRunner(source, target, Options{Concurrency: 3}, zap.NewNop(), nil).Run(ctx, tables)
		require.Len(t, report.Tables, 6)
		for i, tr := range report.Tables {
			assert.Equal(t, tables[i], tr.Table)
		}
		assert.LessOrEqual(t, peak.Load(), int32(3))
		assert.Greater(t, peak.Load(), int32(1))
	})

	t.Run("Warns When Source Is Empty", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		source := newMemStore("mysql")
		target := newMemStore("redis")
		target.put(ent(t, "users", 1, nil))

		NewRunner(source, target, Options{}, zap.New(core), nil).Run(ctx, []string{"users"})
		assert.Equal(t, 1, logs.FilterMessageSnippet("Source table is empty").Len())
	})

	t.Run("Abort Log Names The Null Column", func(t *testing.T) {
		_, nullErr := codec.FromRelationalRow("users", []string{"id", "nickname"}, []any{int64(3), nil})
		require.ErrorIs(t, nullErr, codec.ErrNullValue)

		core, logs := observer.New(zapcore.ErrorLevel)
		source := &failingFetch{memStore: newMemStore("mysql"), table: "users", err: nullErr}

		report := NewRunner(source, newMemStore("redis"), Options{}, zap.New(core), nil).Run(ctx, []string{"users"})
		require.ErrorIs(t, report.Tables[0].Err, codec.ErrNullValue)

		aborted := logs.FilterMessage("Table aborted").All()
		require.Len(t, aborted, 1)
		fields := aborted[0].ContextMap()
		assert.Equal(t, "nickname", fields["column"])
		assert.Equal(t, "3", fields["entity_id"])
	})

	t.Run("Records Metrics", func(t *testing.T) {
		rec := metrics.New("test")
		source := newMemStore("mysql")
		source.put(ent(t, "users", 1, nil))

		NewRunner(source, newMemStore("redis"), Options{Mode: "backup"}, zap.NewNop(), rec).Run(ctx, []string{"users"})
		count, err := testutil.GatherAndCount(rec.Registry(), "test_tables_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestTableReportJSON(t *testing.T) {
	rep := TableReport{
		Table:  "users",
		Mode:   "recovery",
		Errors: []EntityError{{Table: "users", ID: 4, Op: ActionUpsert, Err: errBoom}},
		Err:    errors.New("aborted"),
	}

	data, err := json.Marshal(rep)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "users", out["table"])
	assert.Equal(t, "aborted", out["error"])
	assert.Equal(t, []any{map[string]any{"id": 4.0, "op": "upsert", "error": "boom"}}, out["errors"])
}

type failingFetch struct {
	*memStore
	table string
	err   error
}

func (f *failingFetch) FetchAll(ctx context.Context, table string) ([]entity.Entity, error) {
	if table == f.table {
		if f.err != nil {
			return nil, f.err
		}
		return nil, errBoom
	}
	return f.memStore.FetchAll(ctx, table)
}
