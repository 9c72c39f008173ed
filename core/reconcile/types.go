package reconcile

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionType is the kind of mutation applied to the target store.
type ActionType string

const (
	// ActionUpsert writes an entity to the target.
	ActionUpsert ActionType = "upsert"
	// ActionDelete removes an entity from the target.
	ActionDelete ActionType = "delete"
)

const (
	defaultWorkers     = 8
	defaultConcurrency = 1
)

// Options controls a synchronization run.
type Options struct {
	// RunID identifies the run in reports and logs.
	RunID string

	// Mode names the direction, e.g. "backup" or "recovery".
	Mode string

	// DryRun computes plans without preparing or mutating the target.
	DryRun bool

	// Workers is the number of goroutines applying one table's plan.
	Workers int

	// Concurrency is the number of tables reconciled at once.
	Concurrency int
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return defaultWorkers
	}
	return o.Workers
}

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return defaultConcurrency
	}
	return o.Concurrency
}

// EntityError is the failure of one mutation.
type EntityError struct {
	Table string
	ID    int64
	Op    ActionType
	Err   error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s %s id %d: %v", e.Op, e.Table, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error { return e.Err }

// MarshalJSON renders the error as text.
func (e EntityError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    int64      `json:"id"`
		Op    ActionType `json:"op"`
		Error string     `json:"error"`
	}{e.ID, e.Op, e.Err.Error()})
}

// ApplyResult counts the mutations applied by Apply.
type ApplyResult struct {
	Upserted int
	Deleted  int
	Errors   []EntityError
}

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	Upserts int `json:"upserts"`
	Deletes int `json:"deletes"`
}

// TableReport is the outcome of reconciling one table.
type TableReport struct {
	Table    string        `json:"table"`
	Mode     string        `json:"mode"`
	Source   string        `json:"source"`
	Target   string        `json:"target"`
	DryRun   bool          `json:"dry_run"`
	Planned  PlanSummary   `json:"planned"`
	Upserted int           `json:"upserted"`
	Deleted  int           `json:"deleted"`
	Errors   []EntityError `json:"errors,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration_ns"`
}

// Failed reports whether the table was aborted or any mutation failed.
func (r *TableReport) Failed() bool {
	return r.Err != nil || len(r.Errors) > 0
}

// MarshalJSON adds the abort error as text.
func (r TableReport) MarshalJSON() ([]byte, error) {
	type plain TableReport
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}
