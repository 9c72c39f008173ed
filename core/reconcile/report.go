package reconcile

import (
	"time"

	"go.uber.org/multierr"
)

// Report aggregates the table reports of one run.
type Report struct {
	RunID    string        `json:"run_id"`
	Mode     string        `json:"mode"`
	DryRun   bool          `json:"dry_run"`
	Tables   []TableReport `json:"tables"`
	Duration time.Duration `json:"duration_ns"`
}

// Totals are the counts of a whole run.
type Totals struct {
	Tables         int `json:"tables"`
	FailedTables   int `json:"failed_tables"`
	Upserted       int `json:"upserted"`
	Deleted        int `json:"deleted"`
	PlannedUpserts int `json:"planned_upserts"`
	PlannedDeletes int `json:"planned_deletes"`
	EntityErrors   int `json:"entity_errors"`
}

// Failed reports whether any table was aborted or had a failed mutation.
func (r *Report) Failed() bool {
	for i := range r.Tables {
		if r.Tables[i].Failed() {
			return true
		}
	}
	return false
}

// Err combines every table and entity error of the run, nil if there is none.
func (r *Report) Err() error {
	var err error
	for i := range r.Tables {
		t := &r.Tables[i]
		if t.Err != nil {
			err = multierr.Append(err, t.Err)
		}
		for j := range t.Errors {
			err = multierr.Append(err, &t.Errors[j])
		}
	}
	return err
}

// Totals sums the table reports.
func (r *Report) Totals() Totals {
	totals := Totals{Tables: len(r.Tables)}
	for i := range r.Tables {
		t := &r.Tables[i]
		if t.Failed() {
			totals.FailedTables++
		}
		totals.Upserted += t.Upserted
		totals.Deleted += t.Deleted
		totals.PlannedUpserts += t.Planned.Upserts
		totals.PlannedDeletes += t.Planned.Deletes
		totals.EntityErrors += len(t.Errors)
	}
	return totals
}
