package tablesync

// Config holds the synchronization settings.
type Config struct {
	// Tables restricts runs to these tables. Empty means every table.
	Tables []string `mapstructure:"tables" default:""`
	// Exclude skips these tables.
	Exclude []string `mapstructure:"exclude" default:""`
	// Concurrency is the number of tables reconciled at once.
	Concurrency int `mapstructure:"concurrency" default:"1" validate:"min=1"`
	// Workers is the number of goroutines applying one table's changes.
	Workers int `mapstructure:"workers" default:"8" validate:"min=1"`
	// DeleteMatch selects how relational deletes find their row: "row" matches every
	// column, "key" matches the id only.
	DeleteMatch string `mapstructure:"delete_match" default:"row" validate:"oneof=row key"`
	// Lock takes a redis lease for the duration of a run. Requires the redis backend.
	Lock bool `mapstructure:"lock" default:"false"`
	// LockTTLSeconds is the lease duration; it is refreshed while the run lasts.
	LockTTLSeconds int `mapstructure:"lock_ttl_seconds" default:"60" validate:"min=1"`
}
