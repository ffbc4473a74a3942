package transfer

import "time"

// Options is the configuration surface consumed by the engine. Zero values
// for the numeric fields are replaced with the defaults at run start.
type Options struct {
	// BatchSize is the number of rows read and written per page.
	BatchSize int `koanf:"batch_size"`
	// MaxWorkers bounds concurrent table transfers in parallel mode and
	// sizes the batches the planner emits.
	MaxWorkers int `koanf:"max_workers"`

	CreateSchema       bool `koanf:"create_schema"`
	CreateTables       bool `koanf:"create_tables"`
	DropExistingTables bool `koanf:"drop_existing_tables"`
	DisableConstraints bool `koanf:"disable_constraints"`
	IgnoreForeignKeys  bool `koanf:"ignore_foreign_keys"`
	ContinueOnError    bool `koanf:"continue_on_error"`
	VerifyData         bool `koanf:"verify_data"`
	ParallelTables     bool `koanf:"parallel_tables"`

	// TimeoutPerTable caps how long one table's transfer may run, in
	// seconds. A stalled table counts as a failed table; the underlying
	// connection is not force-closed.
	TimeoutPerTable int `koanf:"timeout_per_table"`
}

// DefaultOptions returns the options used when no configuration overrides
// them.
func DefaultOptions() Options {
	return Options{
		BatchSize:       1000,
		MaxWorkers:      4,
		CreateSchema:    true,
		CreateTables:    true,
		VerifyData:      true,
		TimeoutPerTable: 3600,
	}
}

// normalize fills invalid numeric fields with their defaults.
func (o *Options) normalize() {
	if o.BatchSize < 1 {
		o.BatchSize = 1000
	}
	if o.MaxWorkers < 1 {
		o.MaxWorkers = 4
	}
	if o.TimeoutPerTable < 1 {
		o.TimeoutPerTable = 3600
	}
}

// tableTimeout returns the per-table deadline as a duration.
func (o Options) tableTimeout() time.Duration {
	return time.Duration(o.TimeoutPerTable) * time.Second
}
