package train

import (
	"time"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/pkg/log"
	"github.com/chen061218/MachineShop/resample"
)

// Config carries the defaults threaded through Train and Evaluate:
// the fallback resampling control and metric set for nodes that do not
// declare their own, the summary statistic, the parallelism degree, and
// the random seed. There is no process-wide mutable default; callers
// start from DefaultConfig and override what they need.
type Config struct {
	// Control is the fallback resampling control.
	Control resample.Control
	// Metrics is the fallback metric set; nil picks the default set
	// for the dataset's response kind.
	Metrics []metrics.Metric
	// Stat is the summary statistic for ranking; zero means the mean.
	Stat metrics.Statistic
	// Workers bounds the parallel evaluation of resampling cells.
	// Callers sizing it should know that resampling depth multiplies
	// the number of fits exponentially.
	Workers int
	// Seed drives grid random draws; resampling controls carry their
	// own seeds.
	Seed int64
	// CellBudget, when positive, is the per-cell computation budget;
	// an exceeded budget fails the cell, not the run.
	CellBudget time.Duration
	// Logger receives structured training and resampling records.
	Logger log.Logger
}

// DefaultConfig returns the standard configuration: 5-fold
// cross-validation, the mean statistic, and response-kind default
// metrics resolved at train time.
func DefaultConfig() Config {
	return Config{
		Control: resample.CVControl{Folds: 5},
		Stat:    metrics.Mean(),
	}
}

// withDefaults fills unset fields for a dataset's response kind.
func (c Config) withDefaults(kind model.ResponseKind) Config {
	if c.Control == nil {
		c.Control = resample.CVControl{Folds: 5}
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Defaults(kind)
	}
	if c.Stat.Apply == nil {
		c.Stat = metrics.Mean()
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// controlOr returns the node's control when set, else the fallback.
func (c Config) controlOr(ctrl resample.Control) resample.Control {
	if ctrl != nil {
		return ctrl
	}
	return c.Control
}

// metricsOr returns the node's metric set when set, else the fallback.
func (c Config) metricsOr(ms []metrics.Metric) []metrics.Metric {
	if ms != nil {
		return ms
	}
	return c.Metrics
}

// statOr returns the node's statistic when set, else the fallback.
func (c Config) statOr(stat metrics.Statistic) metrics.Statistic {
	if stat.Apply != nil {
		return stat
	}
	return c.Stat
}

// resampleOptions builds the evaluation options shared by all nodes.
func (c Config) resampleOptions() resample.Options {
	return resample.Options{
		Workers:    c.Workers,
		CellBudget: c.CellBudget,
		Logger:     c.Logger,
	}
}
