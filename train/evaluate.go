package train

import (
	"context"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/resample"
)

// Evaluate estimates the out-of-sample performance of a specification
// under a resampling control, without selecting anything: the whole
// tree is treated as one opaque candidate whose fit on each training
// subset resolves all of its internal tuning and selection within that
// subset. ctrl and ms fall back to the Config defaults when nil.
func Evaluate(ctx context.Context, spec Spec, ds model.Dataset, ctrl resample.Control, ms []metrics.Metric, cfg Config) (*resample.PerformanceTable, error) {
	cfg = cfg.withDefaults(ds.Y.Kind)
	if err := validate(spec, ds.Y.Kind); err != nil {
		return nil, err
	}
	cand := specCandidate{id: Label(spec), spec: spec, cfg: cfg}
	return resample.Evaluate(ctx, ds, cfg.controlOr(ctrl), []resample.Candidate{cand},
		cfg.metricsOr(ms), cfg.resampleOptions())
}
