// Package tune constructs candidate parameter grids for model tuning:
// regularly spaced values Cartesian-expanded over a learner's tunable
// dimensions, or unique random draws from the parameter space.
package tune

import (
	"math"
	"math/rand/v2"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// Grid describes how to realize candidate parameter assignments for one
// learner. When Random is positive, Random unique draws are sampled from
// the parameter space; otherwise Length values per dimension are spaced
// regularly and Cartesian-expanded. Duplicate assignments are collapsed
// without backfill, so a realized grid may be smaller than requested.
type Grid struct {
	Length int
	Random int
}

// maxRandomAttempts bounds duplicate regeneration for random grids; the
// contract only requires duplicates to be collapsed, not backfilled.
const maxRandomAttempts = 10

// Realize generates the ordered parameter assignments of the grid for
// the given learner. A learner with no tunable dimensions yields a
// single empty assignment, so tuned and untuned fits share one code
// path. rng is only consulted for random grids.
func (g Grid) Realize(info model.LearnerInfo, rng *rand.Rand) ([]model.Params, error) {
	if g.Random < 0 {
		return nil, errors.NewInvalidGridSpecError(g.Length, g.Random, "random draw count must be positive")
	}
	if g.Random == 0 && g.Length < 1 {
		return nil, errors.NewInvalidGridSpecError(g.Length, g.Random, "length must be positive")
	}

	if len(info.Ranges) == 0 {
		return []model.Params{{}}, nil
	}

	if g.Random > 0 {
		if rng == nil {
			return nil, errors.NewValueError("Grid.Realize", "random grid requires a random source")
		}
		return g.randomAssignments(info, rng), nil
	}
	return g.regularAssignments(info), nil
}

// regularAssignments spaces Length values over each dimension and
// Cartesian-expands them, collapsing duplicates (integer rounding can
// introduce them) while preserving first-occurrence order.
func (g Grid) regularAssignments(info model.LearnerInfo) []model.Params {
	values := make([][]float64, len(info.Ranges))
	for d, r := range info.Ranges {
		values[d] = spacedValues(r, g.Length)
	}

	out := make([]model.Params, 0, g.Length)
	seen := make(map[string]bool)
	counters := make([]int, len(values))
	for {
		p := make(model.Params, len(values))
		for d, r := range info.Ranges {
			p[r.Name] = values[d][counters[d]]
		}
		if key := p.Key(); !seen[key] {
			seen[key] = true
			out = append(out, p)
		}

		// advance the mixed-radix counter
		d := len(counters) - 1
		for d >= 0 {
			counters[d]++
			if counters[d] < len(values[d]) {
				break
			}
			counters[d] = 0
			d--
		}
		if d < 0 {
			break
		}
	}
	return out
}

// randomAssignments draws up to Random unique assignments uniformly
// from the parameter space. Duplicate draws are regenerated a bounded
// number of times and otherwise collapsed.
func (g Grid) randomAssignments(info model.LearnerInfo, rng *rand.Rand) []model.Params {
	out := make([]model.Params, 0, g.Random)
	seen := make(map[string]bool)
	for len(out) < g.Random {
		var p model.Params
		found := false
		for attempt := 0; attempt < maxRandomAttempts; attempt++ {
			p = drawAssignment(info, rng)
			if !seen[p.Key()] {
				found = true
				break
			}
		}
		if !found {
			break
		}
		seen[p.Key()] = true
		out = append(out, p)
	}
	return out
}

func drawAssignment(info model.LearnerInfo, rng *rand.Rand) model.Params {
	p := make(model.Params, len(info.Ranges))
	for _, r := range info.Ranges {
		v := r.Min + rng.Float64()*(r.Max-r.Min)
		if r.Integer {
			v = math.Round(v)
		}
		p[r.Name] = v
	}
	return p
}

func spacedValues(r model.ParamRange, length int) []float64 {
	if length == 1 {
		v := (r.Min + r.Max) / 2
		if r.Integer {
			v = math.Round(v)
		}
		return []float64{v}
	}
	values := make([]float64, 0, length)
	seen := make(map[float64]bool)
	step := (r.Max - r.Min) / float64(length-1)
	for i := 0; i < length; i++ {
		v := r.Min + float64(i)*step
		if r.Integer {
			v = math.Round(v)
		}
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}
