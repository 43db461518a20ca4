// Package resample implements the resampling engine: case-partitioning
// controls, the candidate evaluation loop, the performance table it
// produces, and selection of the best candidate from that table.
package resample

import (
	"fmt"
	"math/rand/v2"

	"github.com/chen061218/MachineShop/pkg/errors"
)

// Fold is one resampling iteration: the case indices to fit on and the
// case indices to score on. Train may be a multiset (bootstrap draws
// with replacement). Resub marks the resubstitution fold emitted by the
// optimism-corrected controls.
type Fold struct {
	Train []int
	Eval  []int
	Resub bool
}

// Control is a case-partitioning scheme. Splits must be re-enumerable:
// calling it twice with the same n yields identical folds, because the
// same control may be applied at several nesting levels and re-applied
// when stitching out-of-fold predictions for stacking.
type Control interface {
	Name() string
	Splits(n int) ([]Fold, error)
}

// defaults shared by the control variants
const (
	defaultFolds   = 5
	defaultSamples = 25
	defaultProp    = 2.0 / 3.0
)

// newRNG builds the deterministic random source used by all controls.
func newRNG(seed int64, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), stream))
}

// ===========================================================================
//
//	Cross-validation
//
// ===========================================================================

// CVControl is k-fold cross-validation with optional repeats and
// optional stratification. Each fold serves once as the evaluation set
// with the remaining cases as training; train and eval are disjoint
// within an iteration. When Strata is non-nil (one grouping key per
// case, e.g. class label or event status) folds preserve the stratum
// proportions within integer rounding.
type CVControl struct {
	Folds   int
	Repeats int
	Strata  []int
	Seed    int64
}

// Name implements Control.
func (c CVControl) Name() string { return "CV" }

// Splits implements Control.
func (c CVControl) Splits(n int) ([]Fold, error) {
	folds := c.Folds
	if folds == 0 {
		folds = defaultFolds
	}
	repeats := c.Repeats
	if repeats == 0 {
		repeats = 1
	}
	if n < 2 {
		return nil, errors.NewValueError("CVControl.Splits", "need at least 2 cases")
	}
	if folds < 2 || folds > n {
		return nil, errors.NewValueError("CVControl.Splits",
			fmt.Sprintf("fold count %d must be in [2, %d]", folds, n))
	}
	if c.Strata != nil && len(c.Strata) != n {
		return nil, errors.NewDimensionError("CVControl.Splits", n, len(c.Strata), 0)
	}

	out := make([]Fold, 0, folds*repeats)
	for r := 0; r < repeats; r++ {
		rng := newRNG(c.Seed, uint64(r))
		var evalSets [][]int
		if c.Strata != nil {
			evalSets = stratifiedEvalSets(n, folds, c.Strata, rng)
		} else {
			evalSets = contiguousEvalSets(rng.Perm(n), folds)
		}
		for _, eval := range evalSets {
			out = append(out, Fold{Train: complement(n, eval), Eval: eval})
		}
	}
	return out, nil
}

// contiguousEvalSets chunks a permutation into k evaluation sets whose
// sizes differ by at most one.
func contiguousEvalSets(perm []int, k int) [][]int {
	n := len(perm)
	base := n / k
	remainder := n % k
	sets := make([][]int, k)
	at := 0
	for i := 0; i < k; i++ {
		size := base
		if i < remainder {
			size++
		}
		sets[i] = append([]int(nil), perm[at:at+size]...)
		at += size
	}
	return sets
}

// stratifiedEvalSets distributes each stratum's cases across the k
// evaluation sets so stratum proportions are preserved within rounding.
func stratifiedEvalSets(n, k int, strata []int, rng *rand.Rand) [][]int {
	groups := make(map[int][]int)
	order := make([]int, 0)
	for i := 0; i < n; i++ {
		if _, ok := groups[strata[i]]; !ok {
			order = append(order, strata[i])
		}
		groups[strata[i]] = append(groups[strata[i]], i)
	}

	sets := make([][]int, k)
	for _, key := range order {
		group := groups[key]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		chunks := contiguousEvalSets(group, k)
		for i := 0; i < k; i++ {
			sets[i] = append(sets[i], chunks[i]...)
		}
	}
	return sets
}

func complement(n int, idx []int) []int {
	in := make([]bool, n)
	for _, i := range idx {
		in[i] = true
	}
	out := make([]int, 0, n-len(idx))
	for i := 0; i < n; i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

func allCases(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// ===========================================================================
//
//	Bootstrap
//
// ===========================================================================

// BootControl draws Samples bootstrap resamples of size n with
// replacement as training sets and evaluates each fit on the full set
// of cases, so training and evaluation overlap by construction.
type BootControl struct {
	Samples int
	Seed    int64
}

// Name implements Control.
func (c BootControl) Name() string { return "Boot" }

// Splits implements Control.
func (c BootControl) Splits(n int) ([]Fold, error) {
	draws, err := bootDraws("BootControl.Splits", n, c.Samples, c.Seed)
	if err != nil {
		return nil, err
	}
	out := make([]Fold, len(draws))
	for i, train := range draws {
		out[i] = Fold{Train: train, Eval: allCases(n)}
	}
	return out, nil
}

// OOBControl draws bootstrap resamples like BootControl but evaluates
// strictly on the out-of-bag cases, the complement of each draw. Draws
// that happen to include every case are kept with an empty evaluation
// set; the resampler records such iterations as failed cells.
type OOBControl struct {
	Samples int
	Seed    int64
}

// Name implements Control.
func (c OOBControl) Name() string { return "OOB" }

// Splits implements Control.
func (c OOBControl) Splits(n int) ([]Fold, error) {
	draws, err := bootDraws("OOBControl.Splits", n, c.Samples, c.Seed)
	if err != nil {
		return nil, err
	}
	out := make([]Fold, len(draws))
	for i, train := range draws {
		out[i] = Fold{Train: train, Eval: complement(n, uniqueSorted(train))}
	}
	return out, nil
}

func bootDraws(op string, n, samples int, seed int64) ([][]int, error) {
	if n < 2 {
		return nil, errors.NewValueError(op, "need at least 2 cases")
	}
	if samples == 0 {
		samples = defaultSamples
	}
	if samples < 1 {
		return nil, errors.NewValueError(op, "sample count must be positive")
	}
	draws := make([][]int, samples)
	for s := 0; s < samples; s++ {
		rng := newRNG(seed, uint64(s))
		draw := make([]int, n)
		for i := range draw {
			draw[i] = rng.IntN(n)
		}
		draws[s] = draw
	}
	return draws, nil
}

func uniqueSorted(idx []int) []int {
	seen := make(map[int]bool, len(idx))
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}

// ===========================================================================
//
//	Optimism-corrected variants
//
// ===========================================================================

// BootOptimismControl prepends a resubstitution fold (train = eval =
// all cases, tagged Resub) to the ordinary bootstrap folds. The
// performance table computes optimism = resub - resampled and applies
// it as a correction at summary time; the resampler itself only carries
// the tag.
type BootOptimismControl struct {
	Samples int
	Seed    int64
}

// Name implements Control.
func (c BootOptimismControl) Name() string { return "BootOptimism" }

// Splits implements Control.
func (c BootOptimismControl) Splits(n int) ([]Fold, error) {
	folds, err := BootControl{Samples: c.Samples, Seed: c.Seed}.Splits(n)
	if err != nil {
		return nil, err
	}
	return prependResub(n, folds), nil
}

// CVOptimismControl prepends a resubstitution fold to ordinary
// cross-validation folds, analogous to BootOptimismControl.
type CVOptimismControl struct {
	Folds   int
	Repeats int
	Strata  []int
	Seed    int64
}

// Name implements Control.
func (c CVOptimismControl) Name() string { return "CVOptimism" }

// Splits implements Control.
func (c CVOptimismControl) Splits(n int) ([]Fold, error) {
	folds, err := CVControl{Folds: c.Folds, Repeats: c.Repeats, Strata: c.Strata, Seed: c.Seed}.Splits(n)
	if err != nil {
		return nil, err
	}
	return prependResub(n, folds), nil
}

func prependResub(n int, folds []Fold) []Fold {
	resub := Fold{Train: allCases(n), Eval: allCases(n), Resub: true}
	return append([]Fold{resub}, folds...)
}

// ===========================================================================
//
//	Split and resubstitution
//
// ===========================================================================

// SplitControl is a single train/test split with proportion Prop of the
// cases used for training. Train and eval are disjoint.
type SplitControl struct {
	Prop float64
	Seed int64
}

// Name implements Control.
func (c SplitControl) Name() string { return "Split" }

// Splits implements Control.
func (c SplitControl) Splits(n int) ([]Fold, error) {
	prop := c.Prop
	if prop == 0 {
		prop = defaultProp
	}
	if prop <= 0 || prop >= 1 {
		return nil, errors.NewValueError("SplitControl.Splits",
			fmt.Sprintf("proportion %g must be in (0, 1)", prop))
	}
	if n < 2 {
		return nil, errors.NewValueError("SplitControl.Splits", "need at least 2 cases")
	}
	nTrain := int(float64(n) * prop)
	if nTrain < 1 {
		nTrain = 1
	}
	if nTrain >= n {
		nTrain = n - 1
	}
	perm := newRNG(c.Seed, 0).Perm(n)
	train := append([]int(nil), perm[:nTrain]...)
	eval := append([]int(nil), perm[nTrain:]...)
	return []Fold{{Train: train, Eval: eval}}, nil
}

// TrainControl is resubstitution: a single fold fitting and evaluating
// on all cases. Used when the caller explicitly wants in-sample
// performance.
type TrainControl struct{}

// Name implements Control.
func (c TrainControl) Name() string { return "Train" }

// Splits implements Control.
func (c TrainControl) Splits(n int) ([]Fold, error) {
	if n < 1 {
		return nil, errors.NewValueError("TrainControl.Splits", "need at least 1 case")
	}
	return []Fold{{Train: allCases(n), Eval: allCases(n)}}, nil
}
