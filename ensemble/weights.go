package ensemble

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/pkg/errors"
)

const (
	weightIterations = 2000
	weightTolerance  = 1e-10
)

// SolveWeights estimates stacking weights w >= 0 with sum(w) = 1
// minimizing the squared error between y and the weighted combination
// of the out-of-fold base predictions. Projected gradient descent onto
// the probability simplex; deterministic for fixed inputs.
func SolveWeights(oof mat.Matrix, y []float64) ([]float64, error) {
	n, k := oof.Dims()
	if n != len(y) {
		return nil, errors.NewDimensionError("ensemble.SolveWeights", n, len(y), 0)
	}
	if k < 2 {
		return nil, errors.NewInsufficientBaseLearnersError("stacked model", k)
	}

	// fixed step from a Frobenius bound on the Lipschitz constant of
	// the gradient, 2*||A||^2/n
	var frob float64
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			v := oof.At(i, j)
			frob += v * v
		}
	}
	if frob == 0 {
		return nil, errors.NewValueError("ensemble.SolveWeights", "all base predictions are zero")
	}
	step := float64(n) / (2 * frob)

	w := make([]float64, k)
	for j := range w {
		w[j] = 1 / float64(k)
	}
	resid := make([]float64, n)
	grad := make([]float64, k)
	next := make([]float64, k)

	for iter := 0; iter < weightIterations; iter++ {
		// resid = A w - y
		for i := 0; i < n; i++ {
			var s float64
			for j := 0; j < k; j++ {
				s += oof.At(i, j) * w[j]
			}
			resid[i] = s - y[i]
		}
		// grad = 2 A^T resid / n
		for j := 0; j < k; j++ {
			var s float64
			for i := 0; i < n; i++ {
				s += oof.At(i, j) * resid[i]
			}
			grad[j] = 2 * s / float64(n)
		}
		for j := 0; j < k; j++ {
			next[j] = w[j] - step*grad[j]
		}
		projectSimplex(next)

		var delta float64
		for j := 0; j < k; j++ {
			delta = math.Max(delta, math.Abs(next[j]-w[j]))
		}
		copy(w, next)
		if delta < weightTolerance {
			break
		}
	}

	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewValueError("ensemble.SolveWeights", "weight optimization diverged")
		}
	}
	return w, nil
}

// SolveWeightsConcordance estimates stacking weights for survival
// responses by maximizing the censoring-aware concordance of the
// weighted combination. The simplex constraint is enforced through a
// softmax parameterization searched with Nelder-Mead, since the
// concordance objective is rank-based and has no usable gradient.
func SolveWeightsConcordance(oof mat.Matrix, times []float64, events []bool) ([]float64, error) {
	n, k := oof.Dims()
	if n != len(times) || n != len(events) {
		return nil, errors.NewDimensionError("ensemble.SolveWeightsConcordance", n, len(times), 0)
	}
	if k < 2 {
		return nil, errors.NewInsufficientBaseLearnersError("stacked model", k)
	}

	scores := make([]float64, n)
	objective := func(z []float64) float64 {
		w := softmax(z)
		combineScores(oof, w, scores)
		c, err := metrics.Concordance(times, events, scores)
		if err != nil {
			return 1 // worst possible: no comparable pairs
		}
		return -c
	}

	problem := optimize.Problem{Func: objective}
	z0 := make([]float64, k)
	result, err := optimize.Minimize(problem, z0, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, errors.Wrap(err, "ensemble.SolveWeightsConcordance")
	}
	return softmax(result.X), nil
}

// combineScores writes the weighted combination of the columns of oof
// into dst.
func combineScores(oof mat.Matrix, w []float64, dst []float64) {
	n, k := oof.Dims()
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < k; j++ {
			s += oof.At(i, j) * w[j]
		}
		dst[i] = s
	}
}

func softmax(z []float64) []float64 {
	w := make([]float64, len(z))
	maxZ := floats.Max(z)
	var sum float64
	for j, v := range z {
		w[j] = math.Exp(v - maxZ)
		sum += w[j]
	}
	for j := range w {
		w[j] /= sum
	}
	return w
}

// projectSimplex projects v in place onto the probability simplex
// (Duchi et al. 2008).
func projectSimplex(v []float64) {
	k := len(v)
	sorted := append([]float64(nil), v...)
	// descending
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if sorted[j] > sorted[i] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	var cumsum, theta float64
	for i := 0; i < k; i++ {
		cumsum += sorted[i]
		t := (cumsum - 1) / float64(i+1)
		if sorted[i] > t {
			theta = t
		}
	}
	for i := range v {
		v[i] = math.Max(v[i]-theta, 0)
	}
}
