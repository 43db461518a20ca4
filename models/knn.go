package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/core/parallel"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// knnParallelThreshold is the evaluation row count above which
// prediction fans out across CPU cores.
const knnParallelThreshold = 64

// KNN is k-nearest-neighbor regression under Euclidean distance. The
// neighbor count "k" is its single tunable dimension.
type KNN struct{}

// Info implements model.Learner.
func (KNN) Info() model.LearnerInfo {
	return model.LearnerInfo{
		Name:      "KNN",
		Responses: []model.ResponseKind{model.Numeric},
		Ranges: []model.ParamRange{
			{Name: "k", Min: 1, Max: 15, Integer: true},
		},
	}
}

// Fit implements model.Learner. Fitting stores the training cases; the
// work happens at prediction time.
func (KNN) Fit(ds model.Dataset, p model.Params) (model.Fitted, error) {
	k := int(math.Round(p.Get("k", 5)))
	if k < 1 {
		return nil, errors.NewValueError("KNN.Fit", "k must be at least 1")
	}
	if ds.N() < k {
		return nil, errors.NewValueError("KNN.Fit", "fewer training cases than neighbors")
	}
	x := mat.DenseCopyOf(ds.X)
	y := append([]float64(nil), ds.Y.Values...)
	return &knnFit{k: k, x: x, y: y}, nil
}

type knnFit struct {
	k int
	x *mat.Dense
	y []float64
}

// Predict implements model.Fitted.
func (f *knnFit) Predict(ds model.Dataset) (model.Prediction, error) {
	n, p := ds.X.Dims()
	train, trainP := f.x.Dims()
	if p != trainP {
		return model.Prediction{}, errors.NewDimensionError("KNN.Predict", trainP, p, 1)
	}

	values := make([]float64, n)
	parallel.ParallelizeWithThreshold(n, knnParallelThreshold, func(start, end int) {
		dist := make([]float64, train)
		order := make([]int, train)
		for i := start; i < end; i++ {
			for t := 0; t < train; t++ {
				var d float64
				for j := 0; j < p; j++ {
					diff := ds.X.At(i, j) - f.x.At(t, j)
					d += diff * diff
				}
				dist[t] = d
				order[t] = t
			}
			sort.Slice(order, func(a, b int) bool { return dist[order[a]] < dist[order[b]] })
			var sum float64
			for _, t := range order[:f.k] {
				sum += f.y[t]
			}
			values[i] = sum / float64(f.k)
		}
	})
	return model.Prediction{Kind: model.Numeric, Values: values}, nil
}
