package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/chen061218/MachineShop/pkg/errors"
)

// Dataset is an immutable view over a predictor matrix and its response.
// Weights are optional per-case weights passed through to learners that
// honor them; nil means equal weights.
//
// The engine shares one Dataset read-only across parallel resampling
// cells; Subset materializes copies, so a subset never aliases rows of
// its parent.
type Dataset struct {
	X       mat.Matrix
	Y       Response
	Weights []float64
}

// NewDataset validates row counts and builds a Dataset.
func NewDataset(x mat.Matrix, y Response, weights []float64) (Dataset, error) {
	rows, _ := x.Dims()
	if rows != y.Len() {
		return Dataset{}, errors.NewDimensionError("NewDataset", rows, y.Len(), 0)
	}
	if weights != nil && len(weights) != rows {
		return Dataset{}, errors.NewDimensionError("NewDataset", rows, len(weights), 0)
	}
	return Dataset{X: x, Y: y, Weights: weights}, nil
}

// N returns the number of cases.
func (d Dataset) N() int {
	rows, _ := d.X.Dims()
	return rows
}

// Features returns the number of predictor columns.
func (d Dataset) Features() int {
	_, cols := d.X.Dims()
	return cols
}

// Subset returns a new Dataset holding copies of the rows at idx, in
// order. Indices may repeat (bootstrap draws with replacement), so the
// result can be a multiset of the original cases.
func (d Dataset) Subset(idx []int) Dataset {
	_, cols := d.X.Dims()
	x := mat.NewDense(len(idx), cols, nil)
	for i, j := range idx {
		for c := 0; c < cols; c++ {
			x.Set(i, c, d.X.At(j, c))
		}
	}
	var weights []float64
	if d.Weights != nil {
		weights = make([]float64, len(idx))
		for i, j := range idx {
			weights[i] = d.Weights[j]
		}
	}
	return Dataset{X: x, Y: d.Y.Subset(idx), Weights: weights}
}
