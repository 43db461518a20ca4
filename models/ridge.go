package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// defaultLambda is the penalty used when no assignment supplies one.
const defaultLambda = 1.0

// Ridge is L2-penalized least squares regression with an intercept.
// The penalty "lambda" is its single tunable dimension.
type Ridge struct{}

// Info implements model.Learner.
func (Ridge) Info() model.LearnerInfo {
	return model.LearnerInfo{
		Name:      "Ridge",
		Responses: []model.ResponseKind{model.Numeric},
		Ranges: []model.ParamRange{
			{Name: "lambda", Min: 0.01, Max: 10},
		},
	}
}

// Fit implements model.Learner. Solves the normal equations
// (A'A + lambda*I) beta = A'y with the intercept left unpenalized.
func (Ridge) Fit(ds model.Dataset, p model.Params) (model.Fitted, error) {
	lambda := p.Get("lambda", defaultLambda)
	if lambda < 0 {
		return nil, errors.NewValueError("Ridge.Fit", "lambda must be non-negative")
	}
	n, cols := ds.X.Dims()
	if n < 2 {
		return nil, errors.NewValueError("Ridge.Fit", "need at least 2 cases")
	}

	a := designMatrix(ds.X)
	y := mat.NewVecDense(n, append([]float64(nil), ds.Y.Values...))

	var gram mat.Dense
	gram.Mul(a.T(), a)
	for j := 1; j <= cols; j++ {
		gram.Set(j, j, gram.At(j, j)+lambda)
	}

	var aty mat.VecDense
	aty.MulVec(a.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&gram, &aty); err != nil {
		return nil, errors.Wrap(err, "Ridge.Fit")
	}

	coef := make([]float64, cols)
	for j := 0; j < cols; j++ {
		coef[j] = beta.AtVec(j + 1)
	}
	return &linearFit{name: "Ridge", intercept: beta.AtVec(0), coef: coef}, nil
}
