package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// LinReg is ordinary least squares regression with an intercept.
type LinReg struct{}

// Info implements model.Learner.
func (LinReg) Info() model.LearnerInfo {
	return model.LearnerInfo{
		Name:      "LinReg",
		Responses: []model.ResponseKind{model.Numeric},
	}
}

// Fit implements model.Learner.
func (LinReg) Fit(ds model.Dataset, _ model.Params) (model.Fitted, error) {
	n, p := ds.X.Dims()
	if n <= p {
		return nil, errors.NewValueError("LinReg.Fit",
			fmt.Sprintf("need more cases (%d) than predictors (%d)", n, p))
	}

	a := designMatrix(ds.X)
	b := mat.NewVecDense(n, append([]float64(nil), ds.Y.Values...))

	var qr mat.QR
	qr.Factorize(a)
	beta := mat.NewDense(p+1, 1, nil)
	if err := qr.SolveTo(beta, false, b); err != nil {
		return nil, errors.Wrap(err, "LinReg.Fit")
	}

	coef := make([]float64, p)
	for j := 0; j < p; j++ {
		coef[j] = beta.At(j+1, 0)
	}
	return &linearFit{name: "LinReg", intercept: beta.At(0, 0), coef: coef}, nil
}

// linearFit is the shared fitted object of LinReg and Ridge.
type linearFit struct {
	name      string
	intercept float64
	coef      []float64
}

// Predict implements model.Fitted.
func (f *linearFit) Predict(ds model.Dataset) (model.Prediction, error) {
	n, p := ds.X.Dims()
	if p != len(f.coef) {
		return model.Prediction{}, errors.NewDimensionError(f.name+".Predict", len(f.coef), p, 1)
	}
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		v := f.intercept
		for j := 0; j < p; j++ {
			v += f.coef[j] * ds.X.At(i, j)
		}
		values[i] = v
	}
	return model.Prediction{Kind: model.Numeric, Values: values}, nil
}

// VarImp implements model.VariableImporter: absolute coefficient sizes.
func (f *linearFit) VarImp() (map[string]float64, error) {
	imp := make(map[string]float64, len(f.coef))
	for j, c := range f.coef {
		imp[fmt.Sprintf("x%d", j)] = math.Abs(c)
	}
	return imp, nil
}

// designMatrix prepends an intercept column of ones.
func designMatrix(x mat.Matrix) *mat.Dense {
	n, p := x.Dims()
	a := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		a.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			a.Set(i, j+1, x.At(i, j))
		}
	}
	return a
}
