package ensemble

import (
	"gonum.org/v1/gonum/mat"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// StackedFit is the trained object of a stacked model: base learners
// refit on the entire dataset plus the estimated weight vector.
// Prediction is the weighted sum of the base learners' predictions.
type StackedFit struct {
	Bases   []model.Fitted
	Weights []float64
	Kind    model.ResponseKind
}

// Predict implements model.Fitted.
func (s *StackedFit) Predict(ds model.Dataset) (model.Prediction, error) {
	scores, err := BaseScores(s.Kind, s.Bases, ds)
	if err != nil {
		return model.Prediction{}, err
	}
	n, _ := scores.Dims()
	combined := make([]float64, n)
	combineScores(scores, s.Weights, combined)
	return model.Prediction{Kind: s.Kind, Values: combined}, nil
}

// SuperFit is the trained object of a super learner: base learners
// refit on the entire dataset plus a meta-learner fit over their
// predictions (and, when AllVars is set, the original predictors).
type SuperFit struct {
	Bases   []model.Fitted
	Meta    model.Fitted
	AllVars bool
	Kind    model.ResponseKind
}

// Predict implements model.Fitted.
func (s *SuperFit) Predict(ds model.Dataset) (model.Prediction, error) {
	scores, err := BaseScores(s.Kind, s.Bases, ds)
	if err != nil {
		return model.Prediction{}, err
	}
	metaX := MetaFeatures(scores, ds.X, s.AllVars)
	metaDS := model.Dataset{X: metaX, Y: model.Response{Kind: s.Kind}}
	return s.Meta.Predict(metaDS)
}

// BaseScores predicts with every base learner on ds and assembles one
// scalar score per case per learner into a cases x learners matrix.
func BaseScores(kind model.ResponseKind, bases []model.Fitted, ds model.Dataset) (*mat.Dense, error) {
	n := ds.N()
	out := mat.NewDense(n, len(bases), nil)
	for j, base := range bases {
		pred, err := base.Predict(ds)
		if err != nil {
			return nil, errors.Wrapf(err, "base learner %d prediction failed", j)
		}
		scores, _, err := predictionScores(kind, pred)
		if err != nil {
			return nil, err
		}
		if len(scores) != n {
			return nil, errors.NewDimensionError("ensemble.BaseScores", n, len(scores), 0)
		}
		for i, v := range scores {
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// MetaFeatures builds the meta-learner design matrix from base scores,
// optionally appending the original predictors.
func MetaFeatures(scores *mat.Dense, x mat.Matrix, allVars bool) *mat.Dense {
	n, k := scores.Dims()
	if !allVars {
		return scores
	}
	_, p := x.Dims()
	out := mat.NewDense(n, k+p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out.Set(i, j, scores.At(i, j))
		}
		for j := 0; j < p; j++ {
			out.Set(i, k+j, x.At(i, j))
		}
	}
	return out
}
