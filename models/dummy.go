// Package models provides simple model back ends implementing the
// engine's Learner contract: a mean/majority baseline, ordinary and
// ridge-penalized least squares, and k-nearest-neighbor regression.
// They serve as competitors and meta-learners in specification trees
// and keep the orchestration layer testable without external fitting
// libraries.
package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// Dummy predicts the weighted response mean for numeric and survival
// responses and the majority class with observed class frequencies for
// class responses. It has no tunable parameters, so its grid realizes
// to the single untuned row.
type Dummy struct{}

// Info implements model.Learner.
func (Dummy) Info() model.LearnerInfo {
	return model.LearnerInfo{
		Name:      "Dummy",
		Responses: []model.ResponseKind{model.Numeric, model.Class, model.Survival},
	}
}

// Fit implements model.Learner.
func (d Dummy) Fit(ds model.Dataset, _ model.Params) (model.Fitted, error) {
	if ds.N() == 0 {
		return nil, errors.NewValueError("Dummy.Fit", "empty dataset")
	}
	fit := &dummyFit{kind: ds.Y.Kind}
	switch ds.Y.Kind {
	case model.Class:
		counts := make([]float64, ds.Y.NumClasses)
		var total float64
		for i, label := range ds.Y.Labels {
			w := 1.0
			if ds.Weights != nil {
				w = ds.Weights[i]
			}
			counts[label] += w
			total += w
		}
		fit.probs = make([]float64, len(counts))
		for c, count := range counts {
			fit.probs[c] = count / total
			if count > counts[fit.label] {
				fit.label = c
			}
		}
	default:
		var sum, total float64
		for i, y := range ds.Y.Values {
			w := 1.0
			if ds.Weights != nil {
				w = ds.Weights[i]
			}
			sum += w * y
			total += w
		}
		fit.mean = sum / total
	}
	return fit, nil
}

type dummyFit struct {
	kind  model.ResponseKind
	mean  float64
	label int
	probs []float64
}

// Predict implements model.Fitted.
func (f *dummyFit) Predict(ds model.Dataset) (model.Prediction, error) {
	n := ds.N()
	switch f.kind {
	case model.Class:
		labels := make([]int, n)
		probs := mat.NewDense(n, len(f.probs), nil)
		for i := 0; i < n; i++ {
			labels[i] = f.label
			for c, p := range f.probs {
				probs.Set(i, c, p)
			}
		}
		return model.Prediction{Kind: model.Class, Labels: labels, Probs: probs}, nil
	default:
		values := make([]float64, n)
		for i := range values {
			values[i] = f.mean
		}
		return model.Prediction{Kind: f.kind, Values: values}, nil
	}
}
