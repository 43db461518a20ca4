package model

import (
	"gonum.org/v1/gonum/mat"
)

// LearnerInfo describes a model family: its name, the response kinds it
// can fit, and its tunable parameter dimensions. A learner with no
// ranges is evaluated untuned through the same code path as a tuned one.
type LearnerInfo struct {
	Name      string
	Responses []ResponseKind
	Ranges    []ParamRange
}

// Supports reports whether the learner declares support for kind.
func (info LearnerInfo) Supports(kind ResponseKind) bool {
	for _, k := range info.Responses {
		if k == kind {
			return true
		}
	}
	return false
}

// Learner is the uniform fitting capability the engine consumes from
// model back ends. Fit must not retain ds and must be safe to call
// concurrently from separate resampling cells.
type Learner interface {
	Info() LearnerInfo
	Fit(ds Dataset, p Params) (Fitted, error)
}

// Fitted is a trained model object. It is exclusively owned by whoever
// produced it; inside the resampler it is discarded once scored.
type Fitted interface {
	Predict(ds Dataset) (Prediction, error)
}

// VariableImporter is implemented by fitted models that can report
// per-predictor importances. Optional: model families without a notion
// of importance simply do not implement it.
type VariableImporter interface {
	VarImp() (map[string]float64, error)
}

// Prediction is the typed output of Fitted.Predict. Exactly one
// representation is populated, chosen by Kind:
//
//   - Numeric: Values holds one prediction per case.
//   - Class: Labels holds predicted labels; Probs, when non-nil, holds
//     per-class membership probabilities (cases x classes).
//   - Survival: Values holds predicted survival means, or Probs holds
//     survival probabilities at the requested Times (cases x times).
//     A single representation is used consistently within one fit.
type Prediction struct {
	Kind   ResponseKind
	Values []float64
	Labels []int
	Probs  *mat.Dense
	Times  []float64
}

// Len returns the number of cases covered by the prediction.
func (p Prediction) Len() int {
	switch {
	case p.Values != nil:
		return len(p.Values)
	case p.Labels != nil:
		return len(p.Labels)
	case p.Probs != nil:
		rows, _ := p.Probs.Dims()
		return rows
	default:
		return 0
	}
}
