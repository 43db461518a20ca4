// Package testkit provides instrumented fakes for engine tests: a
// control with explicit folds, datasets whose first predictor column
// carries the original case index, and a scripted learner that records
// which cases every fit saw and predicts preassigned per-case values.
package testkit

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/pkg/errors"
	"github.com/chen061218/MachineShop/resample"
)

// FixedControl replays an explicit fold sequence, giving tests exact
// knowledge of every training and evaluation subset.
type FixedControl struct {
	Folds []resample.Fold
}

// Name implements resample.Control.
func (c FixedControl) Name() string { return "Fixed" }

// Splits implements resample.Control.
func (c FixedControl) Splits(_ int) ([]resample.Fold, error) {
	return c.Folds, nil
}

// ThirdsControl builds a FixedControl partitioning n cases into three
// contiguous evaluation blocks, each trained on the remaining cases.
func ThirdsControl(n int) FixedControl {
	bounds := []int{0, n / 3, 2 * n / 3, n}
	folds := make([]resample.Fold, 3)
	for f := 0; f < 3; f++ {
		var eval, train []int
		for i := 0; i < n; i++ {
			if i >= bounds[f] && i < bounds[f+1] {
				eval = append(eval, i)
			} else {
				train = append(train, i)
			}
		}
		folds[f] = resample.Fold{Train: train, Eval: eval}
	}
	return FixedControl{Folds: folds}
}

// IndexDataset builds a numeric-response dataset of n cases whose
// single predictor column is the case index, so scripted models can
// recover original case identities after subsetting.
func IndexDataset(n int, y []float64) model.Dataset {
	x := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, float64(i))
	}
	if y == nil {
		y = make([]float64, n)
	}
	return model.Dataset{X: x, Y: model.NumericResponse(y)}
}

// CaseIDs extracts the original case indices from an IndexDataset
// subset.
func CaseIDs(ds model.Dataset) []int {
	ids := make([]int, ds.N())
	for i := range ids {
		ids[i] = int(math.Round(ds.X.At(i, 0)))
	}
	return ids
}

// FitCall records one Fit invocation of a Scripted learner.
type FitCall struct {
	Params  model.Params
	CaseIDs []int
}

// Scripted is an instrumented learner for engine tests. Its fitted
// object predicts preassigned per-case values: PerParam keyed by the
// canonical parameter key when tuning is under test, else PerCase.
// Every Fit records the parameters and original case indices it saw.
type Scripted struct {
	LearnerName string
	Kinds       []model.ResponseKind
	Ranges      []model.ParamRange
	PerCase     []float64
	PerParam    map[string][]float64
	FailFit     bool

	mu    sync.Mutex
	calls []FitCall
}

// Info implements model.Learner.
func (s *Scripted) Info() model.LearnerInfo {
	name := s.LearnerName
	if name == "" {
		name = "Scripted"
	}
	kinds := s.Kinds
	if kinds == nil {
		kinds = []model.ResponseKind{model.Numeric}
	}
	return model.LearnerInfo{Name: name, Responses: kinds, Ranges: s.Ranges}
}

// Fit implements model.Learner.
func (s *Scripted) Fit(ds model.Dataset, p model.Params) (model.Fitted, error) {
	s.mu.Lock()
	s.calls = append(s.calls, FitCall{Params: p.Clone(), CaseIDs: CaseIDs(ds)})
	s.mu.Unlock()

	if s.FailFit {
		return nil, errors.New("scripted fit failure")
	}
	perCase := s.PerCase
	if s.PerParam != nil {
		perCase = s.PerParam[p.Key()]
	}
	if perCase == nil {
		return nil, errors.New("scripted learner has no values for this assignment")
	}
	return &scriptedFit{perCase: perCase, kind: ds.Y.Kind}, nil
}

// Calls returns a copy of the recorded fit calls.
func (s *Scripted) Calls() []FitCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FitCall, len(s.calls))
	copy(out, s.calls)
	return out
}

type scriptedFit struct {
	perCase []float64
	kind    model.ResponseKind
}

// Predict implements model.Fitted.
func (f *scriptedFit) Predict(ds model.Dataset) (model.Prediction, error) {
	ids := CaseIDs(ds)
	values := make([]float64, len(ids))
	for i, id := range ids {
		values[i] = f.perCase[id]
	}
	return model.Prediction{Kind: f.kind, Values: values}, nil
}

// MeanScore is a metric whose value is the mean of the predicted
// values on the evaluation subset, letting scripted learners dictate
// exact per-fold metric values.
func MeanScore(name string, maximize bool) metrics.Metric {
	return metrics.Metric{
		Name:      name,
		Maximize:  maximize,
		Responses: []model.ResponseKind{model.Numeric},
		Score: func(_ model.Response, pred model.Prediction) (float64, error) {
			if len(pred.Values) == 0 {
				return 0, errors.NewValueError(name, "no predictions")
			}
			var sum float64
			for _, v := range pred.Values {
				sum += v
			}
			return sum / float64(len(pred.Values)), nil
		},
	}
}

// ConstVector returns a length-n vector filled with v.
func ConstVector(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// BlockVector assigns blockValues[f] to the cases of each fold's
// evaluation set, so a fold's mean prediction equals blockValues[f].
func BlockVector(n int, folds []resample.Fold, blockValues []float64) []float64 {
	out := make([]float64, n)
	for f, fold := range folds {
		for _, i := range fold.Eval {
			out[i] = blockValues[f]
		}
	}
	return out
}
