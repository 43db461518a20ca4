// Package metrics defines the performance metric contract used to score
// resampled predictions, concrete metric bodies for the built-in
// response kinds, and the summary statistics that collapse
// per-iteration values into a single scalar for candidate ranking.
package metrics

import (
	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// Metric scores predictions against observed responses. Maximize
// declares the optimization direction consumed by selection; Responses
// declares the observed response kinds the metric supports.
type Metric struct {
	Name      string
	Maximize  bool
	Responses []model.ResponseKind
	Score     func(obs model.Response, pred model.Prediction) (float64, error)
}

// SupportsResponse reports whether the metric can score kind.
func (m Metric) SupportsResponse(kind model.ResponseKind) bool {
	for _, k := range m.Responses {
		if k == kind {
			return true
		}
	}
	return false
}

// Defaults returns the default metric set for a response kind. This is
// the only place the engine consults the response kind to pick metrics;
// callers override by supplying explicit metric sets.
func Defaults(kind model.ResponseKind) []Metric {
	switch kind {
	case model.Class:
		return []Metric{Accuracy(), Brier()}
	case model.Survival:
		return []Metric{CIndex()}
	default:
		return []Metric{RMSE(), R2()}
	}
}

// ByName returns the metric with the given name from a set.
func ByName(ms []Metric, name string) (Metric, error) {
	for _, m := range ms {
		if m.Name == name {
			return m, nil
		}
	}
	return Metric{}, errors.NewValueError("metrics.ByName", "unknown metric: "+name)
}

// checkLengths validates that a prediction covers the observed cases.
func checkLengths(op string, obs model.Response, pred model.Prediction) error {
	if pred.Len() != obs.Len() {
		return errors.NewDimensionError(op, obs.Len(), pred.Len(), 0)
	}
	if obs.Len() == 0 {
		return errors.NewValueError(op, "empty response")
	}
	return nil
}
