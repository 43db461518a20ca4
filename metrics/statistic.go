package metrics

import (
	"github.com/montanaflynn/stats"

	"github.com/chen061218/MachineShop/pkg/errors"
)

// Statistic collapses the per-iteration metric values of one candidate
// into a single scalar for ranking. Apply receives only the values of
// iterations that did not fail.
type Statistic struct {
	Name  string
	Apply func(values []float64) (float64, error)
}

// Mean is the arithmetic mean statistic, the default for selection.
func Mean() Statistic {
	return Statistic{Name: "mean", Apply: func(values []float64) (float64, error) {
		return applyStat("mean", stats.Mean, values)
	}}
}

// Median is the median statistic, robust to outlying iterations.
func Median() Statistic {
	return Statistic{Name: "median", Apply: func(values []float64) (float64, error) {
		return applyStat("median", stats.Median, values)
	}}
}

// TrimmedMean is the 10% trimmed mean statistic.
func TrimmedMean() Statistic {
	return Statistic{Name: "trimmed_mean", Apply: func(values []float64) (float64, error) {
		if len(values) == 0 {
			return 0, errors.NewValueError("trimmed_mean", "no values")
		}
		trimmed, err := stats.Trimean(stats.Float64Data(values))
		if err != nil {
			return 0, errors.Wrap(err, "trimmed_mean")
		}
		return trimmed, nil
	}}
}

// Stddev is the sample standard deviation statistic, for spread-aware
// inspection of performance tables rather than selection.
func Stddev() Statistic {
	return Statistic{Name: "stddev", Apply: func(values []float64) (float64, error) {
		return applyStat("stddev", stats.StandardDeviationSample, values)
	}}
}

func applyStat(name string, fn func(stats.Float64Data) (float64, error), values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewValueError(name, "no values")
	}
	v, err := fn(stats.Float64Data(values))
	if err != nil {
		return 0, errors.Wrap(err, name)
	}
	return v, nil
}
