package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// MSE is the mean squared error metric for numeric responses.
func MSE() Metric {
	return Metric{
		Name:      "mse",
		Maximize:  false,
		Responses: []model.ResponseKind{model.Numeric},
		Score: func(obs model.Response, pred model.Prediction) (float64, error) {
			return meanSquaredError("MSE", obs, pred)
		},
	}
}

// RMSE is the root mean squared error metric for numeric responses.
func RMSE() Metric {
	return Metric{
		Name:      "rmse",
		Maximize:  false,
		Responses: []model.ResponseKind{model.Numeric},
		Score: func(obs model.Response, pred model.Prediction) (float64, error) {
			mse, err := meanSquaredError("RMSE", obs, pred)
			if err != nil {
				return 0, err
			}
			return math.Sqrt(mse), nil
		},
	}
}

// MAE is the mean absolute error metric for numeric responses.
func MAE() Metric {
	return Metric{
		Name:      "mae",
		Maximize:  false,
		Responses: []model.ResponseKind{model.Numeric},
		Score: func(obs model.Response, pred model.Prediction) (float64, error) {
			if err := checkLengths("MAE", obs, pred); err != nil {
				return 0, err
			}
			var sum float64
			for i, y := range obs.Values {
				sum += math.Abs(y - pred.Values[i])
			}
			return sum / float64(len(obs.Values)), nil
		},
	}
}

// R2 is the coefficient of determination metric for numeric responses.
func R2() Metric {
	return Metric{
		Name:      "r2",
		Maximize:  true,
		Responses: []model.ResponseKind{model.Numeric},
		Score: func(obs model.Response, pred model.Prediction) (float64, error) {
			if err := checkLengths("R2", obs, pred); err != nil {
				return 0, err
			}
			mean := stat.Mean(obs.Values, nil)
			var ssRes, ssTot float64
			for i, y := range obs.Values {
				d := y - pred.Values[i]
				ssRes += d * d
				t := y - mean
				ssTot += t * t
			}
			if ssTot == 0 {
				return 0, errors.NewValueError("R2", "constant response has no explainable variance")
			}
			return 1 - ssRes/ssTot, nil
		},
	}
}

func meanSquaredError(op string, obs model.Response, pred model.Prediction) (float64, error) {
	if err := checkLengths(op, obs, pred); err != nil {
		return 0, err
	}
	diff := make([]float64, len(obs.Values))
	floats.SubTo(diff, obs.Values, pred.Values)
	var sum float64
	for _, d := range diff {
		sum += d * d
	}
	return sum / float64(len(diff)), nil
}
