package metrics

import (
	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// Accuracy is the classification accuracy metric.
func Accuracy() Metric {
	return Metric{
		Name:      "accuracy",
		Maximize:  true,
		Responses: []model.ResponseKind{model.Class},
		Score: func(obs model.Response, pred model.Prediction) (float64, error) {
			if err := checkLengths("Accuracy", obs, pred); err != nil {
				return 0, err
			}
			if pred.Labels == nil {
				return 0, errors.NewValueError("Accuracy", "prediction carries no class labels")
			}
			correct := 0
			for i, label := range obs.Labels {
				if pred.Labels[i] == label {
					correct++
				}
			}
			return float64(correct) / float64(len(obs.Labels)), nil
		},
	}
}

// Brier is the multiclass Brier score: the mean squared difference
// between predicted class probabilities and the one-hot observed class.
// Requires a prediction with membership probabilities.
func Brier() Metric {
	return Metric{
		Name:      "brier",
		Maximize:  false,
		Responses: []model.ResponseKind{model.Class},
		Score: func(obs model.Response, pred model.Prediction) (float64, error) {
			if err := checkLengths("Brier", obs, pred); err != nil {
				return 0, err
			}
			if pred.Probs == nil {
				return 0, errors.NewValueError("Brier", "prediction carries no class probabilities")
			}
			n, classes := pred.Probs.Dims()
			var sum float64
			for i := 0; i < n; i++ {
				for c := 0; c < classes; c++ {
					target := 0.0
					if obs.Labels[i] == c {
						target = 1.0
					}
					d := pred.Probs.At(i, c) - target
					sum += d * d
				}
			}
			return sum / float64(n), nil
		},
	}
}
