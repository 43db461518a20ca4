package metrics

import (
	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// CIndex is Harrell's concordance index for right-censored survival
// responses. A pair of cases is comparable when the shorter observed
// time belongs to a case with an event; the pair is concordant when the
// model predicts longer survival for the case that survived longer.
// Tied predictions count half.
func CIndex() Metric {
	return Metric{
		Name:      "cindex",
		Maximize:  true,
		Responses: []model.ResponseKind{model.Survival},
		Score: func(obs model.Response, pred model.Prediction) (float64, error) {
			if err := checkLengths("CIndex", obs, pred); err != nil {
				return 0, err
			}
			risk, err := SurvivalScores(pred)
			if err != nil {
				return 0, err
			}
			return Concordance(obs.Values, obs.Events, risk)
		},
	}
}

// SurvivalScores extracts one ranking score per case from a survival
// prediction: predicted survival means when present, otherwise survival
// probabilities at the first requested time. Higher score means longer
// predicted survival. Exactly one representation is used; mixing means
// and probabilities across fits is rejected elsewhere.
func SurvivalScores(pred model.Prediction) ([]float64, error) {
	if pred.Values != nil {
		return pred.Values, nil
	}
	if pred.Probs != nil {
		rows, cols := pred.Probs.Dims()
		if cols == 0 {
			return nil, errors.NewValueError("SurvivalScores", "empty survival probability matrix")
		}
		scores := make([]float64, rows)
		for i := 0; i < rows; i++ {
			scores[i] = pred.Probs.At(i, 0)
		}
		return scores, nil
	}
	return nil, errors.NewValueError("SurvivalScores", "prediction carries no survival representation")
}

// Concordance computes the censoring-aware concordance of scores with
// observed times: the fraction of comparable pairs ordered correctly.
func Concordance(times []float64, events []bool, scores []float64) (float64, error) {
	if len(times) != len(scores) || len(times) != len(events) {
		return 0, errors.NewDimensionError("Concordance", len(times), len(scores), 0)
	}
	var concordant, comparable float64
	for i := range times {
		for j := range times {
			if i == j {
				continue
			}
			// i must have the shorter time and an observed event
			if times[i] >= times[j] || !events[i] {
				continue
			}
			comparable++
			switch {
			case scores[i] < scores[j]:
				concordant++
			case scores[i] == scores[j]:
				concordant += 0.5
			}
		}
	}
	if comparable == 0 {
		return 0, errors.NewValueError("Concordance", "no comparable pairs")
	}
	return concordant / comparable, nil
}
