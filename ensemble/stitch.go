// Package ensemble implements the two ensembling strategies driven by
// out-of-fold base learner predictions: stacked regression (constrained
// weight estimation) and super learning (an arbitrary meta-learner fit
// on stitched base predictions).
package ensemble

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/pkg/errors"
	"github.com/chen061218/MachineShop/resample"
)

// OutOfFold fits every base candidate on each training subset of the
// control and stitches the evaluation-subset predictions into one
// full-length column per candidate: each case's value comes from an
// iteration whose training set excluded it.
//
// The control must cover every case in exactly one evaluation subset
// across its non-resubstitution folds (k-fold cross-validation with one
// repeat is the canonical choice); controls without that guarantee,
// such as a single train/test split or bootstrap draws, are rejected.
// Unlike ordinary resampling, a fold failure here is fatal: a stitched
// matrix with holes cannot train the ensemble.
func OutOfFold(ctx context.Context, ds model.Dataset, ctrl resample.Control, cands []resample.Candidate, workers int) (*mat.Dense, error) {
	n := ds.N()
	folds, err := ctrl.Splits(n)
	if err != nil {
		return nil, err
	}
	folds = dropResub(folds)
	if err := checkCoverage(n, folds, ctrl.Name()); err != nil {
		return nil, err
	}

	out := mat.NewDense(n, len(cands), nil)
	kinds := make([]predKind, len(cands)*len(folds))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for ci, cand := range cands {
		for fi, fold := range folds {
			ci, fi, cand, fold := ci, fi, cand, fold
			g.Go(func() error {
				train := ds.Subset(fold.Train)
				eval := ds.Subset(fold.Eval)
				fitted, err := cand.Fit(gctx, train)
				if err != nil {
					return errors.NewFitFailureError(cand.ID(), fi, err)
				}
				pred, err := fitted.Predict(eval)
				if err != nil {
					return errors.NewFitFailureError(cand.ID(), fi, err)
				}
				scores, kind, err := predictionScores(ds.Y.Kind, pred)
				if err != nil {
					return errors.NewFitFailureError(cand.ID(), fi, err)
				}
				if len(scores) != len(fold.Eval) {
					return errors.NewDimensionError("ensemble.OutOfFold", len(fold.Eval), len(scores), 0)
				}
				kinds[ci*len(folds)+fi] = kind
				for i, caseIdx := range fold.Eval {
					out.Set(caseIdx, ci, scores[i])
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkConsistentKinds(kinds); err != nil {
		return nil, err
	}
	return out, nil
}

// predKind distinguishes the survival representations so mixed ones can
// be rejected; numeric predictions are always plain values.
type predKind int

const (
	kindValues predKind = iota
	kindProbs
)

// predictionScores extracts one scalar per case from a base learner
// prediction: numeric values, survival means, or survival probabilities
// at the first requested time.
func predictionScores(kind model.ResponseKind, pred model.Prediction) ([]float64, predKind, error) {
	switch kind {
	case model.Numeric:
		if pred.Values == nil {
			return nil, 0, errors.NewValueError("ensemble", "prediction carries no numeric values")
		}
		return pred.Values, kindValues, nil
	case model.Survival:
		scores, err := metrics.SurvivalScores(pred)
		if err != nil {
			return nil, 0, err
		}
		if pred.Values != nil {
			return scores, kindValues, nil
		}
		return scores, kindProbs, nil
	default:
		return nil, 0, errors.NewResponseTypeMismatchError("ensemble", kind.String(),
			model.KindNames([]model.ResponseKind{model.Numeric, model.Survival}))
	}
}

// checkConsistentKinds enforces a single survival representation across
// all base learners and folds: means or probabilities, never both.
func checkConsistentKinds(kinds []predKind) error {
	for _, k := range kinds[1:] {
		if k != kinds[0] {
			return errors.NewValueError("ensemble.OutOfFold",
				"base learners mix survival means and survival probabilities; use one representation")
		}
	}
	return nil
}

func dropResub(folds []resample.Fold) []resample.Fold {
	out := folds[:0:0]
	for _, f := range folds {
		if !f.Resub {
			out = append(out, f)
		}
	}
	return out
}

// checkCoverage verifies that every case appears in exactly one
// evaluation subset.
func checkCoverage(n int, folds []resample.Fold, control string) error {
	counts := make([]int, n)
	for _, f := range folds {
		for _, i := range f.Eval {
			counts[i]++
		}
	}
	for i, c := range counts {
		if c != 1 {
			return errors.NewValueError("ensemble.OutOfFold", fmt.Sprintf(
				"control %s does not cover case %d exactly once (covered %d times); use a partitioning control such as CV",
				control, i, c))
		}
	}
	return nil
}
