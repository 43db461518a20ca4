// Package machineshop provides a unified modeling interface for Go:
// many model families fit, tuned, resampled, and evaluated through one
// consistent contract.
//
// The core of the library is its resampling-based model selection and
// ensembling engine. Specification trees compose tuned models (grid
// search), selected models (candidate-set selection), stacked
// regression, and super learners to arbitrary nesting depth, all
// driven by one resampling abstraction and one performance metric
// abstraction.
//
// # Packages
//
//   - core/model: datasets, response kinds, and the Learner contract
//     model back ends implement
//   - tune: candidate parameter grid construction
//   - resample: resampling controls, the candidate evaluation loop,
//     performance tables, and selection
//   - train: the recursive meta-training engine and its entry points
//   - ensemble: stacked regression and super learner machinery
//   - metrics: metric descriptors, bodies, and summary statistics
//   - models: simple built-in back ends (baseline, OLS, ridge, kNN)
//
// # Quick Start
//
// Tune a ridge penalty by 5-fold cross-validation and train the winner
// on the full dataset:
//
//	spec := train.TunedSpec{
//	    Learner: models.Ridge{},
//	    Grid:    tune.Grid{Length: 10},
//	    Control: resample.CVControl{Folds: 5, Seed: 1},
//	}
//	trained, steps, err := train.Train(ctx, spec, dataset, train.DefaultConfig())
//
// Nesting is uniform: replace the TunedSpec with a SelectedSpec over
// several tuned competitors, or a StackedSpec over base learners, and
// the same Train call resolves the whole tree with nested resampling.
// Performance estimation at every level is honest by construction: a
// child's internal tuning only ever sees the training subset of its
// parent's current iteration, and the cost grows accordingly with
// nesting depth.
package machineshop
