package train

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/ensemble"
	"github.com/chen061218/MachineShop/pkg/errors"
	"github.com/chen061218/MachineShop/pkg/log"
	"github.com/chen061218/MachineShop/resample"
)

// TrainedModel is the outcome of resolving a specification tree: the
// terminal fitted object produced by the chosen path, refit on the full
// dataset at every level.
type TrainedModel struct {
	spec   Spec
	fitted model.Fitted
	kind   model.ResponseKind
}

// Spec returns the specification the model was trained from.
func (m *TrainedModel) Spec() Spec { return m.spec }

// Fitted returns the underlying fitted object.
func (m *TrainedModel) Fitted() model.Fitted { return m.fitted }

// Predict predicts responses for new data.
func (m *TrainedModel) Predict(ds model.Dataset) (model.Prediction, error) {
	return m.fitted.Predict(ds)
}

// VarImp returns per-predictor importances when the underlying fitted
// object defines them.
func (m *TrainedModel) VarImp() (map[string]float64, error) {
	if vi, ok := m.fitted.(model.VariableImporter); ok {
		return vi.VarImp()
	}
	return nil, errors.NewValueError("TrainedModel.VarImp", "model does not define variable importance")
}

// Train resolves a specification tree against a dataset and returns the
// trained model together with the audit trail of every meta-node
// resolved along the chosen path.
//
// Validation that needs no fitting runs first: response kind support of
// every reachable learner and base learner arity of stacked and super
// nodes. A NoViableCandidateError at any node fails the whole call; no
// partially trained model is ever returned.
func Train(ctx context.Context, spec Spec, ds model.Dataset, cfg Config) (*TrainedModel, []TrainStep, error) {
	cfg = cfg.withDefaults(ds.Y.Kind)
	if err := validate(spec, ds.Y.Kind); err != nil {
		return nil, nil, err
	}

	cfg.Logger.Info("training started",
		log.NodeKindKey, spec.Kind(),
		log.SamplesKey, ds.N(),
		log.FeaturesKey, ds.Features(),
		log.ResponseKey, ds.Y.Kind.String(),
	)

	steps := make([]TrainStep, 0, 4)
	fitted, err := resolve(ctx, spec, ds, cfg, &steps)
	if err != nil {
		return nil, nil, err
	}
	return &TrainedModel{spec: spec, fitted: fitted, kind: ds.Y.Kind}, steps, nil
}

// validate walks the tree checking everything detectable before any
// fitting begins.
func validate(spec Spec, kind model.ResponseKind) error {
	switch node := spec.(type) {
	case ModelSpec:
		return checkLearner(node.Learner, node.Params, kind)
	case TunedSpec:
		return checkLearner(node.Learner, nil, kind)
	case SelectedSpec:
		if len(node.Specs) == 0 {
			return errors.NewValueError("train.validate", "selected node has no candidate specifications")
		}
		for _, child := range node.Specs {
			if err := validate(child, kind); err != nil {
				return err
			}
		}
		return nil
	case StackedSpec:
		return validateEnsemble("stacked model", node.Specs, nil, kind)
	case SuperSpec:
		return validateEnsemble("super learner", node.Specs, node.Meta, kind)
	default:
		return errors.NewValueError("train.validate", "unknown specification node")
	}
}

func validateEnsemble(name string, bases []Spec, meta Spec, kind model.ResponseKind) error {
	if len(bases) < 2 {
		return errors.NewInsufficientBaseLearnersError(name, len(bases))
	}
	if kind == model.Class {
		return errors.NewResponseTypeMismatchError(name, kind.String(),
			model.KindNames([]model.ResponseKind{model.Numeric, model.Survival}))
	}
	for _, child := range bases {
		if err := validate(child, kind); err != nil {
			return err
		}
	}
	if meta != nil {
		return validate(meta, kind)
	}
	return nil
}

func checkLearner(l model.Learner, p model.Params, kind model.ResponseKind) error {
	info := l.Info()
	if !info.Supports(kind) {
		id := model.NewCandidate(l, p).ID()
		return errors.NewResponseTypeMismatchError(id, kind.String(), model.KindNames(info.Responses))
	}
	return nil
}

// resolve is the single recursive resolution function. It fits the
// node on the dataset handed to it, running any selection resampling
// strictly over that dataset, and refits the chosen structure on the
// same dataset before returning.
func resolve(ctx context.Context, spec Spec, ds model.Dataset, cfg Config, steps *[]TrainStep) (model.Fitted, error) {
	switch node := spec.(type) {
	case ModelSpec:
		return model.NewCandidate(node.Learner, node.Params).Fit(ds)
	case TunedSpec:
		return resolveTuned(ctx, node, ds, cfg, steps)
	case SelectedSpec:
		return resolveSelected(ctx, node, ds, cfg, steps)
	case StackedSpec:
		return resolveStacked(ctx, node, ds, cfg, steps)
	case SuperSpec:
		return resolveSuper(ctx, node, ds, cfg, steps)
	default:
		return nil, errors.NewValueError("train.resolve", "unknown specification node")
	}
}

// resolveTuned realizes the node's grid, evaluates every parameter row
// under the node's control, and refits the winner on the full dataset
// passed into this node.
func resolveTuned(ctx context.Context, node TunedSpec, ds model.Dataset, cfg Config, steps *[]TrainStep) (model.Fitted, error) {
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), 1))
	assignments, err := node.Grid.Realize(node.Learner.Info(), rng)
	if err != nil {
		return nil, err
	}

	cands := make([]model.Candidate, len(assignments))
	for i, p := range assignments {
		cands[i] = model.NewCandidate(node.Learner, p)
	}

	table, err := resample.Evaluate(ctx, ds, cfg.controlOr(node.Control),
		resample.WrapAll(cands), cfg.metricsOr(node.Metrics), cfg.resampleOptions())
	if err != nil {
		return nil, err
	}

	sel := resample.Selector{Metric: node.Metric, Stat: cfg.statOr(node.Stat)}
	selection, err := sel.Select(table)
	if err != nil {
		return nil, err
	}

	step := newStep("tuned", table.Candidates)
	step.Table = table
	step.Winner = selection.CandidateID
	step.Metric = selection.Metric
	step.Value = selection.Value
	*steps = append(*steps, step)

	cfg.Logger.Info("tuning resolved",
		log.StepIDKey, step.ID,
		log.LearnerKey, node.Learner.Info().Name,
		log.WinnerKey, selection.CandidateID,
		log.MetricKey, selection.Metric,
		log.ValueKey, selection.Value,
	)

	// refit the winning parameters on the entire dataset at this level
	return cands[selection.Index].Fit(ds)
}

// resolveSelected evaluates each child specification as one opaque
// candidate whose fit recursively resolves the child within the
// training subset of the current iteration, then refits only the
// winning child on the entire dataset.
func resolveSelected(ctx context.Context, node SelectedSpec, ds model.Dataset, cfg Config, steps *[]TrainStep) (model.Fitted, error) {
	cands := specCandidates(node.Specs, cfg)

	table, err := resample.Evaluate(ctx, ds, cfg.controlOr(node.Control),
		cands, cfg.metricsOr(node.Metrics), cfg.resampleOptions())
	if err != nil {
		return nil, err
	}

	sel := resample.Selector{Metric: node.Metric, Stat: cfg.statOr(node.Stat)}
	selection, err := sel.Select(table)
	if err != nil {
		return nil, err
	}

	step := newStep("selected", table.Candidates)
	step.Table = table
	step.Winner = selection.CandidateID
	step.Metric = selection.Metric
	step.Value = selection.Value
	*steps = append(*steps, step)

	cfg.Logger.Info("selection resolved",
		log.StepIDKey, step.ID,
		log.WinnerKey, selection.CandidateID,
		log.MetricKey, selection.Metric,
		log.ValueKey, selection.Value,
	)

	return resolve(ctx, node.Specs[selection.Index], ds, cfg, steps)
}

// resolveStacked gathers out-of-fold base predictions, estimates the
// combination weights, and refits every base on the entire dataset.
func resolveStacked(ctx context.Context, node StackedSpec, ds model.Dataset, cfg Config, steps *[]TrainStep) (model.Fitted, error) {
	cands := specCandidates(node.Specs, cfg)

	oof, err := ensemble.OutOfFold(ctx, ds, cfg.controlOr(node.Control), cands, cfg.Workers)
	if err != nil {
		return nil, err
	}

	var weights []float64
	switch ds.Y.Kind {
	case model.Survival:
		weights, err = ensemble.SolveWeightsConcordance(oof, ds.Y.Values, ds.Y.Events)
	default:
		weights, err = ensemble.SolveWeights(oof, ds.Y.Values)
	}
	if err != nil {
		return nil, err
	}

	step := newStep("stacked", candidateIDs(cands))
	step.Weights = weights
	*steps = append(*steps, step)

	cfg.Logger.Info("stacking resolved",
		log.StepIDKey, step.ID,
		log.CandidatesKey, len(cands),
		"weights", weights,
	)

	bases, err := refitBases(ctx, node.Specs, ds, cfg, steps)
	if err != nil {
		return nil, err
	}
	return &ensemble.StackedFit{Bases: bases, Weights: weights, Kind: ds.Y.Kind}, nil
}

// resolveSuper gathers out-of-fold base predictions, fits the
// meta-learner specification to them to resolve its structure, refits
// the bases on the entire dataset, and refits the meta-learner on the
// refit bases' real predictions.
func resolveSuper(ctx context.Context, node SuperSpec, ds model.Dataset, cfg Config, steps *[]TrainStep) (model.Fitted, error) {
	cands := specCandidates(node.Specs, cfg)

	oof, err := ensemble.OutOfFold(ctx, ds, cfg.controlOr(node.Control), cands, cfg.Workers)
	if err != nil {
		return nil, err
	}

	// primary meta fit on the stitched out-of-fold predictions; its
	// decisions are recorded
	oofDS := model.Dataset{X: ensemble.MetaFeatures(oof, ds.X, node.AllVars), Y: ds.Y, Weights: ds.Weights}
	if _, err := resolve(ctx, node.Meta, oofDS, cfg, steps); err != nil {
		return nil, errors.Wrap(err, "super learner meta fit")
	}

	step := newStep("super", candidateIDs(cands))
	*steps = append(*steps, step)

	cfg.Logger.Info("super learner resolved",
		log.StepIDKey, step.ID,
		log.CandidatesKey, len(cands),
		"meta", Label(node.Meta),
	)

	bases, err := refitBases(ctx, node.Specs, ds, cfg, steps)
	if err != nil {
		return nil, err
	}

	// final meta refit on the full-data base predictions; the refit
	// repeats decisions already recorded, so its steps are discarded
	realScores, err := ensemble.BaseScores(ds.Y.Kind, bases, ds)
	if err != nil {
		return nil, err
	}
	realDS := model.Dataset{X: ensemble.MetaFeatures(realScores, ds.X, node.AllVars), Y: ds.Y, Weights: ds.Weights}
	var discard []TrainStep
	meta, err := resolve(ctx, node.Meta, realDS, cfg, &discard)
	if err != nil {
		return nil, errors.Wrap(err, "super learner meta refit")
	}

	return &ensemble.SuperFit{Bases: bases, Meta: meta, AllVars: node.AllVars, Kind: ds.Y.Kind}, nil
}

// refitBases resolves every base specification on the entire dataset.
func refitBases(ctx context.Context, specs []Spec, ds model.Dataset, cfg Config, steps *[]TrainStep) ([]model.Fitted, error) {
	bases := make([]model.Fitted, len(specs))
	for i, child := range specs {
		fitted, err := resolve(ctx, child, ds, cfg, steps)
		if err != nil {
			return nil, errors.Wrapf(err, "base learner %d refit failed", i)
		}
		bases[i] = fitted
	}
	return bases, nil
}

// specCandidate adapts a child specification to the resampler's
// candidate interface. Fitting resolves the child's whole subtree on
// the training subset it receives, which is how nested resampling
// keeps a parent iteration's evaluation cases out of the child's
// internal selection; the steps of these throwaway resolutions are
// discarded.
type specCandidate struct {
	id   string
	spec Spec
	cfg  Config
}

func (sc specCandidate) ID() string                         { return sc.id }
func (sc specCandidate) Supports(k model.ResponseKind) bool { return supportsKind(sc.spec, k) }

func (sc specCandidate) Fit(ctx context.Context, train model.Dataset) (model.Fitted, error) {
	var discard []TrainStep
	return resolve(ctx, sc.spec, train, sc.cfg, &discard)
}

func specCandidates(specs []Spec, cfg Config) []resample.Candidate {
	cands := make([]resample.Candidate, len(specs))
	for i, child := range specs {
		cands[i] = specCandidate{id: fmt.Sprintf("%d:%s", i, Label(child)), spec: child, cfg: cfg}
	}
	return cands
}

func candidateIDs(cands []resample.Candidate) []string {
	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.ID()
	}
	return ids
}
