package resample

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/pkg/errors"
	"github.com/chen061218/MachineShop/pkg/log"
)

// Candidate is a fittable unit under evaluation. A candidate may be a
// plain parameterized model or an opaque recursive specification whose
// Fit performs its own internal tuning strictly within the training
// subset it receives.
type Candidate interface {
	ID() string
	Supports(kind model.ResponseKind) bool
	Fit(ctx context.Context, train model.Dataset) (model.Fitted, error)
}

// modelCandidate adapts a plain model.Candidate to the Candidate
// interface; plain learners do not consume the context.
type modelCandidate struct {
	c model.Candidate
}

func (mc modelCandidate) ID() string                         { return mc.c.ID() }
func (mc modelCandidate) Supports(k model.ResponseKind) bool { return mc.c.Supports(k) }
func (mc modelCandidate) Fit(_ context.Context, ds model.Dataset) (model.Fitted, error) {
	return mc.c.Fit(ds)
}

// Wrap adapts a plain candidate for evaluation.
func Wrap(c model.Candidate) Candidate { return modelCandidate{c: c} }

// WrapAll adapts a slice of plain candidates for evaluation.
func WrapAll(cs []model.Candidate) []Candidate {
	out := make([]Candidate, len(cs))
	for i, c := range cs {
		out[i] = Wrap(c)
	}
	return out
}

// Options configures an evaluation run. The zero value uses one worker
// per CPU, keeps no predictions, imposes no per-cell budget, and logs
// through the default logger.
type Options struct {
	// Workers bounds the number of concurrently evaluated cells.
	Workers int
	// KeepPredictions retains per-case predictions in the table's
	// cells for inspection after the run.
	KeepPredictions bool
	// CellBudget, when positive, is the computation budget for one
	// (candidate, iteration) cell. A cell exceeding it is recorded as
	// failed; the run continues.
	CellBudget time.Duration
	// Logger receives structured progress and warning records.
	Logger log.Logger
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func (o Options) logger() log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// cellResult is the output of one (candidate, iteration) unit. The
// composite key (candidate index, fold index) is assigned before
// dispatch, so merge order does not matter.
type cellResult struct {
	rows []Row
	cell Cell
}

// Evaluate fits every candidate on every training subset produced by
// the control and scores its predictions on the matching evaluation
// subset with every metric. One failing cell is recorded as failed and
// never aborts the table. Cells are independent and evaluated on a
// bounded worker pool; the function returns only after every cell has
// completed or been marked failed.
func Evaluate(ctx context.Context, ds model.Dataset, ctrl Control, cands []Candidate, ms []metrics.Metric, opt Options) (*PerformanceTable, error) {
	if len(cands) == 0 {
		return nil, errors.NewValueError("resample.Evaluate", "no candidates")
	}
	if len(ms) == 0 {
		return nil, errors.NewValueError("resample.Evaluate", "no metrics")
	}
	kind := ds.Y.Kind
	for _, m := range ms {
		if !m.SupportsResponse(kind) {
			return nil, errors.NewValueError("resample.Evaluate",
				"metric "+m.Name+" does not support "+kind.String()+" responses")
		}
	}
	for _, c := range cands {
		if !c.Supports(kind) {
			return nil, errors.NewResponseTypeMismatchError(c.ID(), kind.String(), nil)
		}
	}

	folds, err := ctrl.Splits(ds.N())
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.ID()
	}
	table := NewPerformanceTable(ctrl.Name(), ids, ms, len(folds))

	logger := opt.logger().With(
		log.ControlKey, ctrl.Name(),
		log.SamplesKey, ds.N(),
		log.CandidatesKey, len(cands),
		log.IterationsKey, len(folds),
	)
	logger.Debug("resampling started")
	start := time.Now()

	results := make([]cellResult, len(cands)*len(folds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.workers())
	for ci := range cands {
		for fi := range folds {
			ci, fi := ci, fi
			g.Go(func() error {
				results[ci*len(folds)+fi] = evaluateCell(gctx, ds, cands[ci], folds[fi], fi, ms, opt)
				return nil
			})
		}
	}
	// merge barrier: every cell completes or is marked failed
	_ = g.Wait()

	for _, res := range results {
		table.Append(res.rows...)
		if opt.KeepPredictions {
			table.cells = append(table.cells, res.cell)
		}
	}

	if failed := table.FailedCells(); failed > 0 {
		logger.Warn("resampling finished with failed cells",
			log.FailedCellsKey, failed,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	} else {
		logger.Debug("resampling finished",
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return table, nil
}

// evaluateCell runs fit + predict + score for one cell. All failure
// modes, including panics in a model back end and an exceeded cell
// budget, collapse into failed rows.
func evaluateCell(ctx context.Context, ds model.Dataset, cand Candidate, fold Fold, iteration int, ms []metrics.Metric, opt Options) cellResult {
	cell := Cell{
		CandidateID: cand.ID(),
		Iteration:   iteration,
		Resub:       fold.Resub,
		CaseIndices: fold.Eval,
	}

	fail := func(err error) cellResult {
		cellErr := errors.NewFitFailureError(cand.ID(), iteration, err)
		opt.logger().Warn("resampling cell failed",
			log.CandidateKey, cand.ID(),
			log.IterationKey, iteration,
			log.ErrKey, cellErr,
		)
		cell.Failed = true
		cell.Err = cellErr
		rows := make([]Row, len(ms))
		for i, m := range ms {
			rows[i] = Row{CandidateID: cand.ID(), Iteration: iteration, Metric: m.Name, Failed: true, Resub: fold.Resub}
		}
		return cellResult{rows: rows, cell: cell}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if len(fold.Eval) == 0 {
		return fail(errors.New("empty evaluation set"))
	}

	cellCtx := ctx
	if opt.CellBudget > 0 {
		var cancel context.CancelFunc
		cellCtx, cancel = context.WithTimeout(ctx, opt.CellBudget)
		defer cancel()
	}

	train := ds.Subset(fold.Train)
	eval := ds.Subset(fold.Eval)

	var fitted model.Fitted
	err := errors.SafeExecute("resample.fit", func() error {
		var fitErr error
		fitted, fitErr = cand.Fit(cellCtx, train)
		return fitErr
	})
	if err != nil {
		return fail(err)
	}
	if err := cellCtx.Err(); err != nil {
		return fail(err)
	}

	var pred model.Prediction
	err = errors.SafeExecute("resample.predict", func() error {
		var predErr error
		pred, predErr = fitted.Predict(eval)
		return predErr
	})
	if err != nil {
		return fail(err)
	}
	cell.Pred = pred

	rows := make([]Row, 0, len(ms))
	for _, m := range ms {
		value, scoreErr := m.Score(eval.Y, pred)
		row := Row{CandidateID: cand.ID(), Iteration: iteration, Metric: m.Name, Resub: fold.Resub}
		if scoreErr != nil {
			row.Failed = true
			errors.Warn(errors.NewFitFailureError(cand.ID(), iteration, scoreErr))
		} else {
			row.Value = value
		}
		rows = append(rows, row)
	}
	return cellResult{rows: rows, cell: cell}
}
