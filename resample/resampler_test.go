package resample_test

import (
	"context"
	"math"
	"testing"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/internal/testkit"
	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/pkg/errors"
	"github.com/chen061218/MachineShop/resample"
)

func TestEvaluateScoresEveryCell(t *testing.T) {
	const n = 99
	ctrl := testkit.ThirdsControl(n)
	ds := testkit.IndexDataset(n, nil)

	// per-fold means 0.9/0.8/0.7 for a, 0.5/0.6/0.4 for b
	a := &testkit.Scripted{LearnerName: "A",
		PerCase: testkit.BlockVector(n, ctrl.Folds, []float64{0.9, 0.8, 0.7})}
	b := &testkit.Scripted{LearnerName: "B",
		PerCase: testkit.BlockVector(n, ctrl.Folds, []float64{0.5, 0.6, 0.4})}
	cands := resample.WrapAll([]model.Candidate{
		model.NewCandidate(a, nil),
		model.NewCandidate(b, nil),
	})
	ms := []metrics.Metric{testkit.MeanScore("score", true)}

	table, err := resample.Evaluate(context.Background(), ds, ctrl, cands, ms, resample.Options{Workers: 4})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if got := len(table.Rows()); got != 6 {
		t.Fatalf("got %d rows, want 2 candidates x 3 iterations x 1 metric = 6", got)
	}
	if table.FailedCells() != 0 {
		t.Fatalf("FailedCells() = %d, want 0", table.FailedCells())
	}

	meanA, err := table.Summarize("A", "score", metrics.Mean())
	if err != nil {
		t.Fatalf("Summarize(A) error = %v", err)
	}
	if math.Abs(meanA-0.8) > 1e-12 {
		t.Errorf("mean score for A = %v, want 0.8", meanA)
	}
	meanB, err := table.Summarize("B", "score", metrics.Mean())
	if err != nil {
		t.Fatalf("Summarize(B) error = %v", err)
	}
	if math.Abs(meanB-0.5) > 1e-12 {
		t.Errorf("mean score for B = %v, want 0.5", meanB)
	}

	sel, err := resample.Selector{}.Select(table)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.CandidateID != "A" {
		t.Errorf("winner = %q, want %q", sel.CandidateID, "A")
	}
}

func TestEvaluateFitsOnTrainingSubsetsOnly(t *testing.T) {
	const n = 30
	ctrl := testkit.ThirdsControl(n)
	ds := testkit.IndexDataset(n, nil)
	learner := &testkit.Scripted{PerCase: testkit.ConstVector(n, 1)}
	cands := resample.WrapAll([]model.Candidate{model.NewCandidate(learner, nil)})
	ms := []metrics.Metric{testkit.MeanScore("score", true)}

	if _, err := resample.Evaluate(context.Background(), ds, ctrl, cands, ms, resample.Options{}); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	calls := learner.Calls()
	if len(calls) != 3 {
		t.Fatalf("got %d fits, want one per iteration", len(calls))
	}
	for _, call := range calls {
		seen := make(map[int]bool)
		for _, id := range call.CaseIDs {
			seen[id] = true
		}
		// each fit's training set is the complement of exactly one
		// fold's evaluation set
		matched := false
		for _, f := range ctrl.Folds {
			disjoint := true
			for _, e := range f.Eval {
				if seen[e] {
					disjoint = false
					break
				}
			}
			if disjoint && len(call.CaseIDs) == len(f.Train) {
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("fit on cases %v matches no fold's training subset", call.CaseIDs)
		}
	}
}

func TestEvaluateAbsorbsFailingCandidate(t *testing.T) {
	const n = 30
	ctrl := testkit.ThirdsControl(n)
	ds := testkit.IndexDataset(n, nil)
	good := &testkit.Scripted{LearnerName: "Good", PerCase: testkit.ConstVector(n, 0.5)}
	bad := &testkit.Scripted{LearnerName: "Bad", FailFit: true}
	cands := resample.WrapAll([]model.Candidate{
		model.NewCandidate(bad, nil),
		model.NewCandidate(good, nil),
	})
	ms := []metrics.Metric{testkit.MeanScore("score", true)}

	table, err := resample.Evaluate(context.Background(), ds, ctrl, cands, ms, resample.Options{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got := table.FailedCells(); got != 3 {
		t.Errorf("FailedCells() = %d, want 3", got)
	}
	if got := len(table.Rows()); got != 6 {
		t.Errorf("got %d rows, want 6: failed combinations still present", got)
	}
	sel, err := resample.Selector{}.Select(table)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.CandidateID != "Good" {
		t.Errorf("winner = %q, want %q", sel.CandidateID, "Good")
	}
}

func TestEvaluateKeepsPredictions(t *testing.T) {
	const n = 30
	ctrl := testkit.ThirdsControl(n)
	ds := testkit.IndexDataset(n, nil)
	learner := &testkit.Scripted{PerCase: testkit.ConstVector(n, 2)}
	cands := resample.WrapAll([]model.Candidate{model.NewCandidate(learner, nil)})
	ms := []metrics.Metric{testkit.MeanScore("score", true)}

	table, err := resample.Evaluate(context.Background(), ds, ctrl, cands, ms,
		resample.Options{KeepPredictions: true})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	cells := table.Cells()
	if len(cells) != 3 {
		t.Fatalf("got %d cells, want 3", len(cells))
	}
	for _, cell := range cells {
		if cell.Failed {
			t.Fatalf("cell %d failed: %v", cell.Iteration, cell.Err)
		}
		if len(cell.CaseIndices) != cell.Pred.Len() {
			t.Errorf("cell %d: %d case indices but %d predictions",
				cell.Iteration, len(cell.CaseIndices), cell.Pred.Len())
		}
		for i, v := range cell.Pred.Values {
			if v != 2 {
				t.Errorf("cell %d prediction %d = %v, want 2", cell.Iteration, i, v)
			}
		}
	}
}

func TestEvaluateRejectsUnsupportedResponse(t *testing.T) {
	const n = 20
	ds := testkit.IndexDataset(n, nil)
	ds.Y = model.ClassResponse(make([]int, n), 2)
	numericOnly := &testkit.Scripted{PerCase: testkit.ConstVector(n, 1)}
	cands := resample.WrapAll([]model.Candidate{model.NewCandidate(numericOnly, nil)})
	ms := []metrics.Metric{metrics.Accuracy()}

	_, err := resample.Evaluate(context.Background(), ds, testkit.ThirdsControl(n), cands, ms, resample.Options{})
	var mismatch *errors.ResponseTypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Evaluate() error = %v, want ResponseTypeMismatchError", err)
	}
}

func TestEvaluateValidatesInputs(t *testing.T) {
	const n = 20
	ds := testkit.IndexDataset(n, nil)
	learner := &testkit.Scripted{PerCase: testkit.ConstVector(n, 1)}
	cands := resample.WrapAll([]model.Candidate{model.NewCandidate(learner, nil)})

	if _, err := resample.Evaluate(context.Background(), ds, testkit.ThirdsControl(n),
		nil, []metrics.Metric{testkit.MeanScore("score", true)}, resample.Options{}); err == nil {
		t.Error("Evaluate() with no candidates succeeded, want error")
	}
	if _, err := resample.Evaluate(context.Background(), ds, testkit.ThirdsControl(n),
		cands, nil, resample.Options{}); err == nil {
		t.Error("Evaluate() with no metrics succeeded, want error")
	}
}
