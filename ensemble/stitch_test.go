package ensemble_test

import (
	"context"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/ensemble"
	"github.com/chen061218/MachineShop/internal/testkit"
	"github.com/chen061218/MachineShop/resample"
)

func TestOutOfFold(t *testing.T) {
	const n = 30
	ctrl := testkit.ThirdsControl(n)
	ds := testkit.IndexDataset(n, nil)

	// scripted bases echo their per-case tables, so the stitched matrix
	// must reproduce them column for column
	a := make([]float64, n)
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = float64(i)
		b[i] = float64(n - i)
	}
	cands := resample.WrapAll([]model.Candidate{
		model.NewCandidate(&testkit.Scripted{LearnerName: "A", PerCase: a}, nil),
		model.NewCandidate(&testkit.Scripted{LearnerName: "B", PerCase: b}, nil),
	})

	oof, err := ensemble.OutOfFold(context.Background(), ds, ctrl, cands, 2)
	if err != nil {
		t.Fatalf("OutOfFold() error = %v", err)
	}
	rows, cols := oof.Dims()
	if rows != n || cols != 2 {
		t.Fatalf("stitched matrix is %dx%d, want %dx%d", rows, cols, n, 2)
	}
	for i := 0; i < n; i++ {
		if oof.At(i, 0) != a[i] {
			t.Errorf("case %d column 0 = %v, want %v", i, oof.At(i, 0), a[i])
		}
		if oof.At(i, 1) != b[i] {
			t.Errorf("case %d column 1 = %v, want %v", i, oof.At(i, 1), b[i])
		}
	}
}

func TestOutOfFoldSkipsResubFold(t *testing.T) {
	const n = 30
	base := testkit.ThirdsControl(n)
	folds := append([]resample.Fold{{
		Train: base.Folds[0].Train, Eval: base.Folds[0].Train, Resub: true,
	}}, base.Folds...)
	ctrl := testkit.FixedControl{Folds: folds}
	ds := testkit.IndexDataset(n, nil)
	cands := resample.WrapAll([]model.Candidate{
		model.NewCandidate(&testkit.Scripted{LearnerName: "A", PerCase: testkit.ConstVector(n, 1)}, nil),
		model.NewCandidate(&testkit.Scripted{LearnerName: "B", PerCase: testkit.ConstVector(n, 2)}, nil),
	})

	if _, err := ensemble.OutOfFold(context.Background(), ds, ctrl, cands, 1); err != nil {
		t.Fatalf("OutOfFold() error = %v; resubstitution folds must not break coverage", err)
	}
}

func TestOutOfFoldRejectsPartialCoverage(t *testing.T) {
	const n = 30
	ds := testkit.IndexDataset(n, nil)
	cands := resample.WrapAll([]model.Candidate{
		model.NewCandidate(&testkit.Scripted{LearnerName: "A", PerCase: testkit.ConstVector(n, 1)}, nil),
		model.NewCandidate(&testkit.Scripted{LearnerName: "B", PerCase: testkit.ConstVector(n, 2)}, nil),
	})

	tests := []struct {
		name string
		ctrl resample.Control
	}{
		{"single split leaves cases uncovered", resample.SplitControl{Prop: 0.5, Seed: 1}},
		{"bootstrap covers cases repeatedly", resample.BootControl{Samples: 3, Seed: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ensemble.OutOfFold(context.Background(), ds, tt.ctrl, cands, 1); err == nil {
				t.Fatal("OutOfFold() succeeded, want coverage error")
			}
		})
	}
}

func TestOutOfFoldFoldFailureIsFatal(t *testing.T) {
	const n = 30
	ds := testkit.IndexDataset(n, nil)
	cands := resample.WrapAll([]model.Candidate{
		model.NewCandidate(&testkit.Scripted{LearnerName: "A", PerCase: testkit.ConstVector(n, 1)}, nil),
		model.NewCandidate(&testkit.Scripted{LearnerName: "Bad", FailFit: true}, nil),
	})

	if _, err := ensemble.OutOfFold(context.Background(), ds, testkit.ThirdsControl(n), cands, 1); err == nil {
		t.Fatal("OutOfFold() with a failing base succeeded, want error")
	}
}

func newScores(n int) *mat.Dense {
	scores := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		scores.Set(i, 0, float64(i)*2)
		scores.Set(i, 1, float64(i)*3)
	}
	return scores
}

func TestMetaFeatures(t *testing.T) {
	const n = 5
	ds := testkit.IndexDataset(n, nil)
	scores := ensemble.MetaFeatures(newScores(n), ds.X, false)
	if _, cols := scores.Dims(); cols != 2 {
		t.Errorf("without original predictors: %d columns, want 2", cols)
	}
	wide := ensemble.MetaFeatures(newScores(n), ds.X, true)
	if _, cols := wide.Dims(); cols != 3 {
		t.Errorf("with original predictors: %d columns, want 3", cols)
	}
	for i := 0; i < n; i++ {
		if wide.At(i, 2) != float64(i) {
			t.Errorf("case %d: original predictor = %v, want %v", i, wide.At(i, 2), float64(i))
		}
	}
}
