package resample

import (
	"testing"
)

func evalUnion(folds []Fold) map[int]int {
	counts := make(map[int]int)
	for _, f := range folds {
		if f.Resub {
			continue
		}
		for _, i := range f.Eval {
			counts[i]++
		}
	}
	return counts
}

func overlap(a, b []int) bool {
	in := make(map[int]bool, len(a))
	for _, i := range a {
		in[i] = true
	}
	for _, i := range b {
		if in[i] {
			return true
		}
	}
	return false
}

func sameFolds(a, b []Fold) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Resub != b[i].Resub ||
			len(a[i].Train) != len(b[i].Train) ||
			len(a[i].Eval) != len(b[i].Eval) {
			return false
		}
		for j := range a[i].Train {
			if a[i].Train[j] != b[i].Train[j] {
				return false
			}
		}
		for j := range a[i].Eval {
			if a[i].Eval[j] != b[i].Eval[j] {
				return false
			}
		}
	}
	return true
}

func TestCVSplits(t *testing.T) {
	const n = 53
	ctrl := CVControl{Folds: 5, Seed: 42}
	folds, err := ctrl.Splits(n)
	if err != nil {
		t.Fatalf("Splits() error = %v", err)
	}
	if len(folds) != 5 {
		t.Fatalf("got %d folds, want 5", len(folds))
	}

	counts := evalUnion(folds)
	for i := 0; i < n; i++ {
		if counts[i] != 1 {
			t.Errorf("case %d evaluated %d times, want exactly once", i, counts[i])
		}
	}
	for fi, f := range folds {
		if overlap(f.Train, f.Eval) {
			t.Errorf("fold %d: train and eval overlap", fi)
		}
		if len(f.Train)+len(f.Eval) != n {
			t.Errorf("fold %d: train+eval = %d, want %d", fi, len(f.Train)+len(f.Eval), n)
		}
		if len(f.Eval) < n/5 || len(f.Eval) > n/5+1 {
			t.Errorf("fold %d: eval size %d, want %d or %d", fi, len(f.Eval), n/5, n/5+1)
		}
	}
}

func TestCVSplitsRepeats(t *testing.T) {
	const n = 30
	folds, err := CVControl{Folds: 3, Repeats: 4, Seed: 1}.Splits(n)
	if err != nil {
		t.Fatalf("Splits() error = %v", err)
	}
	if len(folds) != 12 {
		t.Fatalf("got %d folds, want 12", len(folds))
	}
	counts := evalUnion(folds)
	for i := 0; i < n; i++ {
		if counts[i] != 4 {
			t.Errorf("case %d evaluated %d times, want 4", i, counts[i])
		}
	}
	// repeats must differ from each other
	if sameFolds(folds[0:3], folds[3:6]) {
		t.Error("first two repeats produced identical folds")
	}
}

func TestCVSplitsStratified(t *testing.T) {
	// 40 cases in stratum 0, 20 in stratum 1
	const n = 60
	strata := make([]int, n)
	for i := 40; i < n; i++ {
		strata[i] = 1
	}
	folds, err := CVControl{Folds: 4, Strata: strata, Seed: 9}.Splits(n)
	if err != nil {
		t.Fatalf("Splits() error = %v", err)
	}
	counts := evalUnion(folds)
	for i := 0; i < n; i++ {
		if counts[i] != 1 {
			t.Errorf("case %d evaluated %d times, want exactly once", i, counts[i])
		}
	}
	for fi, f := range folds {
		minority := 0
		for _, i := range f.Eval {
			if strata[i] == 1 {
				minority++
			}
		}
		if minority != 5 {
			t.Errorf("fold %d: %d minority cases in eval, want 5", fi, minority)
		}
	}
}

func TestCVSplitsDeterministic(t *testing.T) {
	ctrl := CVControl{Folds: 5, Repeats: 2, Seed: 13}
	a, err := ctrl.Splits(47)
	if err != nil {
		t.Fatalf("Splits() error = %v", err)
	}
	b, err := ctrl.Splits(47)
	if err != nil {
		t.Fatalf("Splits() error = %v", err)
	}
	if !sameFolds(a, b) {
		t.Error("two enumerations of the same control differ")
	}
}

func TestCVSplitsInvalid(t *testing.T) {
	tests := []struct {
		name string
		ctrl CVControl
		n    int
	}{
		{"one case", CVControl{Folds: 2}, 1},
		{"more folds than cases", CVControl{Folds: 10}, 5},
		{"strata length mismatch", CVControl{Folds: 2, Strata: []int{0, 1}}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.ctrl.Splits(tt.n); err == nil {
				t.Error("Splits() succeeded, want error")
			}
		})
	}
}

func TestBootSplits(t *testing.T) {
	const n = 25
	folds, err := BootControl{Samples: 10, Seed: 3}.Splits(n)
	if err != nil {
		t.Fatalf("Splits() error = %v", err)
	}
	if len(folds) != 10 {
		t.Fatalf("got %d folds, want 10", len(folds))
	}
	for fi, f := range folds {
		if len(f.Train) != n {
			t.Errorf("fold %d: train size %d, want %d", fi, len(f.Train), n)
		}
		if len(f.Eval) != n {
			t.Errorf("fold %d: eval size %d, want all %d cases", fi, len(f.Eval), n)
		}
	}
	// with replacement: at least one draw repeats a case
	repeated := false
	for _, f := range folds {
		if len(uniqueSorted(f.Train)) < n {
			repeated = true
			break
		}
	}
	if !repeated {
		t.Error("no bootstrap draw repeated a case across 10 samples")
	}
}

func TestOOBSplits(t *testing.T) {
	const n = 25
	folds, err := OOBControl{Samples: 10, Seed: 3}.Splits(n)
	if err != nil {
		t.Fatalf("Splits() error = %v", err)
	}
	for fi, f := range folds {
		if overlap(f.Train, f.Eval) {
			t.Errorf("fold %d: out-of-bag eval overlaps train", fi)
		}
		if len(uniqueSorted(f.Train))+len(f.Eval) != n {
			t.Errorf("fold %d: unique train + eval = %d, want %d",
				fi, len(uniqueSorted(f.Train))+len(f.Eval), n)
		}
	}
}

func TestOptimismControls(t *testing.T) {
	const n = 20
	tests := []struct {
		name string
		ctrl Control
		want int
	}{
		{"boot optimism", BootOptimismControl{Samples: 5, Seed: 1}, 6},
		{"cv optimism", CVOptimismControl{Folds: 4, Seed: 1}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folds, err := tt.ctrl.Splits(n)
			if err != nil {
				t.Fatalf("Splits() error = %v", err)
			}
			if len(folds) != tt.want {
				t.Fatalf("got %d folds, want %d", len(folds), tt.want)
			}
			if !folds[0].Resub {
				t.Error("first fold is not the resubstitution fold")
			}
			if len(folds[0].Train) != n || len(folds[0].Eval) != n {
				t.Error("resubstitution fold must train and evaluate on all cases")
			}
			for fi, f := range folds[1:] {
				if f.Resub {
					t.Errorf("fold %d tagged as resubstitution", fi+1)
				}
			}
		})
	}
}

func TestSplitSplits(t *testing.T) {
	const n = 30
	folds, err := SplitControl{Prop: 2.0 / 3.0, Seed: 5}.Splits(n)
	if err != nil {
		t.Fatalf("Splits() error = %v", err)
	}
	if len(folds) != 1 {
		t.Fatalf("got %d folds, want 1", len(folds))
	}
	f := folds[0]
	if len(f.Train)+len(f.Eval) != n {
		t.Errorf("train+eval = %d, want %d", len(f.Train)+len(f.Eval), n)
	}
	if len(f.Train) < 19 || len(f.Train) > 20 {
		t.Errorf("train size = %d, want about two thirds of %d", len(f.Train), n)
	}
	if overlap(f.Train, f.Eval) {
		t.Error("train and eval overlap")
	}
}

func TestSplitSplitsInvalidProp(t *testing.T) {
	for _, prop := range []float64{-0.5, 1, 1.5} {
		if _, err := (SplitControl{Prop: prop}).Splits(10); err == nil {
			t.Errorf("Splits() with proportion %g succeeded, want error", prop)
		}
	}
}

func TestTrainSplits(t *testing.T) {
	folds, err := TrainControl{}.Splits(7)
	if err != nil {
		t.Fatalf("Splits() error = %v", err)
	}
	if len(folds) != 1 {
		t.Fatalf("got %d folds, want 1", len(folds))
	}
	if len(folds[0].Train) != 7 || len(folds[0].Eval) != 7 {
		t.Error("resubstitution must train and evaluate on all cases")
	}
	if folds[0].Resub {
		t.Error("explicit in-sample control must not carry the optimism tag")
	}
}
