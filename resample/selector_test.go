package resample

import (
	"math"
	"testing"

	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/pkg/errors"
)

func scoreMetric(maximize bool) metrics.Metric {
	return metrics.Metric{Name: "score", Maximize: maximize}
}

// tableWith builds a table with one row per candidate per value.
func tableWith(m metrics.Metric, values map[string][]float64, order []string) *PerformanceTable {
	iterations := 0
	for _, vs := range values {
		if len(vs) > iterations {
			iterations = len(vs)
		}
	}
	t := NewPerformanceTable("CV", order, []metrics.Metric{m}, iterations)
	for _, id := range order {
		for it, v := range values[id] {
			t.Append(Row{CandidateID: id, Iteration: it, Metric: "score", Value: v})
		}
	}
	return t
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		maximize bool
		values   map[string][]float64
		wantID   string
		wantVal  float64
	}{
		{
			name:     "maximize picks highest mean",
			maximize: true,
			values: map[string][]float64{
				"a": {0.9, 0.8, 0.7},
				"b": {0.5, 0.6, 0.4},
			},
			wantID:  "a",
			wantVal: 0.8,
		},
		{
			name:     "minimize picks lowest mean",
			maximize: false,
			values: map[string][]float64{
				"a": {2, 4},
				"b": {1, 2},
			},
			wantID:  "b",
			wantVal: 1.5,
		},
		{
			name:     "tie breaks to first candidate",
			maximize: true,
			values: map[string][]float64{
				"a": {0.5, 0.5},
				"b": {0.4, 0.6},
			},
			wantID:  "a",
			wantVal: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := tableWith(scoreMetric(tt.maximize), tt.values, []string{"a", "b"})
			sel, err := Selector{}.Select(table)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if sel.CandidateID != tt.wantID {
				t.Errorf("winner = %q, want %q", sel.CandidateID, tt.wantID)
			}
			if math.Abs(sel.Value-tt.wantVal) > 1e-12 {
				t.Errorf("value = %v, want %v", sel.Value, tt.wantVal)
			}
		})
	}
}

func TestSelectRepeatable(t *testing.T) {
	table := tableWith(scoreMetric(true), map[string][]float64{
		"a": {0.3, 0.3},
		"b": {0.2, 0.4},
		"c": {0.25, 0.35},
	}, []string{"a", "b", "c"})
	first, err := Selector{}.Select(table)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Selector{}.Select(table)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if again != first {
			t.Fatalf("repeat %d: selection %+v differs from %+v", i, again, first)
		}
	}
}

func TestSelectSkipsFailedCandidates(t *testing.T) {
	table := NewPerformanceTable("CV", []string{"a", "b"}, []metrics.Metric{scoreMetric(true)}, 2)
	table.Append(
		Row{CandidateID: "a", Iteration: 0, Metric: "score", Failed: true},
		Row{CandidateID: "a", Iteration: 1, Metric: "score", Failed: true},
		Row{CandidateID: "b", Iteration: 0, Metric: "score", Value: 0.4},
		Row{CandidateID: "b", Iteration: 1, Metric: "score", Value: 0.6},
	)
	sel, err := Selector{}.Select(table)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.CandidateID != "b" {
		t.Errorf("winner = %q, want %q", sel.CandidateID, "b")
	}
}

func TestSelectAllFailed(t *testing.T) {
	table := NewPerformanceTable("CV", []string{"a", "b"}, []metrics.Metric{scoreMetric(true)}, 1)
	table.Append(
		Row{CandidateID: "a", Iteration: 0, Metric: "score", Failed: true},
		Row{CandidateID: "b", Iteration: 0, Metric: "score", Failed: true},
	)
	_, err := Selector{}.Select(table)
	var noViable *errors.NoViableCandidateError
	if !errors.As(err, &noViable) {
		t.Fatalf("Select() error = %v, want NoViableCandidateError", err)
	}
	if len(noViable.Candidates) != 2 {
		t.Errorf("error lists %d candidates, want 2", len(noViable.Candidates))
	}
}

func TestSelectIgnoresResubRows(t *testing.T) {
	// candidate a looks best only through its in-sample row
	table := NewPerformanceTable("BootOptimism", []string{"a", "b"}, []metrics.Metric{scoreMetric(true)}, 2)
	table.Append(
		Row{CandidateID: "a", Iteration: 0, Metric: "score", Value: 0.99, Resub: true},
		Row{CandidateID: "a", Iteration: 1, Metric: "score", Value: 0.3},
		Row{CandidateID: "b", Iteration: 0, Metric: "score", Value: 0.5, Resub: true},
		Row{CandidateID: "b", Iteration: 1, Metric: "score", Value: 0.5},
	)
	sel, err := Selector{}.Select(table)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.CandidateID != "b" {
		t.Errorf("winner = %q, want %q", sel.CandidateID, "b")
	}
}

func TestSelectWithStatAndMetricOverrides(t *testing.T) {
	m := scoreMetric(false)
	table := tableWith(m, map[string][]float64{
		// median 2 vs mean heavy outlier
		"a": {1, 2, 100},
		"b": {3, 3, 3},
	}, []string{"a", "b"})
	sel, err := Selector{Metric: "score", Stat: metrics.Median()}.Select(table)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.CandidateID != "a" {
		t.Errorf("winner = %q, want %q", sel.CandidateID, "a")
	}
	if sel.Value != 2 {
		t.Errorf("value = %v, want 2", sel.Value)
	}
	if sel.Stat != metrics.Median().Name {
		t.Errorf("stat = %q, want %q", sel.Stat, metrics.Median().Name)
	}
}

func TestSelectUnknownMetric(t *testing.T) {
	table := tableWith(scoreMetric(true), map[string][]float64{"a": {1}}, []string{"a"})
	if _, err := (Selector{Metric: "nope"}).Select(table); err == nil {
		t.Fatal("Select() with unknown metric succeeded, want error")
	}
}

func TestTableOptimism(t *testing.T) {
	m := scoreMetric(true)
	table := NewPerformanceTable("CVOptimism", []string{"a"}, []metrics.Metric{m}, 3)
	table.Append(
		Row{CandidateID: "a", Iteration: 0, Metric: "score", Value: 0.9, Resub: true},
		Row{CandidateID: "a", Iteration: 1, Metric: "score", Value: 0.7},
		Row{CandidateID: "a", Iteration: 2, Metric: "score", Value: 0.5},
	)
	opt, err := table.Optimism("a", "score", metrics.Mean())
	if err != nil {
		t.Fatalf("Optimism() error = %v", err)
	}
	if want := 0.9 - 0.6; math.Abs(opt-want) > 1e-12 {
		t.Errorf("optimism = %v, want %v", opt, want)
	}
}

func TestTableOptimismWithoutResub(t *testing.T) {
	table := tableWith(scoreMetric(true), map[string][]float64{"a": {1, 2}}, []string{"a"})
	if _, err := table.Optimism("a", "score", metrics.Mean()); err == nil {
		t.Fatal("Optimism() without resubstitution row succeeded, want error")
	}
}

func TestTableValuesFilters(t *testing.T) {
	table := NewPerformanceTable("CVOptimism", []string{"a"}, []metrics.Metric{scoreMetric(true)}, 3)
	table.Append(
		Row{CandidateID: "a", Iteration: 0, Metric: "score", Value: 0.9, Resub: true},
		Row{CandidateID: "a", Iteration: 1, Metric: "score", Value: 0.7},
		Row{CandidateID: "a", Iteration: 2, Metric: "score", Failed: true},
	)
	values := table.Values("a", "score")
	if len(values) != 1 || values[0] != 0.7 {
		t.Errorf("Values() = %v, want [0.7]", values)
	}
	if got := table.FailedCells(); got != 1 {
		t.Errorf("FailedCells() = %d, want 1", got)
	}
}
