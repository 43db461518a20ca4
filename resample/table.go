package resample

import (
	"github.com/google/uuid"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// Row is one scored cell of a performance table: the value of one
// metric for one candidate on one resampling iteration. Failed marks a
// cell whose fit, prediction, or scoring failed; the value of a failed
// row is meaningless. Resub marks rows from a resubstitution fold of an
// optimism-corrected control.
type Row struct {
	CandidateID string
	Iteration   int
	Metric      string
	Value       float64
	Failed      bool
	Resub       bool
}

// Cell retains the per-case predictions of one (candidate, iteration)
// fit. Cells are kept only when the evaluation was run with
// KeepPredictions; CaseIndices maps each predicted value back to the
// original case position so held-out predictions can be audited after
// the run.
type Cell struct {
	CandidateID string
	Iteration   int
	Resub       bool
	CaseIndices []int
	Pred        model.Prediction
	Failed      bool
	Err         error
}

// PerformanceTable is the result of evaluating candidates under a
// resampling control: one row per candidate x iteration x metric.
// Every requested combination is present, either as a value or as an
// explicitly failed row, never silently missing.
type PerformanceTable struct {
	RunID      string
	Control    string
	Candidates []string
	Metrics    []metrics.Metric
	Iterations int

	rows  []Row
	cells []Cell
}

// NewPerformanceTable builds an empty table for the given candidates,
// metrics, and iteration count, with a fresh run identifier.
func NewPerformanceTable(control string, candidateIDs []string, ms []metrics.Metric, iterations int) *PerformanceTable {
	return &PerformanceTable{
		RunID:      uuid.NewString(),
		Control:    control,
		Candidates: append([]string(nil), candidateIDs...),
		Metrics:    ms,
		Iterations: iterations,
		rows:       make([]Row, 0, len(candidateIDs)*iterations*len(ms)),
	}
}

// Append adds rows to the table.
func (t *PerformanceTable) Append(rows ...Row) {
	t.rows = append(t.rows, rows...)
}

// Rows returns the table's rows in candidate-then-iteration order.
func (t *PerformanceTable) Rows() []Row {
	return t.rows
}

// Cells returns the retained per-case predictions, nil unless the
// evaluation kept them.
func (t *PerformanceTable) Cells() []Cell {
	return t.cells
}

// Metric returns the named metric descriptor from the table's set.
func (t *PerformanceTable) Metric(name string) (metrics.Metric, error) {
	return metrics.ByName(t.Metrics, name)
}

// Values returns the successful, non-resubstitution values of one
// metric for one candidate, in iteration order.
func (t *PerformanceTable) Values(candidateID, metric string) []float64 {
	values := make([]float64, 0, t.Iterations)
	for _, r := range t.rows {
		if r.CandidateID == candidateID && r.Metric == metric && !r.Failed && !r.Resub {
			values = append(values, r.Value)
		}
	}
	return values
}

// ResubValue returns the resubstitution value of one metric for one
// candidate, when the control produced one.
func (t *PerformanceTable) ResubValue(candidateID, metric string) (float64, bool) {
	for _, r := range t.rows {
		if r.CandidateID == candidateID && r.Metric == metric && r.Resub && !r.Failed {
			return r.Value, true
		}
	}
	return 0, false
}

// Summarize collapses one candidate's metric values with the given
// statistic. Fails when every iteration for the candidate failed.
func (t *PerformanceTable) Summarize(candidateID, metric string, stat metrics.Statistic) (float64, error) {
	values := t.Values(candidateID, metric)
	if len(values) == 0 {
		return 0, errors.NewValueError("PerformanceTable.Summarize",
			"no successful iterations for candidate "+candidateID+" on metric "+metric)
	}
	return stat.Apply(values)
}

// Optimism returns resub - summarized resampled value: the estimated
// optimism of the in-sample estimate under an optimism-corrected
// control. Fails when the table has no resubstitution row.
func (t *PerformanceTable) Optimism(candidateID, metric string, stat metrics.Statistic) (float64, error) {
	resub, ok := t.ResubValue(candidateID, metric)
	if !ok {
		return 0, errors.NewValueError("PerformanceTable.Optimism",
			"table has no resubstitution row; use an optimism-corrected control")
	}
	resampled, err := t.Summarize(candidateID, metric, stat)
	if err != nil {
		return 0, err
	}
	return resub - resampled, nil
}

// FailedCells counts the (candidate, iteration) cells marked failed.
func (t *PerformanceTable) FailedCells() int {
	failed := make(map[[2]int]bool)
	candIdx := make(map[string]int, len(t.Candidates))
	for i, id := range t.Candidates {
		candIdx[id] = i
	}
	for _, r := range t.rows {
		if r.Failed {
			failed[[2]int{candIdx[r.CandidateID], r.Iteration}] = true
		}
	}
	return len(failed)
}
