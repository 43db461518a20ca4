package resample

import (
	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/pkg/errors"
)

// Selector picks the best candidate from a performance table by
// summarizing one metric with one statistic per candidate and
// optimizing in the metric's declared direction.
//
// Ties break deterministically: the first candidate in the table's
// original ordering that attains the optimum wins. A candidate whose
// iterations all failed is disqualified; when every candidate is
// disqualified, selection fails with NoViableCandidateError.
type Selector struct {
	// Metric names the metric to rank by; empty means the table's
	// first metric.
	Metric string
	// Stat is the summary statistic; a zero value means the mean.
	Stat metrics.Statistic
}

// Selection is the outcome of a Select call.
type Selection struct {
	CandidateID string
	Index       int
	Metric      string
	Stat        string
	Value       float64
}

// Select returns the winning candidate and its summarized metric value.
// Repeated calls on the same table return the same winner.
func (s Selector) Select(t *PerformanceTable) (Selection, error) {
	metricName := s.Metric
	if metricName == "" {
		if len(t.Metrics) == 0 {
			return Selection{}, errors.NewValueError("Selector.Select", "table has no metrics")
		}
		metricName = t.Metrics[0].Name
	}
	m, err := t.Metric(metricName)
	if err != nil {
		return Selection{}, err
	}
	stat := s.Stat
	if stat.Apply == nil {
		stat = metrics.Mean()
	}

	best := Selection{Index: -1, Metric: metricName, Stat: stat.Name}
	for i, id := range t.Candidates {
		value, err := t.Summarize(id, metricName, stat)
		if err != nil {
			// all iterations failed: candidate disqualified
			continue
		}
		if best.Index < 0 || better(m.Maximize, value, best.Value) {
			best = Selection{CandidateID: id, Index: i, Metric: metricName, Stat: stat.Name, Value: value}
		}
	}
	if best.Index < 0 {
		return Selection{}, errors.NewNoViableCandidateError(metricName, t.Candidates)
	}
	return best, nil
}

// better reports strict improvement, so earlier candidates keep wins on
// equal values.
func better(maximize bool, value, incumbent float64) bool {
	if maximize {
		return value > incumbent
	}
	return value < incumbent
}
