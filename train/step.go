package train

import (
	"github.com/google/uuid"

	"github.com/chen061218/MachineShop/resample"
)

// TrainStep is the audit record of one meta-node actually resolved
// during a fit: the candidate set it considered, the performance table
// produced by resampling them, and the selection outcome. Steps are
// appended in resolution order and are read-only after training.
//
// Resampling performed inside a selection iteration to resolve a child
// candidate is throwaway work and leaves no step; only decisions on the
// chosen path are recorded.
type TrainStep struct {
	// ID uniquely identifies the step.
	ID string
	// Node is the meta-node kind: "tuned", "selected", "stacked", "super".
	Node string
	// Candidates lists the competing candidate identifiers in their
	// original order.
	Candidates []string
	// Table is the performance table the decision was based on; nil
	// for stacked and super nodes, whose decision is a weight vector
	// or meta-fit rather than a ranking.
	Table *resample.PerformanceTable
	// Winner, Metric, and Value describe the selection outcome for
	// tuned and selected nodes.
	Winner string
	Metric string
	Value  float64
	// Weights holds the estimated combination weights of a stacked node.
	Weights []float64
}

func newStep(node string, candidates []string) TrainStep {
	return TrainStep{
		ID:         uuid.NewString(),
		Node:       node,
		Candidates: candidates,
	}
}
