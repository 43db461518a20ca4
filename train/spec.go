// Package train implements the recursive meta-training engine: it
// resolves a specification tree of tuned, selected, stacked, and super
// learner nodes into a single trained model, invoking the resampling
// engine at each nesting level and refitting the chosen path on the
// full dataset handed to that level.
package train

import (
	"fmt"

	"github.com/chen061218/MachineShop/core/model"
	"github.com/chen061218/MachineShop/metrics"
	"github.com/chen061218/MachineShop/resample"
	"github.com/chen061218/MachineShop/tune"
)

// Spec is a node of the specification tree. The variant set is closed:
// ModelSpec, TunedSpec, SelectedSpec, StackedSpec, and SuperSpec, all
// resolved by one recursive function. The tree is immutable input; the
// trainer only reads it.
type Spec interface {
	// Kind names the node variant: "model", "tuned", "selected",
	// "stacked", or "super".
	Kind() string

	specNode()
}

// ModelSpec is a terminal node: one model family with fixed parameters,
// fit directly on the dataset passed down. No resampling happens at
// this node; evaluating a plain model embedded in a Tuned or Selected
// parent is the parent's job.
type ModelSpec struct {
	Learner model.Learner
	Params  model.Params
}

// Kind implements Spec.
func (ModelSpec) Kind() string { return "model" }
func (ModelSpec) specNode()    {}

// TunedSpec tunes one model family over a realized parameter grid: the
// grid's candidates are evaluated under the node's control and the
// winner is refit on the entire dataset passed into this node.
//
// Control, Metrics, Stat, and Metric fall back to the Config defaults
// when unset; Metric names the ranking metric and defaults to the first
// of the metric set.
type TunedSpec struct {
	Learner model.Learner
	Grid    tune.Grid
	Control resample.Control
	Metrics []metrics.Metric
	Stat    metrics.Statistic
	Metric  string
}

// Kind implements Spec.
func (TunedSpec) Kind() string { return "tuned" }
func (TunedSpec) specNode()    {}

// SelectedSpec picks the best of a set of child specifications. Each
// child is treated as one opaque candidate: its fit inside the
// selection resampling recursively resolves the child's own meta-nodes
// strictly within the training subset of the current iteration, so no
// evaluation case of this level leaks into a child's internal tuning.
// The winning child alone is refit on the entire dataset.
type SelectedSpec struct {
	Specs   []Spec
	Control resample.Control
	Metrics []metrics.Metric
	Stat    metrics.Statistic
	Metric  string
}

// Kind implements Spec.
func (SelectedSpec) Kind() string { return "selected" }
func (SelectedSpec) specNode()    {}

// StackedSpec combines base specifications by stacked regression:
// non-negative weights summing to one, estimated from out-of-fold base
// predictions by constrained least squares, or by concordance
// maximization for survival responses.
//
// The control must place every case in exactly one evaluation subset
// (k-fold cross-validation); at least two base specifications are
// required.
type StackedSpec struct {
	Specs   []Spec
	Control resample.Control
}

// Kind implements Spec.
func (StackedSpec) Kind() string { return "stacked" }
func (StackedSpec) specNode()    {}

// SuperSpec combines base specifications by super learning: a
// meta-learner specification fit on the out-of-fold base predictions,
// optionally alongside the original predictors when AllVars is set.
type SuperSpec struct {
	Specs   []Spec
	Meta    Spec
	Control resample.Control
	AllVars bool
}

// Kind implements Spec.
func (SuperSpec) Kind() string { return "super" }
func (SuperSpec) specNode()    {}

// Label returns a short human-readable identifier for a spec node, used
// as the candidate identifier when child specs compete under selection.
func Label(s Spec) string {
	switch node := s.(type) {
	case ModelSpec:
		return model.NewCandidate(node.Learner, node.Params).ID()
	case TunedSpec:
		return fmt.Sprintf("Tuned(%s)", node.Learner.Info().Name)
	case SelectedSpec:
		return fmt.Sprintf("Selected(%d)", len(node.Specs))
	case StackedSpec:
		return fmt.Sprintf("Stacked(%d)", len(node.Specs))
	case SuperSpec:
		return fmt.Sprintf("Super(%d,%s)", len(node.Specs), Label(node.Meta))
	default:
		return s.Kind()
	}
}

// supportsKind reports whether every learner reachable from the spec
// declares support for the response kind.
func supportsKind(s Spec, kind model.ResponseKind) bool {
	switch node := s.(type) {
	case ModelSpec:
		return node.Learner.Info().Supports(kind)
	case TunedSpec:
		return node.Learner.Info().Supports(kind)
	case SelectedSpec:
		for _, child := range node.Specs {
			if !supportsKind(child, kind) {
				return false
			}
		}
		return true
	case StackedSpec:
		for _, child := range node.Specs {
			if !supportsKind(child, kind) {
				return false
			}
		}
		return kind == model.Numeric || kind == model.Survival
	case SuperSpec:
		for _, child := range node.Specs {
			if !supportsKind(child, kind) {
				return false
			}
		}
		return (kind == model.Numeric || kind == model.Survival) && supportsKind(node.Meta, kind)
	default:
		return false
	}
}
