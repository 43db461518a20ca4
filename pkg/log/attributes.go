// Standard attribute keys for model selection and resampling log records.
//
// Using these keys consistently across the library keeps log output
// filterable: every resampling run, tuning pass, and ensemble fit emits
// the same field names.

package log

// Specification and training context.
const (
	// NodeKindKey identifies the specification node being resolved.
	// Values: "model", "tuned", "selected", "stacked", "super".
	NodeKindKey = "train.node"

	// StepIDKey is the unique identifier of a training step audit record.
	StepIDKey = "train.step_id"

	// LearnerKey names the model family being fitted, e.g. "Ridge", "KNN".
	LearnerKey = "model.learner"

	// CandidateKey identifies a concrete candidate (learner + parameters).
	CandidateKey = "candidate.id"

	// WinnerKey identifies the candidate chosen by selection.
	WinnerKey = "select.winner"
)

// Resampling context.
const (
	// ControlKey names the resampling control, e.g. "CV", "Boot", "OOB".
	ControlKey = "resample.control"

	// IterationKey is the zero-based resampling iteration index.
	IterationKey = "resample.iteration"

	// IterationsKey is the total number of resampling iterations.
	IterationsKey = "resample.iterations"

	// CandidatesKey is the number of candidates under evaluation.
	CandidatesKey = "resample.candidates"

	// FailedCellsKey counts (candidate, iteration) cells marked failed.
	FailedCellsKey = "resample.failed_cells"
)

// Metric and data context.
const (
	// MetricKey names the performance metric, e.g. "rmse", "accuracy".
	MetricKey = "metric.name"

	// StatKey names the summary statistic applied across iterations.
	StatKey = "metric.stat"

	// ValueKey is a scalar metric or statistic value.
	ValueKey = "metric.value"

	// SamplesKey is the number of cases in the dataset being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of predictor columns.
	FeaturesKey = "data.features"

	// ResponseKey is the response kind: "numeric", "class", "survival".
	ResponseKey = "data.response"
)

// Error context.
const (
	// ErrKey carries an error value; the zerolog backend extracts its
	// stack trace when available.
	ErrKey = "error"

	// DurationMsKey is the wall-clock duration of an operation in ms.
	DurationMsKey = "duration_ms"
)
