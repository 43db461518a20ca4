// Package errors provides error handling for the MachineShop model
// selection and resampling engine. Error types are structured so they can
// be logged with zerolog and inspected with errors.Is/As, and every
// constructor attaches a stack trace via cockroachdb/errors.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("MachineShop-Warning: %v\n", w)
	}
	// zerolog sink, set lazily to avoid a circular import with pkg/log
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the warning handler for the whole library.
// Non-fatal conditions (a failed resampling cell, a degenerate metric)
// are reported through this handler rather than aborting a run.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn reports a non-fatal condition. The zerolog sink is preferred when
// one has been installed.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Model selection errors
//
// ===========================================================================

// InvalidGridSpecError reports a tuning grid definition that cannot be
// realized: a non-positive length or random draw count. It is raised
// before any fitting takes place.
type InvalidGridSpecError struct {
	Length int
	Random int
	Reason string
}

func (e *InvalidGridSpecError) Error() string {
	return fmt.Sprintf("machineshop: invalid grid spec (length=%d, random=%d): %s", e.Length, e.Random, e.Reason)
}

// MarshalZerologObject adds structured grid spec information to a zerolog event.
func (e *InvalidGridSpecError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("length", e.Length).
		Int("random", e.Random).
		Str("reason", e.Reason).
		Str("type", "InvalidGridSpecError")
}

// NewInvalidGridSpecError creates an InvalidGridSpecError with a stack trace.
func NewInvalidGridSpecError(length, random int, reason string) error {
	err := &InvalidGridSpecError{Length: length, Random: random, Reason: reason}
	return errors.WithStack(err)
}

// FitFailureError records the failure of a single (candidate, iteration)
// resampling cell. It is absorbed by the resampler: the cell is marked
// failed and evaluation of the remaining cells continues.
type FitFailureError struct {
	CandidateID string
	Iteration   int
	Err         error
}

func (e *FitFailureError) Error() string {
	return fmt.Sprintf("machineshop: fit failed for candidate %q at iteration %d: %v", e.CandidateID, e.Iteration, e.Err)
}

func (e *FitFailureError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds structured cell information to a zerolog event.
func (e *FitFailureError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("candidate_id", e.CandidateID).
		Int("iteration", e.Iteration).
		AnErr("cause", e.Err).
		Str("type", "FitFailureError")
}

// NewFitFailureError creates a FitFailureError with a stack trace.
func NewFitFailureError(candidateID string, iteration int, err error) error {
	fitErr := &FitFailureError{CandidateID: candidateID, Iteration: iteration, Err: err}
	return errors.WithStack(fitErr)
}

// NoViableCandidateError reports that selection could not rank any
// candidate: every candidate's cells failed for the selection metric.
// Unlike a single cell failure this is fatal for the enclosing node and
// propagates up to the top-level Train call.
type NoViableCandidateError struct {
	Metric     string
	Candidates []string
}

func (e *NoViableCandidateError) Error() string {
	return fmt.Sprintf("machineshop: no viable candidate for metric %q among %d candidates", e.Metric, len(e.Candidates))
}

// MarshalZerologObject adds structured selection information to a zerolog event.
func (e *NoViableCandidateError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("metric", e.Metric).
		Strs("candidates", e.Candidates).
		Str("type", "NoViableCandidateError")
}

// NewNoViableCandidateError creates a NoViableCandidateError with a stack trace.
func NewNoViableCandidateError(metric string, candidates []string) error {
	err := &NoViableCandidateError{Metric: metric, Candidates: candidates}
	return errors.WithStack(err)
}

// ResponseTypeMismatchError reports a candidate whose declared response
// support does not include the dataset's response kind. Detected before
// any fitting begins.
type ResponseTypeMismatchError struct {
	CandidateID string
	Got         string
	Supported   []string
}

func (e *ResponseTypeMismatchError) Error() string {
	return fmt.Sprintf("machineshop: candidate %q does not support %s responses (supports: %v)", e.CandidateID, e.Got, e.Supported)
}

// MarshalZerologObject adds structured response information to a zerolog event.
func (e *ResponseTypeMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("candidate_id", e.CandidateID).
		Str("got", e.Got).
		Strs("supported", e.Supported).
		Str("type", "ResponseTypeMismatchError")
}

// NewResponseTypeMismatchError creates a ResponseTypeMismatchError with a stack trace.
func NewResponseTypeMismatchError(candidateID, got string, supported []string) error {
	err := &ResponseTypeMismatchError{CandidateID: candidateID, Got: got, Supported: supported}
	return errors.WithStack(err)
}

// InsufficientBaseLearnersError reports a stacked or super learner
// specification with fewer than two base learners.
type InsufficientBaseLearnersError struct {
	Node string
	Got  int
}

func (e *InsufficientBaseLearnersError) Error() string {
	return fmt.Sprintf("machineshop: %s requires at least 2 base learners, got %d", e.Node, e.Got)
}

// MarshalZerologObject adds structured node information to a zerolog event.
func (e *InsufficientBaseLearnersError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("node", e.Node).
		Int("got", e.Got).
		Str("type", "InsufficientBaseLearnersError")
}

// NewInsufficientBaseLearnersError creates an InsufficientBaseLearnersError with a stack trace.
func NewInsufficientBaseLearnersError(node string, got int) error {
	err := &InsufficientBaseLearnersError{Node: node, Got: got}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	General-purpose errors
//
// ===========================================================================

// NotFittedError is returned when Predict or VarImp is called on a model
// that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("machineshop: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured model information to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports an input whose dimensions differ from what an
// operation expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows/cases, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "cases"
	}
	return fmt.Sprintf("machineshop: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured dimension information to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is invalid for an operation,
// e.g. a split proportion outside (0, 1).
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("machineshop: %s: %s", e.Op, e.Message)
}

// MarshalZerologObject adds structured value information to a zerolog event.
func (e *ValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("message", e.Message).
		Str("type", "ValueError")
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace at the point of the call.
func WithStack(err error) error {
	return errors.WithStack(err)
}
