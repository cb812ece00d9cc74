// Package stageerr defines the error taxonomy shared by every topology
// stage, mirroring the repository package's ErrNotFound/ErrDuplicateKey/...
// sentinel style but scoped to pipeline failure modes (spec §5 "Stage
// failure").
package stageerr

import (
	"errors"
	"fmt"
)

// Kind classifies why a stage failed.
type Kind int

const (
	// KindInput marks a malformed or missing input (bad trail geometry,
	// empty trail set). Always fatal -- the pipeline cannot guess intent.
	KindInput Kind = iota
	// KindTopology marks a structural inconsistency discovered while
	// building the graph (e.g. an intersection that resolves to more than
	// two segments in a way a stage cannot reconcile).
	KindTopology
	// KindInvariant marks a postcondition violation: a stage produced a
	// working set that breaks an invariant spec §3/§8 requires of every
	// stage boundary. Always fatal -- it indicates a bug in the stage.
	KindInvariant
	// KindResource marks an external failure (store unavailable, context
	// deadline) unrelated to the data itself. Recoverable by retrying the
	// run.
	KindResource
	// KindCancelled marks a run stopped by context cancellation.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTopology:
		return "topology"
	case KindInvariant:
		return "invariant"
	case KindResource:
		return "resource"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StageError is the error type every stage returns on failure. Stage is the
// package name of the failing stage (e.g. "noder", "compactor").
type StageError struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Fatal reports whether the error is non-transient: every kind except
// KindResource, which a caller may retry by re-running the pipeline.
// Pipeline.Run aborts on any stage error regardless of this flag.
func (e *StageError) Fatal() bool {
	return e.Kind != KindResource
}

// New constructs a StageError.
func New(stage string, kind Kind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// Input wraps err as a KindInput StageError.
func Input(stage string, err error) *StageError { return New(stage, KindInput, err) }

// Topology wraps err as a KindTopology StageError.
func Topology(stage string, err error) *StageError { return New(stage, KindTopology, err) }

// Invariant wraps err as a KindInvariant StageError.
func Invariant(stage string, err error) *StageError { return New(stage, KindInvariant, err) }

// Resource wraps err as a KindResource StageError.
func Resource(stage string, err error) *StageError { return New(stage, KindResource, err) }

// Cancelled wraps ctx.Err() as a KindCancelled StageError.
func Cancelled(stage string, err error) *StageError { return New(stage, KindCancelled, err) }

// As is a convenience wrapper over errors.As for *StageError.
func As(err error) (*StageError, bool) {
	var se *StageError
	ok := errors.As(err, &se)
	return se, ok
}
