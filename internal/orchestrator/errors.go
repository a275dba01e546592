package orchestrator

import "fmt"

// ErrorKind classifies a workflow failure for logging and retry affordances.
type ErrorKind string

const (
	// KindAuthRequired means no usable session token was present. Never
	// retried automatically; the user has to log in again.
	KindAuthRequired ErrorKind = "auth_required"
	// KindUnsupported means analysis reported the form cannot be driven.
	// Terminal; retrying is not expected to help.
	KindUnsupported ErrorKind = "unsupported"
	// KindAnalysisFailed is a transient analysis failure (non-2xx response).
	KindAnalysisFailed ErrorKind = "analysis_failed"
	// KindPreviewFailed is a transient preview failure (non-2xx response).
	KindPreviewFailed ErrorKind = "preview_failed"
	// KindApplyFailed covers submission failures, both soft rejections in a
	// well-formed response and non-2xx responses.
	KindApplyFailed ErrorKind = "apply_failed"
	// KindNetwork means no response was received at all. The raw cause is
	// preserved so the user sees the underlying message verbatim.
	KindNetwork ErrorKind = "network"
)

// Error is a workflow failure carrying a human-readable message that is
// displayed to the user verbatim.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retriable reports whether clicking "Try Again" is a sensible affordance.
func (e *Error) Retriable() bool {
	switch e.Kind {
	case KindAuthRequired, KindUnsupported:
		return false
	default:
		return true
	}
}

// asWorkflowError normalizes any failure into an *Error of the given default
// kind, preserving an already-classified Error as-is.
func asWorkflowError(err error, kind ErrorKind) *Error {
	if werr, ok := err.(*Error); ok {
		return werr
	}
	return &Error{Kind: kind, Message: err.Error(), Cause: err}
}
