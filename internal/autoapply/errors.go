package autoapply

import "fmt"

// AnalysisError indicates the form could not be fetched or parsed during
// analysis. Transient upstream failures land here; retrying may succeed.
type AnalysisError struct {
	URL     string
	Message string
	Cause   error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis failed for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("analysis failed for %s: %s", e.URL, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// PreviewError indicates the preview payload could not be assembled.
type PreviewError struct {
	URL     string
	Message string
	Cause   error
}

func (e *PreviewError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("preview failed for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("preview failed for %s: %s", e.URL, e.Message)
}

func (e *PreviewError) Unwrap() error {
	return e.Cause
}

// SubmitErrorKind separates infrastructure failures from upstream trouble in
// logs. Soft rejections are not errors at all; they come back in
// ApplicationResult with Success=false.
type SubmitErrorKind string

const (
	// SubmitErrorNetwork means no usable response came back from the
	// upstream form (navigation failure, timeout, unreachable page).
	SubmitErrorNetwork SubmitErrorKind = "network"
	// SubmitErrorInternal means our own storage or plumbing failed.
	SubmitErrorInternal SubmitErrorKind = "internal"
)

// SubmitError is a hard submission failure.
type SubmitError struct {
	Kind    SubmitErrorKind
	URL     string
	Message string
	Cause   error
}

func (e *SubmitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("submit failed (%s) for %s: %s: %v", e.Kind, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("submit failed (%s) for %s: %s", e.Kind, e.URL, e.Message)
}

func (e *SubmitError) Unwrap() error {
	return e.Cause
}
