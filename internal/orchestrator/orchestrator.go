package orchestrator

import (
	"context"
	"log"
	"sync"
)

// State is one node of the auto-apply workflow state machine.
type State string

const (
	// StateIdle is the initial state; nothing is in flight.
	StateIdle State = "idle"
	// StateAnalyzing means the form is being analyzed (and previewed).
	StateAnalyzing State = "analyzing"
	// StatePreviewReady means a preview is held, waiting for the user.
	StatePreviewReady State = "preview_ready"
	// StateApplying means the submission is in flight.
	StateApplying State = "applying"
	// StateApplied is the successful terminal state for a run.
	StateApplied State = "applied"
	// StateAnalysisError is the terminal error state for the analyze/preview
	// leg. Retry returns to idle.
	StateAnalysisError State = "analysis_error"
	// StateApplyError is the terminal error state for the submission leg.
	// Retry returns to idle.
	StateApplyError State = "apply_error"
)

// JobReference is the immutable identity of one auto-apply attempt.
type JobReference struct {
	URL string
	ID  string
}

// API is the auto-apply endpoint surface the orchestrator sequences.
// *Client satisfies it; tests substitute a fake.
type API interface {
	AnalyzeForm(ctx context.Context, jobURL string) (*AnalysisResponse, error)
	PreviewResponses(ctx context.Context, jobURL string) (*PreviewResponse, error)
	AutoApply(ctx context.Context, jobURL, jobID string) (*ApplyResponse, error)
}

// Orchestrator drives one job's auto-apply workflow:
//
//	Idle -> Analyzing -> PreviewReady -> Applying -> Applied
//	                 \-> AnalysisError           \-> ApplyError
//
// Applying is reachable only from PreviewReady and Applied only from
// Applying, which is what prevents double submission: restarting always
// begins at Idle and discards any held preview. Triggers received in any
// other state than the one they expect are no-ops that return the current
// state. At most one request is in flight per instance; the Analyzing and
// Applying states are themselves the lock.
type Orchestrator struct {
	mu     sync.Mutex
	api    API
	tokens TokenSource
	job    JobReference

	state         State
	preview       *PreviewResponse
	lastErr       *Error
	applicationID string
	closed        bool

	// onApplied is invoked exactly once per successful run, with the durable
	// application ID. The caller's applied-jobs set hangs off this.
	onApplied func(applicationID string)
}

// New creates an orchestrator in Idle for one job. onApplied may be nil.
func New(api API, tokens TokenSource, job JobReference, onApplied func(applicationID string)) *Orchestrator {
	return &Orchestrator{
		api:       api,
		tokens:    tokens,
		job:       job,
		state:     StateIdle,
		onApplied: onApplied,
	}
}

// Apply starts a run: analyze the form and, if supported, fetch the preview.
// Blocks until PreviewReady or an error state is reached. A missing token
// short-circuits to AnalysisError before any network call. No-op unless Idle.
func (o *Orchestrator) Apply(ctx context.Context) State {
	o.mu.Lock()
	if o.closed || o.state != StateIdle {
		defer o.mu.Unlock()
		return o.state
	}
	if o.tokens == nil || o.tokens.Token() == "" {
		o.state = StateAnalysisError
		o.lastErr = &Error{Kind: KindAuthRequired, Message: "Please login to use Auto Apply"}
		defer o.mu.Unlock()
		return o.state
	}
	o.state = StateAnalyzing
	o.preview = nil
	o.lastErr = nil
	o.applicationID = ""
	o.mu.Unlock()

	analysis, err := o.api.AnalyzeForm(ctx, o.job.URL)
	if err != nil {
		return o.fail(StateAnalyzing, StateAnalysisError, asWorkflowError(err, KindAnalysisFailed))
	}
	if !analysis.AutoApplySupported {
		return o.fail(StateAnalyzing, StateAnalysisError, &Error{
			Kind:    KindUnsupported,
			Message: "Auto Apply is not supported for this job posting",
		})
	}

	preview, err := o.api.PreviewResponses(ctx, o.job.URL)
	if err != nil {
		return o.fail(StateAnalyzing, StateAnalysisError, asWorkflowError(err, KindPreviewFailed))
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.state != StateAnalyzing {
		// Closed (or reset) while the request was in flight; discard.
		return o.state
	}
	o.preview = preview
	o.state = StatePreviewReady
	return o.state
}

// Confirm submits the previewed application. Blocks until Applied or
// ApplyError. No-op unless PreviewReady.
func (o *Orchestrator) Confirm(ctx context.Context) State {
	o.mu.Lock()
	if o.closed || o.state != StatePreviewReady {
		defer o.mu.Unlock()
		return o.state
	}
	o.state = StateApplying
	o.preview = nil
	o.mu.Unlock()

	resp, err := o.api.AutoApply(ctx, o.job.URL, o.job.ID)
	if err != nil {
		werr := asWorkflowError(err, KindApplyFailed)
		log.Printf("[orchestrator] submit failed for job %s (%s): %v", o.job.ID, werr.Kind, werr)
		return o.fail(StateApplying, StateApplyError, werr)
	}
	if !resp.Success {
		message := resp.Message
		if message == "" {
			message = "Auto Apply Failed"
		}
		log.Printf("[orchestrator] submit rejected for job %s: %s", o.job.ID, message)
		return o.fail(StateApplying, StateApplyError, &Error{Kind: KindApplyFailed, Message: message})
	}

	o.mu.Lock()
	if o.closed || o.state != StateApplying {
		defer o.mu.Unlock()
		return o.state
	}
	o.state = StateApplied
	o.applicationID = resp.ApplicationID
	callback := o.onApplied
	o.mu.Unlock()

	if callback != nil {
		callback(resp.ApplicationID)
	}
	return StateApplied
}

// Cancel discards a held preview and returns to Idle. No-op unless
// PreviewReady.
func (o *Orchestrator) Cancel() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.state != StatePreviewReady {
		return o.state
	}
	o.preview = nil
	o.state = StateIdle
	return o.state
}

// Retry returns to Idle from either error state so the user can start over.
// No automatic retry happens anywhere; this is the only way back.
func (o *Orchestrator) Retry() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || (o.state != StateAnalysisError && o.state != StateApplyError) {
		return o.state
	}
	o.lastErr = nil
	o.state = StateIdle
	return o.state
}

// Close detaches the orchestrator: any in-flight resolution is discarded
// silently, with no state update and no callback. The underlying HTTP
// request is not aborted; the server's idempotent submit makes at-least-once
// delivery safe.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

// State returns the current workflow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Preview returns the held preview payload, or nil outside PreviewReady.
func (o *Orchestrator) Preview() *PreviewResponse {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.preview
}

// Err returns the failure that put the workflow into an error state, or nil.
func (o *Orchestrator) Err() *Error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// ApplicationID returns the durable application ID after a successful run,
// or "" before one exists.
func (o *Orchestrator) ApplicationID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.applicationID
}

// Job returns the job reference this orchestrator owns.
func (o *Orchestrator) Job() JobReference {
	return o.job
}

// fail records an error outcome if the run is still in the expected state;
// a closed or reset orchestrator discards the resolution.
func (o *Orchestrator) fail(from, to State, werr *Error) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.state != from {
		return o.state
	}
	o.state = to
	o.lastErr = werr
	return o.state
}
