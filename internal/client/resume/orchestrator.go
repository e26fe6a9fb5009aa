// Package resume decides, when the form page loads, whether to resume a
// submission from a resume token, ask the user about a stored session, or
// start fresh. The backend status always overrides the stored pointer.
package resume

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/atinyakov/formresume/internal/client/gateway"
	"github.com/atinyakov/formresume/internal/client/storage"
	"github.com/atinyakov/formresume/internal/models"
	"go.uber.org/zap"
)

// Phase is the orchestrator state.
type Phase int

const (
	// PhaseChecking is the initial phase, before Check ran.
	PhaseChecking Phase = iota
	// PhaseAwaitingChoice means a stored session exists and the user must
	// pick Continue or StartNew.
	PhaseAwaitingChoice
	// PhaseReady means the form is usable. It is terminal for a page load.
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseChecking:
		return "checking"
	case PhaseAwaitingChoice:
		return "awaiting_choice"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

var (
	// ErrNoChoicePending is returned by Continue and StartNew outside
	// PhaseAwaitingChoice.
	ErrNoChoicePending = errors.New("no resume choice pending")
	// ErrNotReady is returned by Confirm before the form is usable.
	ErrNotReady = errors.New("form is not ready")
	// ErrBadConfirmation is returned by Confirm for an empty session id or
	// a negative step.
	ErrBadConfirmation = errors.New("invalid step confirmation")
)

// StatusFetcher fetches the authoritative form status.
type StatusFetcher interface {
	FetchFormStatus(ctx context.Context, token string) gateway.Result
}

// State is a snapshot of what the form should display.
type State struct {
	Phase Phase
	// ActiveStep is the next unconfirmed step index.
	ActiveStep int
	// SessionID is the session being continued, empty for a fresh flow.
	SessionID string
	// Prefill holds previously submitted values.
	Prefill map[string]any
	// DialogOpen is true while the resume prompt is shown.
	DialogOpen bool
	// Completed is true once the backend reports the final step done.
	Completed bool
	// Failure is the last gateway failure surfaced to the user.
	Failure *gateway.Failure
}

// Message returns the user-facing error message, if any.
func (s State) Message() string {
	if s.Failure == nil {
		return ""
	}
	return s.Failure.Message
}

// Orchestrator runs the resume decision for one page load.
type Orchestrator struct {
	store  *storage.SessionStore
	status StatusFetcher
	loc    Location
	log    *zap.Logger

	mu       sync.Mutex
	checked  bool
	fetching bool
	st       State
}

// New returns an Orchestrator in PhaseChecking.
func New(store *storage.SessionStore, status StatusFetcher, loc Location, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:  store,
		status: status,
		loc:    loc,
		log:    log,
		st:     State{Phase: PhaseChecking, Prefill: map[string]any{}},
	}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.st
	s.Prefill = maps.Clone(o.st.Prefill)
	return s
}

// Check runs the initial decision once; later calls return the current
// phase without side effects. A resume token in the page address wins over
// the stored session and is stripped from the address whatever the
// outcome.
func (o *Orchestrator) Check(ctx context.Context) Phase {
	o.mu.Lock()
	if o.checked {
		p := o.st.Phase
		o.mu.Unlock()
		return p
	}
	o.checked = true

	token := resumeToken(o.loc)
	if token == "" {
		defer o.mu.Unlock()
		if o.store.HasIncompleteForm() {
			o.st.Phase = PhaseAwaitingChoice
			o.st.DialogOpen = true
			return o.st.Phase
		}
		o.st.Phase = PhaseReady
		o.st.ActiveStep = 0
		return o.st.Phase
	}

	o.fetching = true
	o.mu.Unlock()

	o.log.Debug("resuming form from token")
	res := o.status.FetchFormStatus(ctx, token)
	stripResumeToken(o.loc)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.settle(token, res)
	return o.st.Phase
}

// Continue resumes the stored session after the user chose to.
func (o *Orchestrator) Continue(ctx context.Context) error {
	o.mu.Lock()
	if o.st.Phase != PhaseAwaitingChoice || o.fetching {
		o.mu.Unlock()
		return ErrNoChoicePending
	}
	o.st.DialogOpen = false

	sess, ok := o.store.GetSession()
	if !ok {
		o.st.Phase = PhaseReady
		o.st.ActiveStep = 0
		o.mu.Unlock()
		return nil
	}
	o.fetching = true
	o.mu.Unlock()

	res := o.status.FetchFormStatus(ctx, sess.SessionID)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.settle(sess.SessionID, res)
	return nil
}

// StartNew drops the stored session and starts at the first step.
func (o *Orchestrator) StartNew() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.st.Phase != PhaseAwaitingChoice || o.fetching {
		return ErrNoChoicePending
	}

	o.store.ClearSession()
	o.st = State{Phase: PhaseReady, Prefill: map[string]any{}}
	return nil
}

// Confirm records a step the backend confirmed. It is the only way the
// step pointer advances after the initial decision. Confirming the final
// step completes the flow and drops the stored session.
func (o *Orchestrator) Confirm(conf models.StepConfirmation) error {
	if conf.SessionID == "" || conf.CurrentStep < 0 {
		return ErrBadConfirmation
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.st.Phase != PhaseReady {
		return ErrNotReady
	}

	o.store.SaveSession(conf.SessionID, conf.CurrentStep)
	o.st.SessionID = conf.SessionID
	o.st.ActiveStep = conf.CurrentStep + 1
	o.st.Completed = conf.CurrentStep >= o.store.FinalStep()
	o.st.Failure = nil
	if o.st.Completed {
		o.store.ClearSession()
	}
	return nil
}

// Discard handles a backend rejection after the form became usable. A
// session the backend no longer knows is dropped and the flow restarts at
// the first step; other failures are only surfaced.
func (o *Orchestrator) Discard(f *gateway.Failure) {
	if f == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.st.Failure = f
	if f.Kind != gateway.KindSessionInvalid {
		return
	}

	o.log.Info("form session rejected mid-flow, starting over")
	o.store.ClearSession()
	o.st = State{Phase: PhaseReady, Prefill: map[string]any{}, Failure: f}
}

// settle applies a status result; callers hold o.mu. A completed
// submission leaves nothing to resume.
func (o *Orchestrator) settle(token string, res gateway.Result) {
	o.fetching = false
	o.st.Phase = PhaseReady
	o.st.DialogOpen = false

	if res.OK() {
		o.store.SaveSession(token, res.Status.CurrentStep)
		o.st.SessionID = token
		o.st.ActiveStep = res.Status.CurrentStep + 1
		o.st.Prefill = maps.Clone(res.Status.FormData)
		if o.st.Prefill == nil {
			o.st.Prefill = map[string]any{}
		}
		o.st.Completed = res.Status.CompletionStatus == models.StatusCompleted
		o.st.Failure = nil
		if o.st.Completed {
			o.store.ClearSession()
		}
		return
	}

	o.st.SessionID = ""
	o.st.ActiveStep = 0
	o.st.Prefill = map[string]any{}
	o.st.Failure = res.Failure

	if res.Failure != nil && res.Failure.Kind == gateway.KindSessionInvalid {
		o.log.Info("stored form session rejected by backend, clearing")
		o.store.ClearSession()
	}
}
