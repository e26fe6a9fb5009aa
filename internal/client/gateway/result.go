package gateway

import (
	"net/http"

	"github.com/atinyakov/formresume/internal/models"
)

// Kind classifies a failed gateway call.
type Kind int

const (
	// KindValidation means the call was rejected before any request.
	KindValidation Kind = iota + 1
	// KindSessionInvalid means the backend does not know the session (404)
	// or considers it unusable (422). The local session must be dropped.
	KindSessionInvalid
	// KindRemote is any other HTTP error answer.
	KindRemote
	// KindNetwork means no HTTP answer was received. The local session is
	// kept since the backend said nothing about it.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSessionInvalid:
		return "session_invalid"
	case KindRemote:
		return "remote"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgSessionExpired = "Your session has expired. Please start over."
	MsgNetwork        = "Network error. Please check your connection and try again."
	MsgGeneric        = "Something went wrong. Please try again."
	MsgTokenRequired  = "A session token is required."
)

// Failure describes why a call did not produce data.
type Failure struct {
	Kind    Kind
	Message string
	// StatusCode is the HTTP status, 0 for validation and network failures.
	StatusCode int
	// Field names the offending input when the backend reported one.
	Field string
}

// Error implements error so a Failure can flow through error-returning
// interfaces.
func (f *Failure) Error() string {
	return f.Kind.String() + ": " + f.Message
}

// Result is either Ok with Status set, or failed with Failure set.
type Result struct {
	Status  *models.FormStatusResponse
	Failure *Failure
}

// OK reports whether the call produced a status.
func (r Result) OK() bool {
	return r.Failure == nil && r.Status != nil
}

// StepResult is either Ok with Confirmation set, or failed with Failure set.
type StepResult struct {
	Confirmation *models.StepConfirmation
	Failure      *Failure
}

// OK reports whether the step was confirmed.
func (r StepResult) OK() bool {
	return r.Failure == nil && r.Confirmation != nil
}

// classify turns a normalized error body into a Failure. With fieldErrors
// set, a 422 that names a form field is a rejected input, not a rejected
// session.
func classify(apiErr *models.APIError, fieldErrors bool) *Failure {
	f := &Failure{StatusCode: apiErr.StatusCode}
	if len(apiErr.Errors) > 0 {
		f.Field = apiErr.Errors[0].Field
	}

	switch {
	case apiErr.StatusCode == http.StatusNotFound,
		apiErr.StatusCode == http.StatusUnprocessableEntity && !(fieldErrors && isInputField(f.Field)):
		f.Kind = KindSessionInvalid
		f.Message = MsgSessionExpired
	default:
		f.Kind = KindRemote
		f.Message = apiErr.FirstMessage()
		if f.Message == "" {
			f.Message = MsgGeneric
		}
	}
	return f
}

func isInputField(field string) bool {
	switch field {
	case "", "session", "session_id":
		return false
	}
	return true
}
