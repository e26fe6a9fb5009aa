package storage

// Session is the locally remembered pointer into a backend submission.
type Session struct {
	// SessionID is the opaque token issued by the backend.
	SessionID string
	// CurrentStep is the last step the backend confirmed.
	CurrentStep int
}

const (
	keySessionID   = "formSessionId"
	keyCurrentStep = "formCurrentStep"

	// DefaultFinalStep is the last confirmable step of the contact-form
	// flow; stored steps are valid in [1, DefaultFinalStep].
	DefaultFinalStep = 3
)
