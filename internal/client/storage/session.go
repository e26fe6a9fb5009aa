package storage

import (
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// SessionStore remembers one in-progress submission. It is a fallback
// identity only: the backend status always wins over what is stored here.
// No method returns an error; storage failures are logged and dropped.
type SessionStore struct {
	kv        KV
	finalStep int
	log       *zap.Logger
}

// NewSessionStore returns a store whose valid step range is [1, finalStep].
// A finalStep below 1 selects DefaultFinalStep.
func NewSessionStore(kv KV, finalStep int, log *zap.Logger) *SessionStore {
	if finalStep < 1 {
		finalStep = DefaultFinalStep
	}
	return &SessionStore{kv: kv, finalStep: finalStep, log: log}
}

// FinalStep returns the last confirmable step index.
func (s *SessionStore) FinalStep() int {
	return s.finalStep
}

// SaveSession writes the session id and confirmed step. When the step
// cannot be written the previous id is put back, so an id is never paired
// with another session's step.
func (s *SessionStore) SaveSession(sessionID string, step int) {
	prevID, prevErr := s.kv.Get(keySessionID)

	if err := s.kv.Set(keySessionID, sessionID); err != nil {
		s.log.Warn("failed to save form session id", zap.Error(err))
		return
	}
	if err := s.kv.Set(keyCurrentStep, strconv.Itoa(step)); err != nil {
		s.log.Warn("failed to save form step", zap.Error(err))
		s.restoreID(prevID, prevErr)
	}
}

// restoreID puts back the id read before a failed save. An absent or
// unreadable previous id is removed rather than left mismatched.
func (s *SessionStore) restoreID(prevID string, prevErr error) {
	var err error
	if prevErr == nil {
		err = s.kv.Set(keySessionID, prevID)
	} else {
		err = s.kv.Remove(keySessionID)
	}
	if err != nil {
		s.log.Warn("failed to restore form session id", zap.Error(err))
	}
}

// GetSession returns the stored session when both keys are present, the
// id is non-empty and the step is an integer in [1, FinalStep].
func (s *SessionStore) GetSession() (Session, bool) {
	id, err := s.kv.Get(keySessionID)
	if err != nil {
		s.logReadError(err)
		return Session{}, false
	}
	raw, err := s.kv.Get(keyCurrentStep)
	if err != nil {
		s.logReadError(err)
		return Session{}, false
	}

	id = strings.TrimSpace(id)
	step, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id == "" || step < 1 || step > s.finalStep {
		s.log.Debug("ignoring invalid stored form session", zap.String("step", raw))
		return Session{}, false
	}
	return Session{SessionID: id, CurrentStep: step}, true
}

// ClearSession removes both keys.
func (s *SessionStore) ClearSession() {
	if err := s.kv.Remove(keySessionID); err != nil {
		s.log.Warn("failed to clear form session id", zap.Error(err))
	}
	if err := s.kv.Remove(keyCurrentStep); err != nil {
		s.log.Warn("failed to clear form step", zap.Error(err))
	}
}

// HasIncompleteForm reports whether a valid session exists that has not
// reached the final step.
func (s *SessionStore) HasIncompleteForm() bool {
	sess, ok := s.GetSession()
	return ok && sess.CurrentStep < s.finalStep
}

func (s *SessionStore) logReadError(err error) {
	if errors.Is(err, ErrKeyNotFound) {
		return
	}
	s.log.Warn("failed to read form session", zap.Error(err))
}
