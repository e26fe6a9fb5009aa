// Package models defines the core data structures shared by the form
// client, the proxy server and the contact storage.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CompletionStatus reports whether the backend considers a submission done.
type CompletionStatus string

const (
	// StatusIncomplete marks a submission that still has steps left.
	StatusIncomplete CompletionStatus = "incomplete"
	// StatusCompleted marks a submission whose final step was confirmed.
	StatusCompleted CompletionStatus = "completed"
)

// FormStatusResponse is the authoritative snapshot of a submission as
// reported by the backend system of record.
type FormStatusResponse struct {
	// CurrentStep is the last step index the backend confirmed as complete.
	CurrentStep int `json:"current_step"`
	// CompletionStatus is "incomplete" or "completed".
	CompletionStatus CompletionStatus `json:"completion_status"`
	// FormData holds previously submitted field values, possibly partial.
	FormData map[string]any `json:"form_data"`
}

// StepSubmission is the payload sent to confirm one step of the flow.
type StepSubmission struct {
	// SessionID is empty for the first step; the backend issues one.
	SessionID string `json:"session_id,omitempty"`
	// Step is the index of the step being submitted.
	Step int `json:"step"`
	// Plan selects the free or paid sequence ("free" or "paid").
	Plan string `json:"plan,omitempty"`
	// Data carries the field values entered for this step.
	Data map[string]any `json:"data"`
}

// StepConfirmation is the backend's answer to a successful step submission.
type StepConfirmation struct {
	SessionID   string `json:"session_id"`
	CurrentStep int    `json:"current_step"`
}

// FieldError is a single entry of a normalized error body.
type FieldError struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIError is the normalized error body: {errors: [...], status_code}.
type APIError struct {
	Errors     []FieldError `json:"errors"`
	StatusCode int          `json:"status_code"`
}

// NewAPIError builds an APIError carrying a single message.
func NewAPIError(status int, message string) *APIError {
	return &APIError{
		Errors:     []FieldError{{Message: message}},
		StatusCode: status,
	}
}

// Error implements the error interface using the first message.
func (e *APIError) Error() string {
	if len(e.Errors) == 0 || e.Errors[0].Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Errors[0].Message
}

// FirstMessage returns the first error message, or "" when there is none.
func (e *APIError) FirstMessage() string {
	if e == nil || len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0].Message
}

// ParseAPIError decodes a {errors, status_code} body. When the body is
// missing or malformed it synthesizes one carrying status. A status_code
// absent from the body is filled with status.
func ParseAPIError(status int, body []byte) *APIError {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || len(apiErr.Errors) == 0 {
		return NewAPIError(status, fmt.Sprintf("Request failed with status %d", status))
	}
	if apiErr.StatusCode == 0 {
		apiErr.StatusCode = status
	}
	return &apiErr
}

// State is an entry of the states reference list.
type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// City is an entry of the cities reference list for one state.
type City struct {
	Name      string `json:"name"`
	StateCode string `json:"state_code"`
}

// Contact is a stored contact-form submission.
type Contact struct {
	// ID is the unique identifier of the submission.
	ID string `json:"id"`
	// Name of the person reaching out.
	Name string `json:"name"`
	// Email is required and used for replies.
	Email string `json:"email"`
	// Phone is optional.
	Phone string `json:"phone,omitempty"`
	// Message is the free-text body.
	Message string `json:"message"`
	// Date is the preferred contact date, normalized to YYYY-MM-DD.
	Date string `json:"date,omitempty"`
	// CreatedAt is set when the row is first stored.
	CreatedAt time.Time `json:"created_at"`
}
