package http

import (
	"encoding/json"
	"net/http"

	"github.com/atinyakov/formresume/internal/models"
)

const (
	msgConfiguration = "Service configuration error"
	msgUnreachable   = "Unable to reach the form service"
	msgInternal      = "Internal server error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAPIError writes e with its own status code. Codes outside the error
// range are reported as 502 since they came from a misbehaving backend.
func writeAPIError(w http.ResponseWriter, e *models.APIError) {
	status := e.StatusCode
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
		e.StatusCode = status
	}
	writeJSON(w, status, e)
}

func writeFieldError(w http.ResponseWriter, status int, field, message string) {
	writeJSON(w, status, &models.APIError{
		Errors:     []models.FieldError{{Message: message, Field: field}},
		StatusCode: status,
	})
}
