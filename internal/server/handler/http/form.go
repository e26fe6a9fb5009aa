// Package http provides the HTTP handlers of the form proxy: form status
// and step submission forwarded to the admin backend, reference data, and
// contact-form storage.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/formresume/internal/backend"
	"github.com/atinyakov/formresume/internal/metrics"
	"github.com/atinyakov/formresume/internal/models"
	"github.com/atinyakov/formresume/internal/steps"
	"go.uber.org/zap"
)

// FormBackend is the admin backend as seen by the form handlers.
type FormBackend interface {
	// FormStatus returns the authoritative status of a session. Backend
	// rejections are returned as *models.APIError.
	FormStatus(ctx context.Context, session string) (*models.FormStatusResponse, error)
	// SubmitStep forwards one step and returns the backend confirmation.
	SubmitStep(ctx context.Context, sub models.StepSubmission) (*models.StepConfirmation, error)
}

// FormHandler proxies the multi-step form endpoints to the backend.
type FormHandler struct {
	Backend FormBackend
	Log     *zap.Logger
}

// Status handles GET /api/form-status?session=<token>.
func (h *FormHandler) Status(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if session == "" {
		metrics.GatewayRequestsTotal.WithLabelValues("form_status", "bad_request").Inc()
		writeFieldError(w, http.StatusBadRequest, "session", "Session token is required")
		return
	}

	status, err := h.Backend.FormStatus(r.Context(), session)
	if err != nil {
		h.relayError(w, "form_status", err)
		return
	}
	if status.FormData == nil {
		status.FormData = map[string]any{}
	}

	metrics.GatewayRequestsTotal.WithLabelValues("form_status", "ok").Inc()
	writeJSON(w, http.StatusOK, status)
}

// SubmitStep handles POST /api/form-step. The body is a StepSubmission;
// every step after the first must carry the session id issued by the
// backend.
func (h *FormHandler) SubmitStep(w http.ResponseWriter, r *http.Request) {
	var sub models.StepSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues("form_step", "bad_request").Inc()
		writeFieldError(w, http.StatusBadRequest, "", "Invalid request body")
		return
	}
	if field, msg, ok := validateSubmission(sub); !ok {
		metrics.GatewayRequestsTotal.WithLabelValues("form_step", "bad_request").Inc()
		writeFieldError(w, http.StatusBadRequest, field, msg)
		return
	}
	if sub.Data == nil {
		sub.Data = map[string]any{}
	}

	conf, err := h.Backend.SubmitStep(r.Context(), sub)
	if err != nil {
		h.relayError(w, "form_step", err)
		return
	}

	metrics.GatewayRequestsTotal.WithLabelValues("form_step", "ok").Inc()
	writeJSON(w, http.StatusOK, conf)
}

func validateSubmission(sub models.StepSubmission) (field, msg string, ok bool) {
	var paid bool
	switch sub.Plan {
	case "", "free":
	case "paid":
		paid = true
	default:
		return "plan", "Plan must be free or paid", false
	}
	if sub.Step < 0 || sub.Step >= steps.Total(paid) {
		return "step", "Step is out of range", false
	}
	if sub.Step > int(steps.Email) && sub.SessionID == "" {
		return "session_id", "Session id is required after the first step", false
	}
	return "", "", true
}

// relayError maps a backend failure onto the normalized error body.
func (h *FormHandler) relayError(w http.ResponseWriter, route string, err error) {
	var apiErr *models.APIError
	switch {
	case errors.Is(err, backend.ErrNotConfigured):
		metrics.GatewayRequestsTotal.WithLabelValues(route, "misconfigured").Inc()
		h.Log.Error("form backend is not configured", zap.String("route", route))
		writeAPIError(w, models.NewAPIError(http.StatusInternalServerError, msgConfiguration))
	case errors.As(err, &apiErr):
		outcome := "remote_error"
		if apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusUnprocessableEntity {
			outcome = "session_invalid"
		}
		metrics.GatewayRequestsTotal.WithLabelValues(route, outcome).Inc()
		h.Log.Info("form backend rejected request",
			zap.String("route", route),
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.FirstMessage()),
		)
		writeAPIError(w, apiErr)
	default:
		metrics.GatewayRequestsTotal.WithLabelValues(route, "unreachable").Inc()
		h.Log.Warn("form backend unreachable", zap.String("route", route), zap.Error(err))
		writeAPIError(w, models.NewAPIError(http.StatusBadGateway, msgUnreachable))
	}
}
