package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/formresume/internal/backend"
	"github.com/atinyakov/formresume/internal/models"
	"go.uber.org/zap"
)

// RefData serves the reference lists; refdata.Cache implements it.
type RefData interface {
	States(ctx context.Context) ([]models.State, error)
	Cities(ctx context.Context, state string) ([]models.City, error)
}

// RefDataHandler serves states and cities.
type RefDataHandler struct {
	RefData RefData
	Log     *zap.Logger
}

// States handles GET /api/states.
func (h *RefDataHandler) States(w http.ResponseWriter, r *http.Request) {
	states, err := h.RefData.States(r.Context())
	if err != nil {
		h.fail(w, "states", err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

// Cities handles GET /api/cities?state=<code>.
func (h *RefDataHandler) Cities(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		writeFieldError(w, http.StatusBadRequest, "state", "State is required")
		return
	}
	cities, err := h.RefData.Cities(r.Context(), state)
	if err != nil {
		h.fail(w, "cities", err)
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

func (h *RefDataHandler) fail(w http.ResponseWriter, kind string, err error) {
	var apiErr *models.APIError
	switch {
	case errors.Is(err, backend.ErrNotConfigured):
		h.Log.Error("reference data backend is not configured", zap.String("kind", kind))
		writeAPIError(w, models.NewAPIError(http.StatusInternalServerError, msgConfiguration))
	case errors.As(err, &apiErr):
		writeAPIError(w, apiErr)
	default:
		h.Log.Warn("reference data load failed", zap.String("kind", kind), zap.Error(err))
		writeAPIError(w, models.NewAPIError(http.StatusBadGateway, msgUnreachable))
	}
}
