package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/formresume/internal/cms"
	"github.com/atinyakov/formresume/internal/models"
	"github.com/atinyakov/formresume/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContactService stores contact-form submissions.
type ContactService interface {
	// Create validates, normalizes and stores c, filling its ID.
	Create(ctx context.Context, c *models.Contact) error
	// Update replaces the stored contact with c.ID.
	Update(ctx context.Context, c *models.Contact) error
}

// ContactHandler handles contact-form submissions.
type ContactHandler struct {
	ContactService ContactService
	Log            *zap.Logger
}

// Create handles POST /api/contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeFieldError(w, http.StatusBadRequest, "", "Invalid request body")
		return
	}
	c.ID = ""

	if err := h.ContactService.Create(r.Context(), &c); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": c.ID})
}

// Update handles PUT /api/contacts/{id}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	var c models.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeFieldError(w, http.StatusBadRequest, "", "Invalid request body")
		return
	}
	c.ID = chi.URLParam(r, "id")

	if err := h.ContactService.Update(r.Context(), &c); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContactHandler) fail(w http.ResponseWriter, err error) {
	var ve *cms.ValidationError
	switch {
	case errors.As(err, &ve):
		writeFieldError(w, http.StatusBadRequest, ve.Field, ve.Message)
	case errors.Is(err, service.ErrContactNotFound):
		writeFieldError(w, http.StatusNotFound, "id", "Contact not found")
	default:
		h.Log.Error("contact storage failed", zap.Error(err))
		writeAPIError(w, models.NewAPIError(http.StatusInternalServerError, msgInternal))
	}
}
