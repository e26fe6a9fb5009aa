package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/formresume/internal/cms"
	"github.com/atinyakov/formresume/internal/models"
	handler "github.com/atinyakov/formresume/internal/server/handler/http"
	"github.com/atinyakov/formresume/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// fakeContactService records the contact it was given.
type fakeContactService struct {
	got *models.Contact
	err error
}

func (f *fakeContactService) Create(_ context.Context, c *models.Contact) error {
	f.got = c
	if f.err != nil {
		return f.err
	}
	c.ID = "c1"
	return nil
}

func (f *fakeContactService) Update(_ context.Context, c *models.Contact) error {
	f.got = c
	return f.err
}

func contactRouter(h *handler.ContactHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/contacts", h.Create)
	r.Put("/api/contacts/{id}", h.Update)
	return r
}

func TestContactHandler_Create(t *testing.T) {
	fake := &fakeContactService{}
	h := &handler.ContactHandler{ContactService: fake, Log: zap.NewNop()}
	w := httptest.NewRecorder()
	body := `{"id":"forged","name":"Ann","email":"ann@example.com","date":"01/02/2025"}`

	contactRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/contacts", bytes.NewBufferString(body)))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusCreated)
	}
	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got["id"] != "c1" {
		t.Errorf("id = %q; want c1", got["id"])
	}
	if fake.got.Name != "Ann" {
		t.Errorf("name = %q; want Ann", fake.got.Name)
	}
}

func TestContactHandler_Update(t *testing.T) {
	fake := &fakeContactService{}
	h := &handler.ContactHandler{ContactService: fake, Log: zap.NewNop()}
	w := httptest.NewRecorder()

	contactRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/contacts/c7",
		bytes.NewBufferString(`{"name":"Ann","email":"ann@example.com"}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if fake.got.ID != "c7" {
		t.Errorf("id = %q; want c7", fake.got.ID)
	}
}

func TestContactHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
		err    error
		code   int
		field  string
	}{
		{"bad json", http.MethodPost, "/api/contacts", "{", nil, http.StatusBadRequest, ""},
		{"validation", http.MethodPost, "/api/contacts", `{}`,
			&cms.ValidationError{Field: "date", Message: "date is invalid"}, http.StatusBadRequest, "date"},
		{"not found", http.MethodPut, "/api/contacts/nope", `{}`,
			service.ErrContactNotFound, http.StatusNotFound, "id"},
		{"storage", http.MethodPost, "/api/contacts", `{}`,
			errors.New("db down"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &handler.ContactHandler{ContactService: &fakeContactService{err: tt.err}, Log: zap.NewNop()}
			w := httptest.NewRecorder()

			contactRouter(h).ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, bytes.NewBufferString(tt.body)))

			if w.Code != tt.code {
				t.Fatalf("status = %d; want %d", w.Code, tt.code)
			}
			if got := decodeAPIError(t, w).Errors[0].Field; got != tt.field {
				t.Errorf("field = %q; want %q", got, tt.field)
			}
		})
	}
}
