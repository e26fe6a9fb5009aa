package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/atinyakov/formresume/internal/backend"
	"github.com/atinyakov/formresume/internal/models"
	handler "github.com/atinyakov/formresume/internal/server/handler/http"
	"go.uber.org/zap"
)

type fakeRefData struct {
	gotState string
	states   []models.State
	cities   []models.City
	err      error
}

func (f *fakeRefData) States(context.Context) ([]models.State, error) {
	return f.states, f.err
}

func (f *fakeRefData) Cities(_ context.Context, state string) ([]models.City, error) {
	f.gotState = state
	return f.cities, f.err
}

func TestRefDataHandler_States(t *testing.T) {
	fake := &fakeRefData{states: []models.State{{Code: "CA", Name: "California"}}}
	h := &handler.RefDataHandler{RefData: fake, Log: zap.NewNop()}
	w := httptest.NewRecorder()

	h.States(w, httptest.NewRequest(http.MethodGet, "/api/states", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	var got []models.State
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, fake.states) {
		t.Errorf("states = %v; want %v", got, fake.states)
	}
}

func TestRefDataHandler_Cities(t *testing.T) {
	fake := &fakeRefData{cities: []models.City{{Name: "Albany", StateCode: "NY"}}}
	h := &handler.RefDataHandler{RefData: fake, Log: zap.NewNop()}
	w := httptest.NewRecorder()

	h.Cities(w, httptest.NewRequest(http.MethodGet, "/api/cities?state=NY", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if fake.gotState != "NY" {
		t.Errorf("state = %q; want NY", fake.gotState)
	}
}

func TestRefDataHandler_CitiesMissingState(t *testing.T) {
	h := &handler.RefDataHandler{RefData: &fakeRefData{}, Log: zap.NewNop()}
	w := httptest.NewRecorder()

	h.Cities(w, httptest.NewRequest(http.MethodGet, "/api/cities", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
	if got := decodeAPIError(t, w).Errors[0].Field; got != "state" {
		t.Errorf("field = %q; want state", got)
	}
}

func TestRefDataHandler_Errors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{backend.ErrNotConfigured, http.StatusInternalServerError},
		{models.NewAPIError(http.StatusServiceUnavailable, "maintenance"), http.StatusServiceUnavailable},
		{errors.New("timeout"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		h := &handler.RefDataHandler{RefData: &fakeRefData{err: tt.err}, Log: zap.NewNop()}
		w := httptest.NewRecorder()

		h.States(w, httptest.NewRequest(http.MethodGet, "/api/states", nil))

		if w.Code != tt.code {
			t.Errorf("%v: status = %d; want %d", tt.err, w.Code, tt.code)
		}
		decodeAPIError(t, w)
	}
}
