// Package gateway is the client of the form proxy. Calls never return Go
// errors for backend problems; they return tagged results and record the
// last failure as observable state.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/formresume/internal/models"
	"go.uber.org/zap"
)

// State is the loading and error state observable by the caller.
type State struct {
	Loading bool
	Err     *Failure
}

// Gateway calls the form proxy over HTTP.
type Gateway struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger

	mu       sync.Mutex
	inFlight int
	lastErr  *Failure
}

// New returns a Gateway for the proxy at baseURL.
func New(baseURL string, httpClient *http.Client, log *zap.Logger) *Gateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

// State returns the current loading flag and the last failure, if the
// most recent call failed.
func (g *Gateway) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return State{Loading: g.inFlight > 0, Err: g.lastErr}
}

// FetchFormStatus fetches the authoritative status of the session or
// resume token.
func (g *Gateway) FetchFormStatus(ctx context.Context, token string) Result {
	token = strings.TrimSpace(token)
	if token == "" {
		f := &Failure{Kind: KindValidation, Message: MsgTokenRequired, Field: "session"}
		g.setErr(f)
		return Result{Failure: f}
	}

	var status models.FormStatusResponse
	q := url.Values{"session": {token}}
	if f := g.call(ctx, http.MethodGet, "/api/form-status?"+q.Encode(), nil, &status, false); f != nil {
		return Result{Failure: f}
	}
	if status.FormData == nil {
		status.FormData = map[string]any{}
	}
	return Result{Status: &status}
}

// SubmitStep posts one step; the confirmation carries the session id and
// the step the backend now considers complete.
func (g *Gateway) SubmitStep(ctx context.Context, sub models.StepSubmission) StepResult {
	var conf models.StepConfirmation
	if f := g.call(ctx, http.MethodPost, "/api/form-step", sub, &conf, true); f != nil {
		return StepResult{Failure: f}
	}
	return StepResult{Confirmation: &conf}
}

// States fetches the states list. The error, when non-nil, is a *Failure.
func (g *Gateway) States(ctx context.Context) ([]models.State, error) {
	var out []models.State
	if f := g.call(ctx, http.MethodGet, "/api/states", nil, &out, false); f != nil {
		return nil, f
	}
	return out, nil
}

// Cities fetches the cities of state. The error, when non-nil, is a
// *Failure.
func (g *Gateway) Cities(ctx context.Context, state string) ([]models.City, error) {
	var out []models.City
	q := url.Values{"state": {state}}
	if f := g.call(ctx, http.MethodGet, "/api/cities?"+q.Encode(), nil, &out, false); f != nil {
		return nil, f
	}
	return out, nil
}

// call performs one request. fieldErrors lets a 422 naming a form field
// count as rejected input; only step submissions carry form fields.
func (g *Gateway) call(ctx context.Context, method, path string, body, out any, fieldErrors bool) *Failure {
	g.begin()
	f := g.do(ctx, method, path, body, out, fieldErrors)
	g.end(f)
	if f != nil {
		g.log.Debug("gateway call failed",
			zap.String("path", strings.SplitN(path, "?", 2)[0]),
			zap.Stringer("kind", f.Kind),
			zap.Int("status", f.StatusCode),
		)
	}
	return f
}

func (g *Gateway) do(ctx context.Context, method, path string, body, out any, fieldErrors bool) *Failure {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Failure{Kind: KindValidation, Message: MsgGeneric}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return &Failure{Kind: KindValidation, Message: MsgGeneric}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return &Failure{Kind: KindNetwork, Message: MsgNetwork}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Failure{Kind: KindNetwork, Message: MsgNetwork, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(models.ParseAPIError(resp.StatusCode, data), fieldErrors)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Failure{Kind: KindRemote, Message: MsgGeneric, StatusCode: resp.StatusCode}
	}
	return nil
}

func (g *Gateway) begin() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight++
	g.lastErr = nil
}

func (g *Gateway) end(f *Failure) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight--
	g.lastErr = f
}

func (g *Gateway) setErr(f *Failure) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastErr = f
}
