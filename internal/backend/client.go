// Package backend is the server-side client of the admin backend that owns
// form sessions and reference data.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atinyakov/formresume/internal/models"
)

// ErrNotConfigured is returned when no backend URL was provided.
var ErrNotConfigured = errors.New("backend URL is not configured")

// Client calls the admin backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for baseURL. An empty baseURL yields a client
// whose every call fails with ErrNotConfigured.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// FormStatus fetches the status of the submission identified by session.
// Non-2xx answers are returned as *models.APIError.
func (c *Client) FormStatus(ctx context.Context, session string) (*models.FormStatusResponse, error) {
	var out models.FormStatusResponse
	q := url.Values{"session": {session}}
	if err := c.do(ctx, http.MethodGet, "/api/form/status?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitStep forwards one step of the flow and returns the confirmation.
func (c *Client) SubmitStep(ctx context.Context, sub models.StepSubmission) (*models.StepConfirmation, error) {
	var out models.StepConfirmation
	if err := c.do(ctx, http.MethodPost, "/api/form/step", sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// States fetches the states reference list.
func (c *Client) States(ctx context.Context) ([]models.State, error) {
	var out []models.State
	if err := c.do(ctx, http.MethodGet, "/api/states", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cities fetches the cities of one state.
func (c *Client) Cities(ctx context.Context, state string) ([]models.City, error) {
	var out []models.City
	q := url.Values{"state": {state}}
	if err := c.do(ctx, http.MethodGet, "/api/cities?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ParseAPIError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}
