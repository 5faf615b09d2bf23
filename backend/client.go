// Package backend talks to the AION-R HTTP API on behalf of the MCP tools.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"aionr2/config"
	"aionr2/logging"
	"aionr2/validate"
)

const (
	inferPath   = "/api/v1/infer"
	analyzePath = "/api/v1/analyze"
	modelsPath  = "/api/v1/models"

	maxResponseBytes = 32 << 20
)

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %s: %s", e.Status, e.Body)
}

// loggingTransport wraps an http.RoundTripper to log requests.
type loggingTransport struct {
	transport http.RoundTripper
	logger    *slog.Logger
}

// RoundTrip logs the request and delegates to the wrapped transport.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.transport.RoundTrip(req)
	attrs := []any{"method", req.Method, "url", req.URL.String(), "duration", time.Since(start)}
	if err != nil {
		t.logger.Debug("API request failed", append(attrs, "error", err)...)
		return nil, err
	}
	t.logger.Debug("API request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}

// Client implements mcp.Gateway over HTTP.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// NewClient builds a client for cfg. A non-empty key is sent as a bearer token.
func NewClient(cfg config.API, userAgent string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := validate.ValidateBaseURL(cfg.URL); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultAPITimeout
	}

	var base http.RoundTripper = http.DefaultTransport
	if cfg.Key != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Key})
		base = &oauth2.Transport{Source: ts, Base: http.DefaultTransport}
	}

	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		userAgent: userAgent,
		http: &http.Client{
			Transport: &loggingTransport{transport: base, logger: logger},
			Timeout:   timeout,
		},
		logger: logger,
	}, nil
}

type inferRequest struct {
	Model  string          `json:"model"`
	Prompt string          `json:"prompt"`
	Params json.RawMessage `json:"params,omitempty"`
}

type analyzeRequest struct {
	Data json.RawMessage `json:"data"`
	Ops  json.RawMessage `json:"ops"`
}

// RunInference posts a prompt to the inference endpoint.
func (c *Client) RunInference(ctx context.Context, model, prompt string, params json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, inferPath, inferRequest{Model: model, Prompt: prompt, Params: params})
}

// DataAnalysis posts a dataset and operation list to the analysis endpoint.
func (c *Client) DataAnalysis(ctx context.Context, data, ops json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, analyzePath, analyzeRequest{Data: data, Ops: ops})
}

// ListModels fetches the model catalog.
func (c *Client) ListModels(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, modelsPath, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(raw)}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, errors.New("API response is not valid JSON")
	}
	return json.RawMessage(raw), nil
}
