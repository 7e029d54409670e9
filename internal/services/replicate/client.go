// Package replicate wraps the Replicate predictions API.
//
// Two entry points are exposed: RunModel for official models addressed as
// owner/name, and RunVersion for community models addressed by version hash.
// Both create a prediction and block until it reaches a terminal status,
// honouring context cancellation between polls.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.replicate.com/v1"
	defaultHTTPTimeout = 60 * time.Second
	defaultPollEvery   = 2 * time.Second
)

// Client wraps the Replicate predictions API.
type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	pollEvery  time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithPollInterval overrides the delay between status polls.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollEvery = interval
		}
	}
}

// NewClient constructs a Replicate API client.
func NewClient(apiToken string, opts ...Option) *Client {
	client := &Client{
		apiToken:   strings.TrimSpace(apiToken),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		pollEvery:  defaultPollEvery,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Prediction mirrors the fields of a Replicate prediction this pipeline needs.
type Prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  *string         `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// RunModel creates a prediction against an official model (owner/name) and
// waits for its output.
func (c *Client) RunModel(ctx context.Context, model string, input map[string]any) (json.RawMessage, error) {
	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		return nil, errors.New("replicate run: model required")
	}
	endpoint := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model)
	return c.createAndWait(ctx, endpoint, map[string]any{"input": input})
}

// RunVersion creates a prediction against a model version hash and waits for
// its output.
func (c *Client) RunVersion(ctx context.Context, version string, input map[string]any) (json.RawMessage, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, errors.New("replicate run: version required")
	}
	endpoint := c.baseURL + "/predictions"
	return c.createAndWait(ctx, endpoint, map[string]any{"version": version, "input": input})
}

func (c *Client) createAndWait(ctx context.Context, endpoint string, payload map[string]any) (json.RawMessage, error) {
	if c.apiToken == "" {
		return nil, errors.New("replicate run: api token required")
	}
	prediction, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}
	for !terminal(prediction.Status) {
		if prediction.URLs.Get == "" {
			return nil, fmt.Errorf("replicate run: prediction %s has no poll url", prediction.ID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollEvery):
		}
		prediction, err = c.do(ctx, http.MethodGet, prediction.URLs.Get, nil)
		if err != nil {
			return nil, err
		}
	}
	if prediction.Status != "succeeded" {
		detail := prediction.Status
		if prediction.Error != nil && strings.TrimSpace(*prediction.Error) != "" {
			detail = fmt.Sprintf("%s: %s", prediction.Status, strings.TrimSpace(*prediction.Error))
		}
		return nil, fmt.Errorf("replicate run: prediction %s %s", prediction.ID, detail)
	}
	return prediction.Output, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload map[string]any) (Prediction, error) {
	var empty Prediction
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return empty, fmt.Errorf("replicate run: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return empty, fmt.Errorf("replicate run: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		// Let quick predictions return synchronously instead of polling.
		req.Header.Set("Prefer", "wait")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("replicate run: request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("replicate run: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("replicate run: http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var prediction Prediction
	if err := json.Unmarshal(raw, &prediction); err != nil {
		return empty, fmt.Errorf("replicate run: decode response: %w", err)
	}
	return prediction, nil
}

func terminal(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	default:
		return false
	}
}

// JoinStringOutput flattens a prediction output that is either a single JSON
// string or an array of string fragments (the shape streamed language models
// produce) into one string.
func JoinStringOutput(output json.RawMessage) (string, error) {
	if len(output) == 0 {
		return "", errors.New("replicate output: empty")
	}
	var single string
	if err := json.Unmarshal(output, &single); err == nil {
		return single, nil
	}
	var fragments []string
	if err := json.Unmarshal(output, &fragments); err != nil {
		return "", fmt.Errorf("replicate output: unexpected shape: %w", err)
	}
	return strings.Join(fragments, ""), nil
}
