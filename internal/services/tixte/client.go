// Package tixte wraps the Tixte file-hosting upload API.
//
// The transcription service only accepts audio by URL, so narration audio is
// pushed here first. Uploads return both a direct URL and a deletion URL; the
// caller is expected to hit the deletion URL once the hosted file has served
// its purpose.
package tixte

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.tixte.com"
	defaultHTTPTimeout = 60 * time.Second
)

// Client wraps the Tixte upload API.
type Client struct {
	apiKey     string
	domain     string
	baseURL    string
	httpClient *http.Client
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

// NewClient constructs a Tixte upload client bound to a destination domain.
func NewClient(apiKey, domain string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		domain:     strings.TrimSpace(domain),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Upload describes a hosted file.
type Upload struct {
	DirectURL   string
	DeletionURL string
}

type uploadResponse struct {
	Data struct {
		DirectURL   string `json:"direct_url"`
		DeletionURL string `json:"deletion_url"`
	} `json:"data"`
}

// UploadFile pushes the file at path to the hosting domain and returns its
// public URLs.
func (c *Client) UploadFile(ctx context.Context, path string) (Upload, error) {
	var empty Upload
	if c.apiKey == "" || c.domain == "" {
		return empty, errors.New("tixte upload: api key and domain required")
	}

	file, err := os.Open(path)
	if err != nil {
		return empty, fmt.Errorf("tixte upload: open file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	payload, err := json.Marshal(map[string]string{"domain": c.domain})
	if err != nil {
		return empty, fmt.Errorf("tixte upload: encode payload: %w", err)
	}
	if err := writer.WriteField("payload_json", string(payload)); err != nil {
		return empty, fmt.Errorf("tixte upload: write payload: %w", err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return empty, fmt.Errorf("tixte upload: create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return empty, fmt.Errorf("tixte upload: copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return empty, fmt.Errorf("tixte upload: finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/upload", &body)
	if err != nil {
		return empty, fmt.Errorf("tixte upload: request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("tixte upload: request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("tixte upload: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("tixte upload: http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded uploadResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return empty, fmt.Errorf("tixte upload: decode response: %w", err)
	}
	if strings.TrimSpace(decoded.Data.DirectURL) == "" {
		return empty, errors.New("tixte upload: direct url missing from response")
	}
	return Upload{
		DirectURL:   decoded.Data.DirectURL,
		DeletionURL: decoded.Data.DeletionURL,
	}, nil
}

// Delete hits a deletion URL returned by a previous upload.
func (c *Client) Delete(ctx context.Context, deletionURL string) error {
	deletionURL = strings.TrimSpace(deletionURL)
	if deletionURL == "" {
		return errors.New("tixte delete: url required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, deletionURL, nil)
	if err != nil {
		return fmt.Errorf("tixte delete: request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tixte delete: request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("tixte delete: http %d", resp.StatusCode)
	}
	return nil
}
