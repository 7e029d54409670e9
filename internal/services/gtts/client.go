// Package gtts wraps the free Google Translate text-to-speech endpoint.
//
// The endpoint caps each request at roughly one hundred characters, so long
// narration is split into chunks on whitespace and the per-chunk MP3 payloads
// are concatenated. MP3 frames are self-delimiting, which makes the naive
// concatenation safe for downstream decoding.
package gtts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
)

const (
	defaultBaseURL     = "https://translate.google.com"
	defaultHTTPTimeout = 30 * time.Second
	maxChunkLen        = 100
)

// Client wraps the Translate TTS endpoint.
type Client struct {
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

// WithBaseURL overrides the default endpoint base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a Translate TTS client. No credentials are required.
func NewClient(opts ...Option) *Client {
	client := &Client{
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

// Synthesize converts text to MP3 audio in the given language code.
func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("gtts synthesize: text required")
	}
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return nil, errors.New("gtts synthesize: language required")
	}

	var audio []byte
	for _, chunk := range SplitChunks(text, maxChunkLen) {
		part, err := c.fetchChunk(ctx, chunk, lang)
		if err != nil {
			return nil, err
		}
		audio = append(audio, part...)
	}
	if len(audio) == 0 {
		return nil, errors.New("gtts synthesize: empty audio")
	}
	return audio, nil
}

func (c *Client) fetchChunk(ctx context.Context, chunk, lang string) ([]byte, error) {
	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("client", "tw-ob")
	query.Set("tl", lang)
	query.Set("q", chunk)
	endpoint := c.baseURL + "/translate_tts?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("gtts synthesize: request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gtts synthesize: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gtts synthesize: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("gtts synthesize: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// SplitChunks breaks text into pieces of at most maxLen runes, preferring
// whitespace boundaries. A single word longer than maxLen is split hard.
func SplitChunks(text string, maxLen int) []string {
	if maxLen <= 0 {
		return []string{text}
	}
	words := strings.FieldsFunc(text, unicode.IsSpace)
	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}
	for _, word := range words {
		for len([]rune(word)) > maxLen {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:maxLen]))
			word = string(runes[maxLen:])
		}
		if current.Len() > 0 && len([]rune(current.String()))+1+len([]rune(word)) > maxLen {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	flush()
	return chunks
}
