// Package gemini wraps the Gemini generative API for narration summarization.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-1.5-flash"

// Client calls the Gemini API with a fixed generation profile.
type Client struct {
	apiKey string
	model  string
}

// NewClient constructs a Gemini client.
func NewClient(apiKey string) *Client {
	return &Client{apiKey: strings.TrimSpace(apiKey), model: defaultModel}
}

// Summarize generates a narration summary of text steered by systemPrompt.
func (c *Client) Summarize(ctx context.Context, systemPrompt, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("gemini summarize: text required")
	}
	if c.apiKey == "" {
		return "", errors.New("gemini summarize: api key required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("gemini summarize: create client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](1),
		TopP:            genai.Ptr[float32](0.95),
		TopK:            genai.Ptr[float32](40),
		MaxOutputTokens: 16384,
	}
	if prompt := strings.TrimSpace(systemPrompt); prompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(prompt, genai.RoleUser)
	}

	result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(text), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini summarize: generate content: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("gemini summarize: empty response")
	}

	var builder strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			builder.WriteString(part.Text)
		}
	}
	summary := strings.TrimSpace(builder.String())
	if summary == "" {
		return "", errors.New("gemini summarize: empty content")
	}
	return summary, nil
}
