// Package summarize condenses extracted text into a short narration script
// using one of the supported language models.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shortreel/internal/services"
	"shortreel/internal/services/replicate"
)

// Supported model identifiers.
const (
	ModelDeepSeek = "deepseek-chat"
	ModelLlama    = "llama-3.1"
	ModelGemini   = "gemini-1.5-flash"
)

// DefaultModel is used when no model flag is supplied.
const DefaultModel = ModelDeepSeek

// llamaModel is the Replicate-hosted model identifier backing ModelLlama.
const llamaModel = "meta/meta-llama-3.1-405b-instruct"

// Chatter produces a completion from a system prompt and user text. Both the
// DeepSeek and Gemini clients satisfy this shape.
type Chatter interface {
	Summarize(ctx context.Context, systemPrompt, text string) (string, error)
}

// PromptRunner runs a named hosted model against a free-form input map. The
// Replicate client satisfies this shape.
type PromptRunner interface {
	RunModel(ctx context.Context, model string, input map[string]any) (json.RawMessage, error)
}

// Summarizer dispatches summarization requests to the configured backend.
// Clients for backends without credentials may be nil; selecting one then
// yields a configuration error instead of a network call.
type Summarizer struct {
	deepseek Chatter
	gemini   Chatter
	llama    PromptRunner
}

// New builds a Summarizer over the available backend clients.
func New(deepseek, gemini Chatter, llama PromptRunner) *Summarizer {
	return &Summarizer{deepseek: deepseek, gemini: gemini, llama: llama}
}

// Models lists the supported model identifiers.
func Models() []string {
	return []string{ModelDeepSeek, ModelLlama, ModelGemini}
}

// Summarize condenses text with the chosen model and returns a cleaned
// narration script. Unknown model identifiers fail before any request is made.
func (s *Summarizer) Summarize(ctx context.Context, model, systemPrompt, text string) (string, error) {
	var (
		result string
		err    error
	)
	switch model {
	case ModelDeepSeek:
		if s.deepseek == nil {
			return "", services.Wrap(services.ErrConfiguration, "summarize", "summarize", "deepseek backend is not configured", nil)
		}
		result, err = s.deepseek.Summarize(ctx, systemPrompt, text)
	case ModelGemini:
		if s.gemini == nil {
			return "", services.Wrap(services.ErrConfiguration, "summarize", "summarize", "gemini backend is not configured", nil)
		}
		result, err = s.gemini.Summarize(ctx, systemPrompt, text)
	case ModelLlama:
		if s.llama == nil {
			return "", services.Wrap(services.ErrConfiguration, "summarize", "summarize", "replicate backend is not configured", nil)
		}
		var raw json.RawMessage
		raw, err = s.llama.RunModel(ctx, llamaModel, map[string]any{
			"prompt":     systemPrompt + "\n\n" + text,
			"max_tokens": 4096,
		})
		if err == nil {
			result, err = replicate.JoinStringOutput(raw)
		}
	default:
		return "", services.Wrap(services.ErrUnsupportedBackend, "summarize", "summarize",
			fmt.Sprintf("unknown model %q (supported: %s)", model, strings.Join(Models(), ", ")), nil)
	}
	if err != nil {
		return "", services.Wrap(nil, "summarize", "summarize", fmt.Sprintf("%s request failed", model), err)
	}
	return Clean(result), nil
}

// Clean strips markdown heading and emphasis markers that models tend to emit
// even when asked for plain text, since they would otherwise be read aloud.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "#", "")
	text = strings.ReplaceAll(text, "*", "")
	return strings.TrimSpace(text)
}
