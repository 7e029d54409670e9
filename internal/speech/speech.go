// Package speech turns a narration script into an MP3 file using one of the
// supported text-to-speech providers.
package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shortreel/internal/services"
)

// Supported provider identifiers.
const (
	ProviderGoogle     = "google"
	ProviderElevenLabs = "elevenlabs"
)

// DefaultProvider is used when no provider flag is supplied.
const DefaultProvider = ProviderGoogle

// GoogleSynthesizer produces speech from text in a given language. The gtts
// client satisfies this shape.
type GoogleSynthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// VoiceSynthesizer produces speech from text with a specific voice. The
// ElevenLabs client satisfies this shape.
type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Request describes a narration to synthesize.
type Request struct {
	Provider string
	Text     string
	// LanguageCode drives the Google provider's accent.
	LanguageCode string
	// VoiceID drives the ElevenLabs provider; resolved from the language
	// table when the caller does not override it.
	VoiceID string
}

// Synthesizer dispatches narration requests to the configured provider.
type Synthesizer struct {
	google     GoogleSynthesizer
	elevenlabs VoiceSynthesizer
}

// New builds a Synthesizer over the available provider clients.
func New(google GoogleSynthesizer, elevenlabs VoiceSynthesizer) *Synthesizer {
	return &Synthesizer{google: google, elevenlabs: elevenlabs}
}

// Providers lists the supported provider identifiers.
func Providers() []string {
	return []string{ProviderGoogle, ProviderElevenLabs}
}

// Synthesize produces narration audio and writes it to outputPath as MP3.
// Unknown provider identifiers fail before any request is made.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request, outputPath string) error {
	if strings.TrimSpace(req.Text) == "" {
		return services.Wrap(nil, "speech", "synthesize", "narration text is empty", nil)
	}

	var (
		audio []byte
		err   error
	)
	switch req.Provider {
	case ProviderGoogle:
		if s.google == nil {
			return services.Wrap(services.ErrConfiguration, "speech", "synthesize", "google tts backend is not configured", nil)
		}
		audio, err = s.google.Synthesize(ctx, req.Text, req.LanguageCode)
	case ProviderElevenLabs:
		if s.elevenlabs == nil {
			return services.Wrap(services.ErrConfiguration, "speech", "synthesize", "elevenlabs backend is not configured", nil)
		}
		audio, err = s.elevenlabs.Synthesize(ctx, req.Text, req.VoiceID)
	default:
		return services.Wrap(services.ErrUnsupportedBackend, "speech", "synthesize",
			fmt.Sprintf("unknown voice provider %q (supported: %s)", req.Provider, strings.Join(Providers(), ", ")), nil)
	}
	if err != nil {
		return services.Wrap(nil, "speech", "synthesize", fmt.Sprintf("%s request failed", req.Provider), err)
	}
	if len(audio) == 0 {
		return services.Wrap(nil, "speech", "synthesize", fmt.Sprintf("%s returned no audio", req.Provider), nil)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return services.Wrap(nil, "speech", "synthesize", "create output directory", err)
	}
	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		return services.Wrap(nil, "speech", "synthesize", "write narration audio", err)
	}
	return nil
}
