// Package transcribe produces word-level timestamps for narration audio.
//
// The hosted whisper model only accepts audio by URL, so the narration file is
// uploaded to a file host first, transcribed, and the hosted copy deleted once
// the timestamps are in hand.
package transcribe

import (
	"context"
	"encoding/json"
	"log/slog"

	"shortreel/internal/logging"
	"shortreel/internal/services"
	"shortreel/internal/services/tixte"
)

// whisperVersion pins the hosted incredibly-fast-whisper release.
const whisperVersion = "3ab86df6c8f54c11309d4d1f930ac292bad43ace52d10c80d87eb258b3c9f79c"

// Chunk is a single spoken word with its time window in seconds.
type Chunk struct {
	Start float64
	End   float64
	Text  string
}

// Uploader hosts a local file and returns its public URLs. The Tixte client
// satisfies this shape.
type Uploader interface {
	UploadFile(ctx context.Context, path string) (tixte.Upload, error)
	Delete(ctx context.Context, deletionURL string) error
}

// VersionRunner runs a pinned hosted model version. The Replicate client
// satisfies this shape.
type VersionRunner interface {
	RunVersion(ctx context.Context, version string, input map[string]any) (json.RawMessage, error)
}

// Transcriber uploads narration audio and asks whisper for word timestamps.
type Transcriber struct {
	uploader Uploader
	runner   VersionRunner
	logger   *slog.Logger
}

// New builds a Transcriber over an uploader and a model runner.
func New(uploader Uploader, runner VersionRunner, logger *slog.Logger) *Transcriber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transcriber{uploader: uploader, runner: runner, logger: logger}
}

type whisperOutput struct {
	Chunks []struct {
		Text      string     `json:"text"`
		Timestamp []*float64 `json:"timestamp"`
	} `json:"chunks"`
}

// Transcribe returns the word-level chunks for the audio file at path.
// language is the spoken name of the narration language ("english",
// "italian"). The hosted copy of the audio is removed best-effort afterwards.
func (t *Transcriber) Transcribe(ctx context.Context, path, language string) ([]Chunk, error) {
	if t.uploader == nil || t.runner == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "transcribe", "upload and transcription backends are required", nil)
	}

	upload, err := t.uploader.UploadFile(ctx, path)
	if err != nil {
		return nil, services.Wrap(services.ErrUpload, "transcribe", "upload", "host narration audio", err)
	}
	t.logger.Debug("narration audio hosted", logging.String(logging.FieldComponent, "transcribe"), logging.String("url", upload.DirectURL))
	defer func() {
		if upload.DeletionURL == "" {
			return
		}
		if err := t.uploader.Delete(context.WithoutCancel(ctx), upload.DeletionURL); err != nil {
			t.logger.Warn("hosted audio cleanup failed", logging.String(logging.FieldComponent, "transcribe"), logging.Error(err))
		}
	}()

	raw, err := t.runner.RunVersion(ctx, whisperVersion, map[string]any{
		"audio":     upload.DirectURL,
		"language":  language,
		"timestamp": "word",
	})
	if err != nil {
		return nil, services.Wrap(nil, "transcribe", "transcribe", "whisper request failed", err)
	}

	var output whisperOutput
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, services.Wrap(services.ErrParse, "transcribe", "transcribe", "decode whisper output", err)
	}

	chunks := make([]Chunk, 0, len(output.Chunks))
	for _, c := range output.Chunks {
		// Whisper occasionally emits a null end timestamp on the final
		// word; such chunks carry no usable window.
		if len(c.Timestamp) < 2 || c.Timestamp[0] == nil || c.Timestamp[1] == nil {
			continue
		}
		chunks = append(chunks, Chunk{
			Start: *c.Timestamp[0],
			End:   *c.Timestamp[1],
			Text:  c.Text,
		})
	}
	return chunks, nil
}
