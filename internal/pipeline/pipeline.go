// Package pipeline orchestrates the end-to-end short generation run:
// text extraction, optional summarization, narration synthesis, background
// conditioning, optional word-level captions, and the final mux.
//
// Every step works inside a per-run scratch directory that is removed when
// the run finishes, whatever the outcome. Only the finished short lands at
// the requested output path; a failed mux leaves nothing behind.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"shortreel/internal/config"
	"shortreel/internal/fileutil"
	"shortreel/internal/language"
	"shortreel/internal/logging"
	"shortreel/internal/media"
	"shortreel/internal/media/ffprobe"
	"shortreel/internal/services"
	"shortreel/internal/speech"
	"shortreel/internal/textsource"
	"shortreel/internal/transcribe"
)

// Summarizer condenses text into a narration script.
type Summarizer interface {
	Summarize(ctx context.Context, model, systemPrompt, text string) (string, error)
}

// Synthesizer produces narration audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req speech.Request, outputPath string) error
}

// Transcriber produces word-level timestamps for narration audio.
type Transcriber interface {
	Transcribe(ctx context.Context, path, spokenLanguage string) ([]transcribe.Chunk, error)
}

// CaptionRenderer rasterizes transcription chunks into overlay images.
type CaptionRenderer interface {
	Render(chunks []transcribe.Chunk, videoWidth int, dir string) ([]media.Overlay, error)
}

// MediaService conditions background assets and renders the final short.
type MediaService interface {
	Probe(ctx context.Context, path string) (ffprobe.Result, error)
	DurationSeconds(ctx context.Context, path string) (float64, error)
	ConditionVideo(ctx context.Context, source, dest string, duration float64) error
	ConditionAudio(ctx context.Context, source, dest string, duration, volume float64) error
	Mux(ctx context.Context, spec media.MuxSpec) error
}

// Components bundles the services a pipeline run depends on. Captions may be
// nil when subtitles are disabled.
type Components struct {
	Summarizer  Summarizer
	Synthesizer Synthesizer
	Transcriber Transcriber
	Captions    CaptionRenderer
	Media       MediaService
}

// Request describes a single generation run.
type Request struct {
	InputPath  string
	OutputPath string
	// VideoPath and AudioPath override the random pick from the asset
	// pools when set.
	VideoPath string
	AudioPath string

	Subtitles bool
	Summarize bool

	Model         string
	VoiceProvider string
	// VoiceID overrides the language's default ElevenLabs voice.
	VoiceID  string
	Volume   float64
	Language string
}

// Pipeline runs generation requests.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	components Components
}

// New builds a pipeline over the given configuration and services.
func New(cfg *config.Config, logger *slog.Logger, components Components) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{cfg: cfg, logger: logger, components: components}
}

// Run executes a generation request and writes the finished short to the
// request's output path.
func (p *Pipeline) Run(ctx context.Context, req Request) error {
	start := time.Now()
	log := p.logger.With(logging.String(logging.FieldComponent, "pipeline"))

	def, ok := language.Lookup(req.Language)
	if !ok {
		return services.Wrap(services.ErrConfiguration, "pipeline", "run",
			fmt.Sprintf("unsupported language %q (supported: %s)", req.Language, strings.Join(language.Codes(), ", ")), nil)
	}

	videoSource, audioSource, err := p.resolveAssets(req)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "pipeline", "run", "resolve background assets", err)
	}

	text, err := textsource.Read(req.InputPath)
	if err != nil {
		return err
	}
	script := textsource.Flatten(text)
	log.Info("source text loaded",
		logging.String("input", req.InputPath),
		logging.Int("characters", len(script)))

	if req.Summarize {
		if p.components.Summarizer == nil {
			return services.Wrap(services.ErrConfiguration, "pipeline", "run", "summarization requested but not configured", nil)
		}
		script, err = p.components.Summarizer.Summarize(ctx, req.Model, def.SystemPrompt, script)
		if err != nil {
			return err
		}
		log.Info("narration script summarized",
			logging.String("model", req.Model),
			logging.Int("characters", len(script)))
	}

	workDir, cleanup, err := p.makeWorkDir()
	if err != nil {
		return err
	}
	defer cleanup()

	narrationPath := filepath.Join(workDir, "narration.mp3")
	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = def.DefaultVoiceID
	}
	if err := p.components.Synthesizer.Synthesize(ctx, speech.Request{
		Provider:     req.VoiceProvider,
		Text:         script,
		LanguageCode: def.TTSCode,
		VoiceID:      voiceID,
	}, narrationPath); err != nil {
		return err
	}
	duration, err := p.components.Media.DurationSeconds(ctx, narrationPath)
	if err != nil {
		return err
	}
	log.Info("narration synthesized",
		logging.String("provider", req.VoiceProvider),
		logging.Duration("length", time.Duration(duration*float64(time.Second))))

	backgroundVideo := filepath.Join(workDir, "background.mp4")
	if err := p.components.Media.ConditionVideo(ctx, videoSource, backgroundVideo, duration); err != nil {
		return err
	}
	backgroundAudio := filepath.Join(workDir, "music.mp3")
	if err := p.components.Media.ConditionAudio(ctx, audioSource, backgroundAudio, duration, req.Volume); err != nil {
		return err
	}
	log.Info("background conditioned",
		logging.String("video", videoSource),
		logging.String("audio", audioSource))

	var overlays []media.Overlay
	if req.Subtitles {
		overlays, err = p.renderCaptions(ctx, narrationPath, backgroundVideo, workDir, def)
		if err != nil {
			return err
		}
		log.Info("captions rendered", logging.Int("words", len(overlays)))
	}

	// Render inside the scratch directory and publish afterwards so a
	// failed encode never leaves a partial file at the destination.
	renderPath := filepath.Join(workDir, "short.mp4")
	if err := p.components.Media.Mux(ctx, media.MuxSpec{
		VideoPath:     backgroundVideo,
		NarrationPath: narrationPath,
		MusicPath:     backgroundAudio,
		Overlays:      overlays,
		OutputPath:    renderPath,
	}); err != nil {
		return err
	}
	if dir := filepath.Dir(req.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(nil, "pipeline", "run", "create output directory", err)
		}
	}
	if err := fileutil.CopyFile(renderPath, req.OutputPath); err != nil {
		_ = os.Remove(req.OutputPath)
		return services.Wrap(nil, "pipeline", "run", "publish finished short", err)
	}

	log.Info("short rendered",
		logging.String("output", req.OutputPath),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}

// resolveAssets picks the background video and audio, drawing randomly from
// the configured pools when the request does not name files.
func (p *Pipeline) resolveAssets(req Request) (videoSource, audioSource string, err error) {
	videoSource = req.VideoPath
	if videoSource == "" {
		videoSource, err = fileutil.RandomFile(p.cfg.Assets.VideoDir)
		if err != nil {
			return "", "", err
		}
	}
	audioSource = req.AudioPath
	if audioSource == "" {
		audioSource, err = fileutil.RandomFile(p.cfg.Assets.AudioDir)
		if err != nil {
			return "", "", err
		}
	}
	return videoSource, audioSource, nil
}

func (p *Pipeline) makeWorkDir() (string, func(), error) {
	base := p.cfg.Media.WorkDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "shortreel-run-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, services.Wrap(nil, "pipeline", "run", "create scratch directory", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			p.logger.Warn("scratch directory cleanup failed",
				logging.String(logging.FieldComponent, "pipeline"),
				logging.Error(err))
		}
	}
	return dir, cleanup, nil
}

func (p *Pipeline) renderCaptions(ctx context.Context, narrationPath, backgroundVideo, workDir string, def language.Definition) ([]media.Overlay, error) {
	if p.components.Transcriber == nil || p.components.Captions == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "run", "subtitles requested but not configured", nil)
	}
	chunks, err := p.components.Transcriber.Transcribe(ctx, narrationPath, def.SpokenName)
	if err != nil {
		return nil, err
	}
	probe, err := p.components.Media.Probe(ctx, backgroundVideo)
	if err != nil {
		return nil, services.Wrap(nil, "pipeline", "run", "inspect conditioned video", err)
	}
	width, _, ok := probe.Dimensions()
	if !ok {
		return nil, services.Wrap(services.ErrParse, "pipeline", "run",
			fmt.Sprintf("no video stream in conditioned background %s", backgroundVideo), nil)
	}
	return p.components.Captions.Render(chunks, width, filepath.Join(workDir, "captions"))
}
