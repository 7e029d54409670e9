package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shortreel/internal/config"
	"shortreel/internal/media"
	"shortreel/internal/media/ffprobe"
	"shortreel/internal/pipeline"
	"shortreel/internal/services"
	"shortreel/internal/speech"
	"shortreel/internal/transcribe"
)

type fakeSummarizer struct {
	calls      int
	result     string
	err        error
	lastModel  string
	lastPrompt string
}

func (f *fakeSummarizer) Summarize(_ context.Context, model, systemPrompt, _ string) (string, error) {
	f.calls++
	f.lastModel = model
	f.lastPrompt = systemPrompt
	return f.result, f.err
}

type fakeSynthesizer struct {
	calls   int
	err     error
	lastReq speech.Request
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, req speech.Request, outputPath string) error {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("mp3"), 0o644)
}

type fakeTranscriber struct {
	calls        int
	chunks       []transcribe.Chunk
	err          error
	lastLanguage string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, spokenLanguage string) ([]transcribe.Chunk, error) {
	f.calls++
	f.lastLanguage = spokenLanguage
	return f.chunks, f.err
}

type fakeCaptions struct {
	calls     int
	overlays  []media.Overlay
	err       error
	lastWidth int
}

func (f *fakeCaptions) Render(_ []transcribe.Chunk, videoWidth int, _ string) ([]media.Overlay, error) {
	f.calls++
	f.lastWidth = videoWidth
	return f.overlays, f.err
}

type fakeMedia struct {
	narrationDuration float64
	muxErr            error
	conditionVideoErr error

	videoSource   string
	videoDuration float64
	audioSource   string
	audioVolume   float64
	muxSpec       media.MuxSpec
	muxCalled     bool
	workDirSeen   string
}

func (f *fakeMedia) Probe(_ context.Context, _ string) (ffprobe.Result, error) {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", Width: 606, Height: 1080}},
	}, nil
}

func (f *fakeMedia) DurationSeconds(_ context.Context, _ string) (float64, error) {
	return f.narrationDuration, nil
}

func (f *fakeMedia) ConditionVideo(_ context.Context, source, dest string, duration float64) error {
	f.videoSource = source
	f.videoDuration = duration
	f.workDirSeen = filepath.Dir(dest)
	if f.conditionVideoErr != nil {
		return f.conditionVideoErr
	}
	return os.WriteFile(dest, []byte("mp4"), 0o644)
}

func (f *fakeMedia) ConditionAudio(_ context.Context, source, dest string, _, volume float64) error {
	f.audioSource = source
	f.audioVolume = volume
	return os.WriteFile(dest, []byte("mp3"), 0o644)
}

func (f *fakeMedia) Mux(_ context.Context, spec media.MuxSpec) error {
	f.muxCalled = true
	f.muxSpec = spec
	if f.muxErr != nil {
		return f.muxErr
	}
	return os.WriteFile(spec.OutputPath, []byte("final"), 0o644)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.VideoDir = t.TempDir()
	cfg.Assets.AudioDir = t.TempDir()
	cfg.Media.WorkDir = t.TempDir()
	if err := os.WriteFile(filepath.Join(cfg.Assets.VideoDir, "pool.mp4"), []byte("v"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Assets.AudioDir, "pool.mp3"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	return &cfg
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func baseRequest(t *testing.T) pipeline.Request {
	t.Helper()
	return pipeline.Request{
		InputPath:     writeInput(t, "a long article about go"),
		OutputPath:    filepath.Join(t.TempDir(), "short.mp4"),
		VoiceProvider: speech.ProviderGoogle,
		Volume:        0.3,
		Language:      "en",
	}
}

func TestRunFullPipelineWithSubtitles(t *testing.T) {
	cfg := testConfig(t)
	summarizer := &fakeSummarizer{result: "a short summary"}
	synthesizer := &fakeSynthesizer{}
	transcriber := &fakeTranscriber{chunks: []transcribe.Chunk{{Start: 0, End: 0.5, Text: "a"}}}
	captions := &fakeCaptions{overlays: []media.Overlay{{ImagePath: "w0.png", Start: 0, End: 0.5}}}
	mediaSvc := &fakeMedia{narrationDuration: 12.5}

	p := pipeline.New(cfg, nil, pipeline.Components{
		Summarizer:  summarizer,
		Synthesizer: synthesizer,
		Transcriber: transcriber,
		Captions:    captions,
		Media:       mediaSvc,
	})

	req := baseRequest(t)
	req.Subtitles = true
	req.Summarize = true
	req.Model = "deepseek-chat"
	if err := p.Run(context.Background(), req); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summarizer.calls != 1 || summarizer.lastModel != "deepseek-chat" {
		t.Fatalf("unexpected summarizer usage: %d calls, model %q", summarizer.calls, summarizer.lastModel)
	}
	if synthesizer.lastReq.Text != "a short summary" {
		t.Fatalf("expected the summary to be narrated, got %q", synthesizer.lastReq.Text)
	}
	if synthesizer.lastReq.VoiceID != "pNInz6obpgDQGcFmaJgB" {
		t.Fatalf("expected the default english voice, got %q", synthesizer.lastReq.VoiceID)
	}
	if mediaSvc.videoDuration != 12.5 {
		t.Fatalf("expected conditioning to target the narration length, got %v", mediaSvc.videoDuration)
	}
	if mediaSvc.audioVolume != 0.3 {
		t.Fatalf("unexpected background volume %v", mediaSvc.audioVolume)
	}
	if transcriber.lastLanguage != "english" {
		t.Fatalf("unexpected transcription language %q", transcriber.lastLanguage)
	}
	if captions.lastWidth != 606 {
		t.Fatalf("expected captions to span the conditioned video width, got %d", captions.lastWidth)
	}
	if len(mediaSvc.muxSpec.Overlays) != 1 {
		t.Fatalf("expected overlays to reach the mux, got %d", len(mediaSvc.muxSpec.Overlays))
	}
	if _, err := os.Stat(req.OutputPath); err != nil {
		t.Fatalf("expected the finished short at the output path: %v", err)
	}
	if _, err := os.Stat(mediaSvc.workDirSeen); !os.IsNotExist(err) {
		t.Fatalf("expected the scratch directory to be removed, stat err %v", err)
	}
}

func TestRunSkipsOptionalSteps(t *testing.T) {
	cfg := testConfig(t)
	summarizer := &fakeSummarizer{result: "unused"}
	synthesizer := &fakeSynthesizer{}
	transcriber := &fakeTranscriber{}
	mediaSvc := &fakeMedia{narrationDuration: 5}

	p := pipeline.New(cfg, nil, pipeline.Components{
		Summarizer:  summarizer,
		Synthesizer: synthesizer,
		Transcriber: transcriber,
		Media:       mediaSvc,
	})

	req := baseRequest(t)
	if err := p.Run(context.Background(), req); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summarizer.calls != 0 {
		t.Fatal("expected summarization to be skipped")
	}
	if transcriber.calls != 0 {
		t.Fatal("expected transcription to be skipped")
	}
	if !strings.Contains(synthesizer.lastReq.Text, "a long article") {
		t.Fatalf("expected the full text to be narrated, got %q", synthesizer.lastReq.Text)
	}
	if len(mediaSvc.muxSpec.Overlays) != 0 {
		t.Fatal("expected no overlays without subtitles")
	}
}

func TestRunUsesRequestedAssets(t *testing.T) {
	cfg := testConfig(t)
	mediaSvc := &fakeMedia{narrationDuration: 5}
	p := pipeline.New(cfg, nil, pipeline.Components{
		Synthesizer: &fakeSynthesizer{},
		Media:       mediaSvc,
	})

	req := baseRequest(t)
	req.VideoPath = "/assets/custom.mp4"
	req.AudioPath = "/assets/custom.mp3"
	if err := p.Run(context.Background(), req); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if mediaSvc.videoSource != "/assets/custom.mp4" {
		t.Fatalf("unexpected video source %q", mediaSvc.videoSource)
	}
	if mediaSvc.audioSource != "/assets/custom.mp3" {
		t.Fatalf("unexpected audio source %q", mediaSvc.audioSource)
	}
}

func TestRunFailsOnEmptyAssetPool(t *testing.T) {
	cfg := testConfig(t)
	cfg.Assets.VideoDir = t.TempDir()

	p := pipeline.New(cfg, nil, pipeline.Components{
		Synthesizer: &fakeSynthesizer{},
		Media:       &fakeMedia{narrationDuration: 5},
	})

	err := p.Run(context.Background(), baseRequest(t))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an empty pool, got %v", err)
	}
}

func TestRunUnsupportedLanguage(t *testing.T) {
	cfg := testConfig(t)
	p := pipeline.New(cfg, nil, pipeline.Components{
		Synthesizer: &fakeSynthesizer{},
		Media:       &fakeMedia{narrationDuration: 5},
	})

	req := baseRequest(t)
	req.Language = "xx"
	err := p.Run(context.Background(), req)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestRunRemovesPartialOutputOnMuxFailure(t *testing.T) {
	cfg := testConfig(t)
	mediaSvc := &fakeMedia{narrationDuration: 5, muxErr: errors.New("encoder crashed")}
	p := pipeline.New(cfg, nil, pipeline.Components{
		Synthesizer: &fakeSynthesizer{},
		Media:       mediaSvc,
	})

	req := baseRequest(t)
	if err := p.Run(context.Background(), req); err == nil {
		t.Fatal("expected the mux failure to propagate")
	}
	if _, err := os.Stat(req.OutputPath); !os.IsNotExist(err) {
		t.Fatalf("expected no partial output, stat err %v", err)
	}
	if mediaSvc.muxSpec.OutputPath == req.OutputPath {
		t.Fatal("expected the render to target the scratch directory, not the destination")
	}
}

func TestRunCleansScratchDirOnFailure(t *testing.T) {
	cfg := testConfig(t)
	mediaSvc := &fakeMedia{narrationDuration: 5, conditionVideoErr: errors.New("bad input")}
	p := pipeline.New(cfg, nil, pipeline.Components{
		Synthesizer: &fakeSynthesizer{},
		Media:       mediaSvc,
	})

	if err := p.Run(context.Background(), baseRequest(t)); err == nil {
		t.Fatal("expected the conditioning failure to propagate")
	}
	if mediaSvc.workDirSeen == "" {
		t.Fatal("expected conditioning to have been attempted")
	}
	if _, err := os.Stat(mediaSvc.workDirSeen); !os.IsNotExist(err) {
		t.Fatalf("expected the scratch directory to be removed, stat err %v", err)
	}
}

func TestRunSubtitlesRequireTranscriber(t *testing.T) {
	cfg := testConfig(t)
	p := pipeline.New(cfg, nil, pipeline.Components{
		Synthesizer: &fakeSynthesizer{},
		Media:       &fakeMedia{narrationDuration: 5},
	})

	req := baseRequest(t)
	req.Subtitles = true
	err := p.Run(context.Background(), req)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
