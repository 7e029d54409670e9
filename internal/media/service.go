package media

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"shortreel/internal/logging"
	"shortreel/internal/media/ffprobe"
	"shortreel/internal/services"
)

// Service shells out to ffmpeg for conditioning and muxing.
type Service struct {
	ffmpegBinary  string
	ffprobeBinary string
	commandRunner func(ctx context.Context, name string, args ...string) error
	prober        func(ctx context.Context, binary, path string) (ffprobe.Result, error)
	logger        *slog.Logger
}

// NewService creates a media service bound to the configured binaries.
func NewService(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		prober:        ffprobe.Inspect,
		logger:        logger,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// WithProber sets a custom ffprobe implementation (for testing).
func (s *Service) WithProber(prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)) {
	if prober != nil {
		s.prober = prober
	}
}

// Probe inspects a media file.
func (s *Service) Probe(ctx context.Context, path string) (ffprobe.Result, error) {
	return s.prober(ctx, s.ffprobeBinary, path)
}

// DurationSeconds returns the duration of the media file at path.
func (s *Service) DurationSeconds(ctx context.Context, path string) (float64, error) {
	result, err := s.Probe(ctx, path)
	if err != nil {
		return 0, services.Wrap(nil, "media", "probe", "inspect media file", err)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return 0, services.Wrap(services.ErrParse, "media", "probe", fmt.Sprintf("no duration reported for %s", path), nil)
	}
	return duration, nil
}

// ConditionVideo loops the background clip until it covers duration seconds,
// trims it to that exact length, center-crops it to 9:16, and drops its audio
// track. Sources narrower than a 9:16 crop of their height are rejected.
func (s *Service) ConditionVideo(ctx context.Context, source, dest string, duration float64) error {
	if duration <= 0 {
		return services.Wrap(nil, "media", "condition video", "target duration must be positive", nil)
	}
	result, err := s.Probe(ctx, source)
	if err != nil {
		return services.Wrap(nil, "media", "condition video", "inspect background video", err)
	}
	width, height, ok := result.Dimensions()
	if !ok {
		return services.Wrap(services.ErrParse, "media", "condition video", fmt.Sprintf("no video stream in %s", source), nil)
	}
	sourceDuration := result.DurationSeconds()
	if sourceDuration <= 0 {
		return services.Wrap(services.ErrParse, "media", "condition video", fmt.Sprintf("no duration reported for %s", source), nil)
	}
	cropW := cropWidth(height)
	if width < cropW {
		return services.Wrap(nil, "media", "condition video",
			fmt.Sprintf("source is %dx%d, narrower than the %dx%d portrait crop", width, height, cropW, height), nil)
	}

	loops := loopCount(sourceDuration, duration)
	args := buildVideoArgs(source, dest, duration, loops, cropW, width, height)
	s.logger.Debug("conditioning background video",
		logging.String(logging.FieldComponent, "media"),
		logging.String("source", source),
		logging.Int("loops", loops),
		logging.String("crop", fmt.Sprintf("%dx%d", cropW, height)))
	if err := s.run(ctx, s.ffmpegBinary, args...); err != nil {
		return services.Wrap(nil, "media", "condition video", "ffmpeg failed", err)
	}
	return nil
}

// ConditionAudio loops the background track until it covers duration seconds,
// trims it to that exact length, and applies a linear volume gain.
func (s *Service) ConditionAudio(ctx context.Context, source, dest string, duration, volume float64) error {
	if duration <= 0 {
		return services.Wrap(nil, "media", "condition audio", "target duration must be positive", nil)
	}
	if volume < 0 {
		return services.Wrap(nil, "media", "condition audio", "volume must not be negative", nil)
	}
	sourceDuration, err := s.DurationSeconds(ctx, source)
	if err != nil {
		return services.Wrap(nil, "media", "condition audio", "inspect background audio", err)
	}

	loops := loopCount(sourceDuration, duration)
	args := buildAudioArgs(source, dest, duration, loops, volume)
	s.logger.Debug("conditioning background audio",
		logging.String(logging.FieldComponent, "media"),
		logging.String("source", source),
		logging.Int("loops", loops),
		logging.Float64("volume", volume))
	if err := s.run(ctx, s.ffmpegBinary, args...); err != nil {
		return services.Wrap(nil, "media", "condition audio", "ffmpeg failed", err)
	}
	return nil
}

// Overlay is a subtitle image shown over the video for a time window.
type Overlay struct {
	ImagePath string
	Start     float64
	End       float64
}

// MuxSpec names the inputs of the final render.
type MuxSpec struct {
	VideoPath     string
	NarrationPath string
	MusicPath     string
	Overlays      []Overlay
	OutputPath    string
}

// Mux renders the final short: subtitle overlays burned over the conditioned
// video, narration mixed over the background track, trimmed to the narration.
func (s *Service) Mux(ctx context.Context, spec MuxSpec) error {
	if spec.VideoPath == "" || spec.NarrationPath == "" || spec.MusicPath == "" || spec.OutputPath == "" {
		return services.Wrap(nil, "media", "mux", "video, narration, music, and output paths are required", nil)
	}
	args := buildMuxArgs(spec)
	s.logger.Debug("muxing final short",
		logging.String(logging.FieldComponent, "media"),
		logging.Int("overlays", len(spec.Overlays)),
		logging.String("output", spec.OutputPath))
	if err := s.run(ctx, s.ffmpegBinary, args...); err != nil {
		return services.Wrap(nil, "media", "mux", "ffmpeg failed", err)
	}
	return nil
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// cropWidth returns the widest even width with a 9:16 ratio against height.
func cropWidth(height int) int {
	width := height * 9 / 16
	return width - width%2
}

// loopCount returns the -stream_loop value needed for a source of
// sourceDuration seconds to cover targetDuration seconds. ffmpeg plays the
// input loops+1 times.
func loopCount(sourceDuration, targetDuration float64) int {
	if sourceDuration <= 0 || targetDuration <= sourceDuration {
		return 0
	}
	return int(math.Ceil(targetDuration/sourceDuration)) - 1
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

func buildVideoArgs(source, dest string, duration float64, loops, cropW, sourceW, sourceH int) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if loops > 0 {
		args = append(args, "-stream_loop", strconv.Itoa(loops))
	}
	xOffset := (sourceW - cropW) / 2
	args = append(args,
		"-i", source,
		"-t", formatSeconds(duration),
		"-vf", fmt.Sprintf("crop=%d:%d:%d:0", cropW, sourceH, xOffset),
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		dest,
	)
	return args
}

func buildAudioArgs(source, dest string, duration float64, loops int, volume float64) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if loops > 0 {
		args = append(args, "-stream_loop", strconv.Itoa(loops))
	}
	args = append(args,
		"-i", source,
		"-t", formatSeconds(duration),
		"-filter:a", "volume="+strconv.FormatFloat(volume, 'f', -1, 64),
		"-vn",
		dest,
	)
	return args
}

func buildMuxArgs(spec MuxSpec) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error",
		"-i", spec.VideoPath,
		"-i", spec.NarrationPath,
		"-i", spec.MusicPath,
	}
	for _, overlay := range spec.Overlays {
		args = append(args, "-i", overlay.ImagePath)
	}

	var filters []string
	videoLabel := "0:v"
	for i, overlay := range spec.Overlays {
		out := fmt.Sprintf("v%d", i+1)
		filters = append(filters, fmt.Sprintf(
			"[%s][%d:v]overlay=(W-w)/2:(H-h)/2:enable='between(t,%s,%s)'[%s]",
			videoLabel, i+3, formatSeconds(overlay.Start), formatSeconds(overlay.End), out))
		videoLabel = out
	}
	filters = append(filters, "[1:a][2:a]amix=inputs=2:duration=first:normalize=0[aout]")

	args = append(args, "-filter_complex", strings.Join(filters, ";"))
	if len(spec.Overlays) > 0 {
		args = append(args, "-map", "["+videoLabel+"]")
	} else {
		args = append(args, "-map", videoLabel)
	}
	args = append(args,
		"-map", "[aout]",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-movflags", "+faststart",
		spec.OutputPath,
	)
	return args
}
