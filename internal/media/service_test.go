package media

import (
	"context"
	"slices"
	"strings"
	"testing"

	"shortreel/internal/media/ffprobe"
)

func fixedProbe(result ffprobe.Result) func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
	return func(_ context.Context, _, _ string) (ffprobe.Result, error) {
		return result, nil
	}
}

type recordedCommand struct {
	name string
	args []string
}

func recordingService(t *testing.T, probe ffprobe.Result) (*Service, *recordedCommand) {
	t.Helper()
	service := NewService("ffmpeg", "ffprobe", nil)
	service.WithProber(fixedProbe(probe))
	recorded := &recordedCommand{}
	service.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		recorded.name = name
		recorded.args = args
		return nil
	})
	return service, recorded
}

func TestCropWidth(t *testing.T) {
	cases := []struct {
		height int
		want   int
	}{
		{1080, 606},
		{1920, 1080},
		{720, 404},
	}
	for _, tc := range cases {
		if got := cropWidth(tc.height); got != tc.want {
			t.Fatalf("cropWidth(%d) = %d, want %d", tc.height, got, tc.want)
		}
	}
}

func TestLoopCount(t *testing.T) {
	cases := []struct {
		source, target float64
		want           int
	}{
		{60, 30, 0},
		{30, 30, 0},
		{30, 31, 1},
		{10, 35, 3},
	}
	for _, tc := range cases {
		if got := loopCount(tc.source, tc.target); got != tc.want {
			t.Fatalf("loopCount(%v, %v) = %d, want %d", tc.source, tc.target, got, tc.want)
		}
	}
}

func TestConditionVideoBuildsCenteredCrop(t *testing.T) {
	service, recorded := recordingService(t, ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", Width: 1920, Height: 1080}},
		Format:  ffprobe.Format{Duration: "20.0"},
	})

	if err := service.ConditionVideo(context.Background(), "bg.mp4", "out.mp4", 45); err != nil {
		t.Fatalf("ConditionVideo returned error: %v", err)
	}
	if recorded.name != "ffmpeg" {
		t.Fatalf("expected ffmpeg invocation, got %q", recorded.name)
	}
	// 20s source covering 45s needs the input played 3 times.
	if !containsPair(recorded.args, "-stream_loop", "2") {
		t.Fatalf("expected -stream_loop 2 in %v", recorded.args)
	}
	if !containsPair(recorded.args, "-t", "45.000") {
		t.Fatalf("expected exact trim in %v", recorded.args)
	}
	// 606-wide crop of a 1920 frame leaves 657 on the left.
	if !containsPair(recorded.args, "-vf", "crop=606:1080:657:0") {
		t.Fatalf("expected centered crop in %v", recorded.args)
	}
	if !slices.Contains(recorded.args, "-an") {
		t.Fatalf("expected source audio to be dropped in %v", recorded.args)
	}
}

func TestConditionVideoSkipsLoopWhenLongEnough(t *testing.T) {
	service, recorded := recordingService(t, ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", Width: 1080, Height: 1920}},
		Format:  ffprobe.Format{Duration: "90.0"},
	})

	if err := service.ConditionVideo(context.Background(), "bg.mp4", "out.mp4", 45); err != nil {
		t.Fatalf("ConditionVideo returned error: %v", err)
	}
	if slices.Contains(recorded.args, "-stream_loop") {
		t.Fatalf("expected no looping for a long enough source: %v", recorded.args)
	}
}

func TestConditionVideoRejectsNarrowSource(t *testing.T) {
	service, recorded := recordingService(t, ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", Width: 500, Height: 1080}},
		Format:  ffprobe.Format{Duration: "20.0"},
	})

	err := service.ConditionVideo(context.Background(), "bg.mp4", "out.mp4", 45)
	if err == nil {
		t.Fatal("expected error for a source narrower than the portrait crop")
	}
	if !strings.Contains(err.Error(), "narrower") {
		t.Fatalf("expected crop detail in error, got %v", err)
	}
	if recorded.name != "" {
		t.Fatal("expected no ffmpeg invocation for a rejected source")
	}
}

func TestConditionAudioAppliesVolume(t *testing.T) {
	service, recorded := recordingService(t, ffprobe.Result{
		Format: ffprobe.Format{Duration: "30.0"},
	})

	if err := service.ConditionAudio(context.Background(), "music.mp3", "out.mp3", 45, 0.3); err != nil {
		t.Fatalf("ConditionAudio returned error: %v", err)
	}
	if !containsPair(recorded.args, "-stream_loop", "1") {
		t.Fatalf("expected -stream_loop 1 in %v", recorded.args)
	}
	if !containsPair(recorded.args, "-t", "45.000") {
		t.Fatalf("expected exact trim in %v", recorded.args)
	}
	if !containsPair(recorded.args, "-filter:a", "volume=0.3") {
		t.Fatalf("expected volume filter in %v", recorded.args)
	}
}

func TestMuxChainsOverlays(t *testing.T) {
	service := NewService("ffmpeg", "ffprobe", nil)
	recorded := &recordedCommand{}
	service.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		recorded.name = name
		recorded.args = args
		return nil
	})

	err := service.Mux(context.Background(), MuxSpec{
		VideoPath:     "video.mp4",
		NarrationPath: "narration.mp3",
		MusicPath:     "music.mp3",
		Overlays: []Overlay{
			{ImagePath: "w0.png", Start: 0, End: 0.4},
			{ImagePath: "w1.png", Start: 0.4, End: 0.9},
		},
		OutputPath: "short.mp4",
	})
	if err != nil {
		t.Fatalf("Mux returned error: %v", err)
	}

	filter := argAfter(recorded.args, "-filter_complex")
	if filter == "" {
		t.Fatalf("expected a filter graph in %v", recorded.args)
	}
	if !strings.Contains(filter, "[0:v][3:v]overlay=(W-w)/2:(H-h)/2:enable='between(t,0.000,0.400)'[v1]") {
		t.Fatalf("unexpected first overlay in %q", filter)
	}
	if !strings.Contains(filter, "[v1][4:v]overlay") {
		t.Fatalf("expected overlays to chain in %q", filter)
	}
	if !strings.Contains(filter, "[1:a][2:a]amix=inputs=2:duration=first:normalize=0[aout]") {
		t.Fatalf("expected narration/music mix in %q", filter)
	}
	if !containsPair(recorded.args, "-map", "[v2]") {
		t.Fatalf("expected final overlay label mapped in %v", recorded.args)
	}
	if !containsPair(recorded.args, "-map", "[aout]") {
		t.Fatalf("expected mixed audio mapped in %v", recorded.args)
	}
}

func TestMuxWithoutOverlaysMapsSourceVideo(t *testing.T) {
	service := NewService("ffmpeg", "ffprobe", nil)
	recorded := &recordedCommand{}
	service.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		recorded.args = args
		return nil
	})

	err := service.Mux(context.Background(), MuxSpec{
		VideoPath:     "video.mp4",
		NarrationPath: "narration.mp3",
		MusicPath:     "music.mp3",
		OutputPath:    "short.mp4",
	})
	if err != nil {
		t.Fatalf("Mux returned error: %v", err)
	}
	if !containsPair(recorded.args, "-map", "0:v") {
		t.Fatalf("expected plain video mapping in %v", recorded.args)
	}
	filter := argAfter(recorded.args, "-filter_complex")
	if strings.Contains(filter, "overlay") {
		t.Fatalf("expected no overlay filters in %q", filter)
	}
}

func TestMuxRequiresInputs(t *testing.T) {
	service := NewService("ffmpeg", "ffprobe", nil)
	if err := service.Mux(context.Background(), MuxSpec{VideoPath: "v.mp4"}); err == nil {
		t.Fatal("expected error for missing inputs")
	}
}

func containsPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
