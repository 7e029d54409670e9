// Package media conditions background footage and mixes the final short.
//
// All heavy lifting is delegated to ffmpeg; this package builds argument
// lists, probes inputs through the ffprobe wrapper, and shells out. The
// command runner is injectable so argument construction stays testable
// without the binaries installed.
//
// Three operations cover the pipeline's needs:
//   - ConditionVideo: loop, trim to the narration length, center-crop to 9:16
//   - ConditionAudio: loop, trim, apply a linear background gain
//   - Mux: burn subtitle overlays and mix narration over the background track
package media
