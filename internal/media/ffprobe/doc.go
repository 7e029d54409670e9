// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no shortreel-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result provide convenient access to the video stream
// dimensions and to duration parsing with a stream-level fallback.
package ffprobe
