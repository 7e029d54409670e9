package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound tags missing input files or empty asset directories.
	ErrNotFound = errors.New("not found")
	// ErrParse tags documents whose text could not be extracted.
	ErrParse = errors.New("parse error")
	// ErrUnsupportedBackend tags unknown summarization or TTS identifiers.
	ErrUnsupportedBackend = errors.New("unsupported backend")
	// ErrConfiguration tags missing fonts, credentials, and similar setup gaps.
	ErrConfiguration = errors.New("configuration error")
	// ErrUpload tags hosting or transcription call failures.
	ErrUpload = errors.New("upload error")
	// ErrCompose tags ffmpeg/ffprobe failures during conditioning and muxing.
	ErrCompose = errors.New("compose error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrCompose
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
