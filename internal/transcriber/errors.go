package transcriber

import (
	"errors"
	"fmt"
)

// ErrNoAudioStream is returned when the source has no audio-only stream.
var ErrNoAudioStream = errors.New("audio stream not found")

// RateLimitedError is returned when every download attempt was rate limited.
type RateLimitedError struct {
	Reason string
	Status int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("Failed to download audio from YouTube after multiple retries (429 Error): %s", e.Reason)
}

// DownloadError is any other download failure.
type DownloadError struct {
	Reason string
	Status int
}

func (e *DownloadError) Error() string {
	return e.Reason
}

// TranscriptionError wraps a failure of the speech-to-text engine.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return e.Err.Error()
}

func (e *TranscriptionError) Unwrap() error { return e.Err }
