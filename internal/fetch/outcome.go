package fetch

import (
	"context"
	"fmt"
)

// Kind tags a download outcome.
type Kind int

const (
	KindSuccess Kind = iota
	KindRetryable
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRetryable:
		return "retryable"
	case KindFatal:
		return "fatal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ReasonNoAudio is the reason carried by the fatal outcome returned when a
// source has no audio-only stream.
const ReasonNoAudio = "no audio stream"

// Outcome is the result of a single download attempt, or of a whole retry
// sequence once it has passed through the retry controller.
type Outcome struct {
	Kind   Kind
	Path   string // set on success
	Reason string
	Status int // HTTP status reported by the provider, 0 when unknown

	// NoAudio marks the fatal outcome for sources without an audio-only stream.
	NoAudio bool
	// Exhausted is set by the retry controller when it gives up on a
	// retryable failure.
	Exhausted bool
}

func Success(path string) Outcome {
	return Outcome{Kind: KindSuccess, Path: path}
}

func Retryable(reason string, status int) Outcome {
	return Outcome{Kind: KindRetryable, Reason: reason, Status: status}
}

func Fatal(reason string, status int) Outcome {
	return Outcome{Kind: KindFatal, Reason: reason, Status: status}
}

func NoAudioStream() Outcome {
	return Outcome{Kind: KindFatal, Reason: ReasonNoAudio, NoAudio: true}
}

func (o Outcome) OK() bool { return o.Kind == KindSuccess }

func (o Outcome) String() string {
	if o.Kind == KindSuccess {
		return "success: " + o.Path
	}
	if o.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", o.Kind, o.Status, o.Reason)
	}
	return fmt.Sprintf("%s: %s", o.Kind, o.Reason)
}

// Fetcher resolves the audio-only stream of a source URL and writes it to
// destPath. Implementations classify every failure; they never retry.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL, destPath string) Outcome
	Name() string
}
