// Package transcriber runs the download-then-transcribe pipeline for one
// request: a request-scoped temporary file, a retried download of the audio
// stream, and a call into the speech-to-text engine. The temporary file is
// removed on every exit path.
package transcriber

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/videotranscriber/internal/fetch"
	"github.com/nikhilbhutani/videotranscriber/internal/retry"
	"github.com/nikhilbhutani/videotranscriber/internal/stt"
)

// Result labels reported to the Recorder.
const (
	ResultOK                 = "ok"
	ResultNoAudio            = "no_audio"
	ResultRateLimited        = "rate_limited"
	ResultDownloadError      = "download_error"
	ResultTranscriptionError = "transcription_error"
)

// Recorder receives pipeline measurements. *metrics.Metrics implements it.
type Recorder interface {
	Result(result string)
	ObserveEngine(d time.Duration)
	CleanupFailed()
}

type Options struct {
	TempDir  string
	Language string
	Prompt   string
	Recorder Recorder
}

type Service struct {
	fetcher  fetch.Fetcher
	engine   stt.Provider
	retry    *retry.Controller
	tempDir  string
	language string
	prompt   string
	recorder Recorder
}

func NewService(f fetch.Fetcher, engine stt.Provider, rc *retry.Controller, opts Options) *Service {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &Service{
		fetcher:  f,
		engine:   engine,
		retry:    rc,
		tempDir:  opts.TempDir,
		language: opts.Language,
		prompt:   opts.Prompt,
		recorder: opts.Recorder,
	}
}

// Transcribe downloads the audio of sourceURL and returns its transcript.
// Errors are ErrNoAudioStream, *RateLimitedError, *DownloadError or
// *TranscriptionError.
func (s *Service) Transcribe(ctx context.Context, sourceURL string) (string, error) {
	path := s.tempPath()
	defer s.cleanup(ctx, path)

	slog.InfoContext(ctx, "downloading audio", "url", sourceURL, "fetcher", s.fetcher.Name())
	out := s.retry.Do(ctx, func(ctx context.Context) fetch.Outcome {
		return s.fetcher.Fetch(ctx, sourceURL, path)
	})
	if err := s.downloadError(out); err != nil {
		slog.WarnContext(ctx, "download failed", "url", sourceURL, "outcome", out.String())
		return "", err
	}
	slog.InfoContext(ctx, "audio downloaded", "path", out.Path)

	start := time.Now()
	resp, err := s.engine.Transcribe(ctx, stt.TranscriptionRequest{
		FilePath: out.Path,
		Language: s.language,
		Prompt:   s.prompt,
	})
	if s.recorder != nil {
		s.recorder.ObserveEngine(time.Since(start))
	}
	if err != nil {
		slog.ErrorContext(ctx, "transcription failed", "engine", s.engine.Name(), "error", err)
		s.record(ResultTranscriptionError)
		return "", &TranscriptionError{Err: err}
	}

	slog.InfoContext(ctx, "transcription complete",
		"engine", s.engine.Name(),
		"chars", len(resp.Text),
		"took", time.Since(start),
	)
	s.record(ResultOK)
	return resp.Text, nil
}

func (s *Service) downloadError(out fetch.Outcome) error {
	switch {
	case out.OK():
		return nil
	case out.NoAudio:
		s.record(ResultNoAudio)
		return ErrNoAudioStream
	case out.Exhausted:
		s.record(ResultRateLimited)
		return &RateLimitedError{Reason: out.Reason, Status: out.Status}
	default:
		s.record(ResultDownloadError)
		return &DownloadError{Reason: out.Reason, Status: out.Status}
	}
}

func (s *Service) tempPath() string {
	return filepath.Join(s.tempDir, "temp_audio_"+uuid.NewString()+".mp4")
}

// cleanup removes the request's temporary file along with any sibling the
// downloader left next to it (".part", ".ytdl"). Failures are logged only.
func (s *Service) cleanup(ctx context.Context, path string) {
	leftovers, _ := filepath.Glob(path + ".*")
	for _, p := range append([]string{path}, leftovers...) {
		s.remove(ctx, p)
	}
}

func (s *Service) remove(ctx context.Context, path string) {
	err := os.Remove(path)
	switch {
	case err == nil:
		slog.DebugContext(ctx, "temporary file removed", "path", path)
	case errors.Is(err, fs.ErrNotExist):
	default:
		slog.WarnContext(ctx, "failed to remove temporary file", "path", path, "error", err)
		if s.recorder != nil {
			s.recorder.CleanupFailed()
		}
	}
}

func (s *Service) record(result string) {
	if s.recorder != nil {
		s.recorder.Result(result)
	}
}
