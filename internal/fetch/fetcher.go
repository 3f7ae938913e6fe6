// Package fetch resolves the audio-only stream of a video URL and downloads it
// to a caller-owned path. Every failure is classified as retryable (HTTP 429)
// or fatal; retrying is left to the retry package.
package fetch

import (
	"fmt"

	"github.com/nikhilbhutani/videotranscriber/internal/config"
)

// New builds the fetcher selected by cfg.Backend.
func New(cfg config.FetchConfig) (Fetcher, error) {
	switch cfg.Backend {
	case "youtube", "":
		return NewYouTubeFetcher(nil, cfg.Timeout), nil
	case "ytdlp":
		return NewYTDLPFetcher(cfg.YTDLPBin), nil
	default:
		return nil, fmt.Errorf("unknown fetch backend %q", cfg.Backend)
	}
}
