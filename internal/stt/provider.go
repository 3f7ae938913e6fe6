// Package stt holds the speech-to-text engines. An engine is built once at
// startup and shared by every request.
package stt

import (
	"context"
	"fmt"

	"github.com/nikhilbhutani/videotranscriber/internal/config"
)

// TranscriptionRequest holds the parameters for audio transcription.
type TranscriptionRequest struct {
	FilePath string `json:"file_path"`
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}

// New builds the provider selected by cfg.Backend, wrapped in a lock when
// cfg.Serialize is set.
func New(cfg config.STTConfig) (Provider, error) {
	var p Provider
	switch cfg.Backend {
	case "openai":
		p = NewOpenAISTT(OpenAISTTConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
	case "local":
		p = NewLocalSTT(LocalSTTConfig{
			BaseURL: cfg.LocalBaseURL,
			Model:   cfg.LocalModel,
		})
	default:
		return nil, fmt.Errorf("unknown stt backend %q", cfg.Backend)
	}

	if cfg.Serialize {
		p = NewSerialized(p)
	}
	return p, nil
}
