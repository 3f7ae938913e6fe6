package stt

import "context"

// LocalSTTConfig holds configuration for the local whisper server backend.
type LocalSTTConfig struct {
	BaseURL string // default: "http://localhost:8178/v1"
	Model   string // default: "tiny"
}

// LocalSTT wraps OpenAISTT pointing at a local whisper server that speaks the
// OpenAI audio API (whisper.cpp server, faster-whisper-server).
type LocalSTT struct {
	*OpenAISTT
}

// NewLocalSTT creates a LocalSTT backed by a local whisper HTTP server.
func NewLocalSTT(cfg LocalSTTConfig) *LocalSTT {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8178/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "tiny"
	}
	return &LocalSTT{
		OpenAISTT: NewOpenAISTT(OpenAISTTConfig{
			BaseURL: baseURL,
			Model:   model,
			// No API key needed for local server
		}),
	}
}

func (l *LocalSTT) Name() string { return "local-whisper" }

func (l *LocalSTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	return l.OpenAISTT.Transcribe(ctx, req)
}
