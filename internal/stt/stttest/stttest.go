// Package stttest provides a stub stt.Provider for tests.
package stttest

import (
	"context"
	"os"
	"sync"

	"github.com/nikhilbhutani/videotranscriber/internal/stt"
)

// Provider returns Text, or Err when set. It checks that the audio file
// exists at call time.
type Provider struct {
	Text string
	Err  error

	mu       sync.Mutex
	requests []stt.TranscriptionRequest
}

func (p *Provider) Name() string { return "stub" }

func (p *Provider) Transcribe(ctx context.Context, req stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if _, err := os.Stat(req.FilePath); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, p.Err
	}
	return &stt.TranscriptionResponse{Text: p.Text}, nil
}

// Paths lists the audio path of every call.
func (p *Provider) Paths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var paths []string
	for _, r := range p.requests {
		paths = append(paths, r.FilePath)
	}
	return paths
}

// Requests returns every request the stub received.
func (p *Provider) Requests() []stt.TranscriptionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]stt.TranscriptionRequest(nil), p.requests...)
}
