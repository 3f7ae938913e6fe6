package stt

import (
	"context"
	"sync"
)

// Serialized allows one transcription at a time across the whole process,
// for engines that hold a single model instance.
type Serialized struct {
	mu    sync.Mutex
	inner Provider
}

func NewSerialized(p Provider) *Serialized {
	return &Serialized{inner: p}
}

func (s *Serialized) Name() string { return s.inner.Name() }

func (s *Serialized) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.inner.Transcribe(ctx, req)
}
