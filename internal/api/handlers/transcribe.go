package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/videotranscriber/internal/auth"
	"github.com/nikhilbhutani/videotranscriber/internal/transcriber"
)

const maxRequestBody = 1 << 20

const detailNoAudio = "Audio stream not found."

// Transcriber is the pipeline behind POST /transcribe.
type Transcriber interface {
	Transcribe(ctx context.Context, sourceURL string) (string, error)
}

type TranscribeRequest struct {
	YouTubeURL string `json:"youtube_url"`
}

type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}

type TranscribeHandler struct {
	svc Transcriber
}

func NewTranscribeHandler(svc Transcriber) *TranscribeHandler {
	return &TranscribeHandler{svc: svc}
}

// Transcribe downloads the audio of the given video and returns its transcript.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req TranscribeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	req.YouTubeURL = strings.TrimSpace(req.YouTubeURL)
	if req.YouTubeURL == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "youtube_url required")
		return
	}

	text, err := h.svc.Transcribe(r.Context(), req.YouTubeURL)
	if err != nil {
		status, detail := errorResponse(err)
		attrs := []any{
			"request_id", chimiddleware.GetReqID(r.Context()),
			"url", req.YouTubeURL,
			"status", status,
			"error", err,
		}
		if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
			attrs = append(attrs, "subject", claims.Subject)
		}
		slog.ErrorContext(r.Context(), "transcription request failed", attrs...)
		writeDetail(w, status, detail)
		return
	}

	writeJSON(w, http.StatusOK, TranscribeResponse{Transcript: text})
}

// errorResponse maps pipeline errors to the status and detail sent to the client.
func errorResponse(err error) (int, string) {
	var rl *transcriber.RateLimitedError
	switch {
	case errors.Is(err, transcriber.ErrNoAudioStream):
		return http.StatusBadRequest, detailNoAudio
	case errors.As(err, &rl):
		return http.StatusServiceUnavailable, rl.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
