package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/videotranscriber/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func statusResponder(code int) roundTripFunc {
	return func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: code,
			Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader("")),
			Request:    r,
		}, nil
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		observed int
		kind     Kind
		status   int
	}{
		{"status error 429", &StatusError{Code: 429}, 0, KindRetryable, 429},
		{"wrapped status error 429", fmt.Errorf("download: %w", &StatusError{Code: 429}), 0, KindRetryable, 429},
		{"observed 429", errors.New("unexpected status code"), 429, KindRetryable, 429},
		{"yt-dlp text", errors.New("ERROR: unable to download webpage: HTTP Error 429: Too Many Requests"), 0, KindRetryable, 429},
		{"status error 403", &StatusError{Code: 403}, 0, KindFatal, 403},
		{"observed 500", errors.New("boom"), 500, KindFatal, 500},
		{"plain error", errors.New("malformed url"), 0, KindFatal, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := classify(tt.err, tt.observed)
			assert.Equal(t, tt.kind, out.Kind)
			assert.Equal(t, tt.status, out.Status)
			assert.Equal(t, tt.err.Error(), out.Reason)
			assert.False(t, out.NoAudio)
		})
	}
}

func TestAudioOnly(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`},
	}

	f, ok := audioOnly(formats)
	require.True(t, ok)
	assert.Equal(t, 140, f.ItagNo)

	_, ok = audioOnly(formats[:1])
	assert.False(t, ok)
}

func TestYouTubeFetcherRateLimited(t *testing.T) {
	f := NewYouTubeFetcher(statusResponder(http.StatusTooManyRequests), 0)
	dest := filepath.Join(t.TempDir(), "audio.mp4")

	out := f.Fetch(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", dest)

	assert.Equal(t, KindRetryable, out.Kind)
	assert.Equal(t, http.StatusTooManyRequests, out.Status)
}

func TestYouTubeFetcherForbiddenIsFatal(t *testing.T) {
	f := NewYouTubeFetcher(statusResponder(http.StatusForbidden), 0)
	dest := filepath.Join(t.TempDir(), "audio.mp4")

	out := f.Fetch(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", dest)

	assert.Equal(t, KindFatal, out.Kind)
	assert.False(t, out.NoAudio)
}

func TestIsFormatUnavailable(t *testing.T) {
	assert.True(t, isFormatUnavailable("ERROR: [youtube] abc: Requested format is not available. Use --list-formats"))
	assert.False(t, isFormatUnavailable("ERROR: HTTP Error 403: Forbidden"))
}

func TestNewBackends(t *testing.T) {
	f, err := New(config.FetchConfig{Backend: "youtube"})
	require.NoError(t, err)
	assert.Equal(t, "youtube", f.Name())

	f, err = New(config.FetchConfig{Backend: "ytdlp", YTDLPBin: "/usr/bin/yt-dlp"})
	require.NoError(t, err)
	assert.Equal(t, "ytdlp", f.Name())

	_, err = New(config.FetchConfig{Backend: "ftp"})
	assert.Error(t, err)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success: /tmp/a.mp4", Success("/tmp/a.mp4").String())
	assert.Equal(t, "retryable (status 429): slow down", Retryable("slow down", 429).String())
	assert.Equal(t, "fatal: no audio stream", NoAudioStream().String())
}
