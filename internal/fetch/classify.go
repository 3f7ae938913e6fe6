package fetch

import (
	"errors"
	"net/http"
	"strings"
	"sync"
)

// StatusError is an HTTP failure reported by a download provider.
type StatusError struct {
	Code int
	Msg  string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return http.StatusText(e.Code)
}

// statusTransport remembers the last non-2xx status seen during one fetch, so
// a 429 can be classified even when the provider library flattens its error.
type statusTransport struct {
	base http.RoundTripper

	mu   sync.Mutex
	last int
}

func newStatusTransport(base http.RoundTripper) *statusTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &statusTransport{base: base}
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil && resp.StatusCode >= 400 {
		t.mu.Lock()
		t.last = resp.StatusCode
		t.mu.Unlock()
	}
	return resp, err
}

func (t *statusTransport) lastStatus() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// classify turns a provider error into a retryable or fatal outcome. Only a
// rate limit (429) is retryable; everything else is fatal.
func classify(err error, observed int) Outcome {
	status := observed
	var se *StatusError
	if errors.As(err, &se) {
		status = se.Code
	} else if code := statusFromText(err.Error()); code != 0 {
		status = code
	}

	if status == http.StatusTooManyRequests {
		return Retryable(err.Error(), status)
	}
	return Fatal(err.Error(), status)
}

// statusFromText recognises the rate-limit markers yt-dlp and YouTube put in
// their error messages.
func statusFromText(msg string) int {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "http error 429") ||
		strings.Contains(lower, "too many requests") ||
		strings.Contains(lower, "status code: 429") {
		return http.StatusTooManyRequests
	}
	return 0
}
