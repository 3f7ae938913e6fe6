// Package fetchtest provides a scripted fetch.Fetcher for tests.
package fetchtest

import (
	"context"
	"os"
	"sync"

	"github.com/nikhilbhutani/videotranscriber/internal/fetch"
)

// Fetcher returns its scripted outcomes in order and repeats the last one.
// On a success outcome it writes Content to the destination path, like a
// real download would.
type Fetcher struct {
	Outcomes []fetch.Outcome
	Content  []byte

	mu    sync.Mutex
	calls int
	paths []string
}

func New(outcomes ...fetch.Outcome) *Fetcher {
	return &Fetcher{Outcomes: outcomes, Content: []byte("fake audio")}
}

func (f *Fetcher) Name() string { return "fake" }

func (f *Fetcher) Fetch(ctx context.Context, sourceURL, destPath string) fetch.Outcome {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.paths = append(f.paths, destPath)
	f.mu.Unlock()

	if len(f.Outcomes) == 0 {
		return fetch.Fatal("no scripted outcome", 0)
	}
	if i >= len(f.Outcomes) {
		i = len(f.Outcomes) - 1
	}

	out := f.Outcomes[i]
	if out.OK() {
		if err := os.WriteFile(destPath, f.Content, 0o600); err != nil {
			return fetch.Fatal(err.Error(), 0)
		}
		out.Path = destPath
	}
	return out
}

// Calls reports how many times Fetch ran.
func (f *Fetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Paths lists the destination path of every call.
func (f *Fetcher) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}
