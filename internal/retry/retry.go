// Package retry wraps a download attempt with bounded exponential backoff.
// Only retryable outcomes are retried; success and fatal outcomes return at
// once.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/videotranscriber/internal/fetch"
)

const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 10 * time.Second
	backoffFactor       = 2
)

// Policy bounds the attempts and sets the first backoff delay.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// Operation is a single download attempt.
type Operation func(ctx context.Context) fetch.Outcome

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Observer receives a callback for every attempt and every backoff.
type Observer interface {
	Attempt(o fetch.Outcome)
	Backoff(d time.Duration)
}

type Controller struct {
	policy   Policy
	sleep    SleepFunc
	observer Observer
}

// NewController applies defaults for zero policy fields.
func NewController(p Policy) *Controller {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultInitialDelay
	}
	return &Controller{policy: p, sleep: sleepCtx}
}

// WithSleep replaces the backoff sleep. Tests use it to record delays.
func (c *Controller) WithSleep(fn SleepFunc) *Controller {
	c.sleep = fn
	return c
}

func (c *Controller) WithObserver(o Observer) *Controller {
	c.observer = o
	return c
}

func (c *Controller) Policy() Policy { return c.policy }

// Do runs op until it succeeds, fails fatally, or the attempts run out. An
// exhausted retry sequence is reported as a fatal outcome with Exhausted set,
// never as success.
func (c *Controller) Do(ctx context.Context, op Operation) fetch.Outcome {
	delay := c.policy.InitialDelay

	var last fetch.Outcome
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		last = op(ctx)
		if c.observer != nil {
			c.observer.Attempt(last)
		}
		if last.Kind != fetch.KindRetryable {
			return last
		}

		if attempt == c.policy.MaxAttempts {
			break
		}

		slog.Warn("download rate limited, backing off",
			"attempt", attempt,
			"max_attempts", c.policy.MaxAttempts,
			"delay", delay,
			"status", last.Status,
			"reason", last.Reason,
		)
		if c.observer != nil {
			c.observer.Backoff(delay)
		}
		if err := c.sleep(ctx, delay); err != nil {
			return fetch.Fatal(fmt.Sprintf("retry aborted: %v", err), last.Status)
		}
		delay *= backoffFactor
	}

	out := fetch.Fatal(fmt.Sprintf("exhausted retries: %s", last.Reason), last.Status)
	out.Exhausted = true
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
