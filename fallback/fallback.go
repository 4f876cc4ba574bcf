// Package fallback runs an ordered list of providers until one succeeds,
// ending in a deterministic producer that has no external dependency.
// Script generation and image generation both instantiate this chain.
//
// Each attempt returns a tagged Result rather than a bare error, so the
// chain is a plain loop over explicit outcomes: a retryable failure burns
// one of the provider's attempts, a fatal failure skips straight to the
// next provider.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Outcome tags a single provider attempt.
type Outcome int

const (
	// OK means the attempt produced a usable value.
	OK Outcome = iota
	// Retryable means the attempt failed but the same provider may succeed
	// if tried again (timeouts, rate limits, flaky upstreams).
	Retryable
	// Fatal means the provider cannot succeed this run (billing, auth,
	// missing credentials) and must be skipped without further retries.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "success"
	case Retryable:
		return "retryable_failure"
	case Fatal:
		return "fatal_failure"
	}
	return "unknown"
}

// Result is the tagged outcome of one provider attempt.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

// Success wraps a usable value.
func Success[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: OK}
}

// Retry wraps a transient failure.
func Retry[T any](err error) Result[T] {
	return Result[T]{Outcome: Retryable, Err: err}
}

// Abort wraps a failure that disqualifies the provider for this run.
func Abort[T any](err error) Result[T] {
	return Result[T]{Outcome: Fatal, Err: err}
}

// Provider is one interchangeable backend in the chain.
type Provider[In, Out any] struct {
	Name    string
	Attempt func(ctx context.Context, in In) Result[Out]
}

// Attempt records what happened on one provider call. Attempts live only
// for the duration of a single Run and are returned for logging.
type Attempt struct {
	Provider string
	Number   int
	Outcome  Outcome
	Detail   string
}

// ErrFinalFailed reports that even the deterministic final producer failed.
// This is a logic defect, not an operational condition.
var ErrFinalFailed = errors.New("deterministic fallback producer failed")

// DefaultRetries is the per-provider attempt count.
const DefaultRetries = 2

// DefaultDelay separates attempts against the same provider.
const DefaultDelay = 2 * time.Second

// Chain tries Providers in order, then falls back to Final. A Chain value
// carries no cross-run state and holds no locks, so independent scenes can
// each run their own chain concurrently.
type Chain[In, Out any] struct {
	Providers []Provider[In, Out]
	// Final must always succeed; it has no external dependency.
	Final   func(in In) (Out, error)
	Retries int
	Delay   time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// Run executes the chain. Ordinary provider failure never surfaces as an
// error; the returned error is non-nil only when Final itself fails.
func (c *Chain[In, Out]) Run(ctx context.Context, in In) (Out, []Attempt, error) {
	retries := c.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}
	delay := c.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	sleep := c.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var attempts []Attempt
	for _, p := range c.Providers {
		for n := 1; n <= retries; n++ {
			res := p.Attempt(ctx, in)
			rec := Attempt{Provider: p.Name, Number: n, Outcome: res.Outcome}
			if res.Err != nil {
				rec.Detail = res.Err.Error()
			}
			attempts = append(attempts, rec)

			if res.Outcome == OK {
				return res.Value, attempts, nil
			}
			if res.Outcome == Fatal {
				break // provider disqualified, move on
			}
			if n < retries {
				sleep(delay)
			}
		}
	}

	out, err := c.Final(in)
	if err != nil {
		var zero Out
		return zero, attempts, fmt.Errorf("%w: %v", ErrFinalFailed, err)
	}
	attempts = append(attempts, Attempt{Provider: "fallback", Number: 1, Outcome: OK})
	return out, attempts, nil
}
