package llm

import (
	"context"
	"fmt"
	"time"

	"satire-shorts/recovery"
)

// DefaultJSONAttempts bounds the generate-then-recover loop. Recovery
// handles most formatting damage, so failures here usually mean the model
// produced no structure at all and a fresh completion is the only fix.
const DefaultJSONAttempts = 3

const jsonRetryDelay = 500 * time.Millisecond

// JSONClient wraps a Generator with structured-output recovery. Each
// attempt is one full round trip; the raw text goes through recovery
// before the attempt counts as failed.
type JSONClient struct {
	Gen      Generator
	Attempts int

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewJSONClient wraps gen with the default attempt budget.
func NewJSONClient(gen Generator) *JSONClient {
	return &JSONClient{Gen: gen, Attempts: DefaultJSONAttempts}
}

// GenerateJSON generates text and parses it into a JSON value, retrying
// the full round trip when both parsing and recovery fail. The returned
// value is a decoded any (map, slice, string or number), never raw text.
func (c *JSONClient) GenerateJSON(ctx context.Context, prompt string) (any, error) {
	attempts := c.Attempts
	if attempts <= 0 {
		attempts = DefaultJSONAttempts
	}
	sleep := c.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for n := 1; n <= attempts; n++ {
		raw, err := c.Gen.Generate(ctx, prompt)
		if err != nil {
			lastErr = err
		} else {
			val, rerr := recovery.Recover(raw)
			if rerr == nil {
				return val, nil
			}
			lastErr = rerr
		}
		if n < attempts {
			sleep(jsonRetryDelay)
		}
	}
	return nil, fmt.Errorf("json generation failed after %d attempts: %w", attempts, lastErr)
}
