package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingProvider(name string, results ...Result[string]) (Provider[string, string], *int) {
	calls := new(int)
	return Provider[string, string]{
		Name: name,
		Attempt: func(_ context.Context, _ string) Result[string] {
			r := results[min(*calls, len(results)-1)]
			*calls++
			return r
		},
	}, calls
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func TestFatalProviderThenRetryingProvider(t *testing.T) {
	a, aCalls := countingProvider("a", Abort[string](errors.New("billing hard limit")))
	b, bCalls := countingProvider("b",
		Retry[string](errors.New("timeout")),
		Success("from b"),
	)

	chain := &Chain[string, string]{
		Providers: []Provider[string, string]{a, b},
		Final:     func(string) (string, error) { return "local", nil },
		sleep:     func(time.Duration) {},
	}

	out, attempts, err := chain.Run(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "from b", out)
	assert.Equal(t, 1, *aCalls, "fatal failure must not be retried")
	assert.Equal(t, 2, *bCalls)

	require.Len(t, attempts, 3)
	assert.Equal(t, Attempt{Provider: "a", Number: 1, Outcome: Fatal, Detail: "billing hard limit"}, attempts[0])
	assert.Equal(t, Retryable, attempts[1].Outcome)
	assert.Equal(t, Attempt{Provider: "b", Number: 2, Outcome: OK}, attempts[2])
}

func TestExhaustedChainUsesDeterministicFinal(t *testing.T) {
	a, aCalls := countingProvider("a", Retry[string](errors.New("down")))

	chain := &Chain[string, string]{
		Providers: []Provider[string, string]{a},
		Final:     func(in string) (string, error) { return "local:" + in, nil },
		sleep:     func(time.Duration) {},
	}

	out, attempts, err := chain.Run(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "local:x", out)
	assert.Equal(t, DefaultRetries, *aCalls)
	assert.Equal(t, "fallback", attempts[len(attempts)-1].Provider)
}

func TestFirstSuccessShortCircuits(t *testing.T) {
	a, _ := countingProvider("a", Success("first"))
	b, bCalls := countingProvider("b", Success("unused"))

	chain := &Chain[string, string]{
		Providers: []Provider[string, string]{a, b},
		Final:     func(string) (string, error) { return "", errors.New("unreachable") },
		sleep:     func(time.Duration) {},
	}

	out, attempts, err := chain.Run(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "first", out)
	assert.Zero(t, *bCalls)
	assert.Len(t, attempts, 1)
}

func TestFinalFailureIsADefect(t *testing.T) {
	chain := &Chain[string, string]{
		Final: func(string) (string, error) { return "", errors.New("disk gone") },
		sleep: func(time.Duration) {},
	}
	_, _, err := chain.Run(context.Background(), "x")
	assert.ErrorIs(t, err, ErrFinalFailed)
}

func TestRetryDelaysBetweenAttemptsOnly(t *testing.T) {
	a, _ := countingProvider("a", Retry[string](errors.New("busy")))
	slept := 0
	chain := &Chain[string, string]{
		Providers: []Provider[string, string]{a},
		Final:     func(string) (string, error) { return "ok", nil },
		sleep:     func(time.Duration) { slept++ },
	}
	_, _, err := chain.Run(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, DefaultRetries-1, slept, "no sleep after a provider's last attempt")
}
