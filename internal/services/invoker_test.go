package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerlens/career-mentor/internal/models"
)

// scriptedGenerator plays back a per-model script of replies and errors.
type scriptedGenerator struct {
	mu      sync.Mutex
	scripts map[string]func(call int) (string, error)
	calls   map[string]int
}

func newScriptedGenerator() *scriptedGenerator {
	return &scriptedGenerator{
		scripts: make(map[string]func(call int) (string, error)),
		calls:   make(map[string]int),
	}
}

func (g *scriptedGenerator) script(modelID string, fn func(call int) (string, error)) {
	g.scripts[modelID] = fn
}

func (g *scriptedGenerator) Generate(_ context.Context, modelID string, _ models.ModelRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls[modelID]++
	fn, ok := g.scripts[modelID]
	if !ok {
		return "", &PermanentError{Err: errors.New("unknown model")}
	}
	return fn(g.calls[modelID])
}

func (g *scriptedGenerator) callCount(modelID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[modelID]
}

func (g *scriptedGenerator) totalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

func TestInvokeFallsBackAfterTransientExhaustion(t *testing.T) {
	gen := newScriptedGenerator()
	gen.script("primary", func(int) (string, error) {
		return "", &TransientError{Err: errors.New("rate limited")}
	})
	gen.script("fallback", func(int) (string, error) {
		return "fallback reply", nil
	})

	maxRetries := 2
	invoker := NewModelInvoker(gen, []string{"primary", "fallback"}, maxRetries, time.Millisecond, false)

	reply, err := invoker.Invoke(context.Background(), models.ModelRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "fallback reply", reply)

	// maxRetries attempts on the primary, a single attempt on the fallback
	assert.Equal(t, maxRetries, gen.callCount("primary"))
	assert.Equal(t, 1, gen.callCount("fallback"))
	assert.Equal(t, maxRetries+1, gen.totalCalls())
}

func TestInvokePermanentFailureSkipsRetries(t *testing.T) {
	gen := newScriptedGenerator()
	gen.script("primary", func(int) (string, error) {
		return "", &PermanentError{Err: errors.New("invalid api key")}
	})
	gen.script("fallback", func(int) (string, error) {
		return "ok", nil
	})

	invoker := NewModelInvoker(gen, []string{"primary", "fallback"}, 3, time.Millisecond, false)

	reply, err := invoker.Invoke(context.Background(), models.ModelRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)

	// No retries for a permanent failure
	assert.Equal(t, 1, gen.callCount("primary"))
}

func TestInvokeTransientRecoveryWithinCandidate(t *testing.T) {
	gen := newScriptedGenerator()
	gen.script("primary", func(call int) (string, error) {
		if call == 1 {
			return "", &TransientError{Err: errors.New("timeout")}
		}
		return "recovered", nil
	})

	invoker := NewModelInvoker(gen, []string{"primary"}, 3, time.Millisecond, true)

	reply, err := invoker.Invoke(context.Background(), models.ModelRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, 2, gen.callCount("primary"))
}

func TestInvokeAllCandidatesExhausted(t *testing.T) {
	lastCause := errors.New("still overloaded")
	gen := newScriptedGenerator()
	gen.script("primary", func(int) (string, error) {
		return "", &TransientError{Err: errors.New("overloaded")}
	})
	gen.script("fallback", func(int) (string, error) {
		return "", &TransientError{Err: lastCause}
	})

	invoker := NewModelInvoker(gen, []string{"primary", "fallback"}, 2, time.Millisecond, false)

	_, err := invoker.Invoke(context.Background(), models.ModelRequest{Message: "hi"})
	require.Error(t, err)

	var allFailed *AllCandidatesError
	require.ErrorAs(t, err, &allFailed)
	assert.Equal(t, 4, allFailed.Attempts)
	assert.ErrorIs(t, allFailed, lastCause)
}

func TestInvokeHonorsContextCancellation(t *testing.T) {
	gen := newScriptedGenerator()
	gen.script("primary", func(int) (string, error) {
		return "", &TransientError{Err: errors.New("rate limited")}
	})

	ctx, cancel := context.WithCancel(context.Background())
	invoker := NewModelInvoker(gen, []string{"primary"}, 5, time.Hour, false)

	done := make(chan error, 1)
	go func() {
		_, err := invoker.Invoke(ctx, models.ModelRequest{Message: "hi"})
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("invoke did not abandon the retry loop on cancellation")
	}

	// The long backoff was abandoned, not waited out
	assert.Equal(t, 1, gen.callCount("primary"))
}
