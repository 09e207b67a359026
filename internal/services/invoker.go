package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"careerlens/career-mentor/internal/models"
)

// TransientError marks a failure worth retrying: rate limiting, timeouts,
// server-side faults.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient model failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError marks a failure that retrying cannot fix: bad API key,
// invalid argument, unknown model.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent model failure: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// AllCandidatesError reports that every candidate model was exhausted. It
// carries the last underlying cause for diagnostics.
type AllCandidatesError struct {
	Attempts int
	Last     error
}

func (e *AllCandidatesError) Error() string {
	return fmt.Sprintf("all candidate models failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *AllCandidatesError) Unwrap() error {
	return e.Last
}

// ModelInvoker is the single owner of retry and fallback policy. No other
// component retries model calls.
type ModelInvoker interface {
	Invoke(ctx context.Context, req models.ModelRequest) (string, error)
}

type modelInvoker struct {
	generator    Generator
	candidates   []string
	maxRetries   int
	initialDelay time.Duration
	exponential  bool
}

func NewModelInvoker(
	generator Generator,
	candidates []string,
	maxRetries int,
	initialDelay time.Duration,
	exponential bool,
) ModelInvoker {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &modelInvoker{
		generator:    generator,
		candidates:   candidates,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
		exponential:  exponential,
	}
}

// Invoke tries the candidate models in order; the first non-error reply
// wins. Transient failures are retried up to maxRetries attempts per
// candidate with backoff; permanent failures skip straight to the next
// candidate.
func (m *modelInvoker) Invoke(ctx context.Context, req models.ModelRequest) (string, error) {
	var lastErr error
	attempts := 0

	for _, modelID := range m.candidates {
		reply, candidateAttempts, err := m.invokeCandidate(ctx, modelID, req)
		attempts += candidateAttempts
		if err == nil {
			return reply, nil
		}

		if ctx.Err() != nil {
			return "", fmt.Errorf("model invocation cancelled: %w", ctx.Err())
		}

		log.Printf("⚠️ Model %s failed: %v. Falling back.\n", modelID, err)
		lastErr = err
	}

	return "", &AllCandidatesError{Attempts: attempts, Last: lastErr}
}

func (m *modelInvoker) invokeCandidate(ctx context.Context, modelID string, req models.ModelRequest) (string, int, error) {
	var lastErr error
	delay := m.initialDelay

	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		reply, err := m.generator.Generate(ctx, modelID, req)
		if err == nil {
			return reply, attempt, nil
		}

		lastErr = err

		var permErr *PermanentError
		if errors.As(err, &permErr) {
			return "", attempt, err
		}

		if attempt == m.maxRetries {
			break
		}

		// Backoff before the next attempt, abandoning the loop if the
		// caller's deadline expires first.
		select {
		case <-ctx.Done():
			return "", attempt, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		if m.exponential {
			delay *= 2
		}
	}

	return "", m.maxRetries, lastErr
}
