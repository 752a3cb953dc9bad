// Package llm provides the model-client boundary for the extraction
// pipeline: upload a mini-PDF plus a prompt, get the raw text response back.
//
// Clients own the retry policy (a small fixed attempt count with linearly
// increasing backoff). Everything past the raw text — JSON extraction,
// schema validation, issue accounting — belongs to internal/response.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client sends one PDF chunk and the extraction prompt to a model and
// returns the model's raw text output.
type Client interface {
	// GenerateChunk blocks until the model responds or the retry budget is
	// exhausted, in which case it returns an error. Callers are expected to
	// downgrade that error to a per-chunk placeholder so the run continues.
	GenerateChunk(ctx context.Context, pdfBytes []byte, prompt string) (string, error)
}

// Common client errors
var (
	// ErrMissingAPIKey is returned when the engine's API key is not configured.
	ErrMissingAPIKey = errors.New("missing API key for the selected engine")

	// ErrEmptyResponse is returned when the model answered with no text at all.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrRequestFailed is returned after the retry budget is exhausted.
	ErrRequestFailed = errors.New("model request failed after all retries")
)

// RetryableError marks a transport failure worth retrying (rate limits,
// server-side errors).
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable api error (status %d): %s", e.StatusCode, e.Message)
}

// backoff sleeps 2s, 4s, 6s, ... between attempts, honoring ctx cancellation.
func backoff(ctx context.Context, attempt int) error {
	select {
	case <-time.After(time.Duration(attempt+1) * 2 * time.Second):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
