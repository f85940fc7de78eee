package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// IsRetryable reports whether a transport error is worth retrying:
// network resets, rate limits, and server-side failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	for _, marker := range []string{
		"ECONNRESET", "ETIMEDOUT", "connection reset", "connection refused",
		"429", "rate limit",
		"500", "502", "503", "504",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// retryingModel wraps a ChatModel with exponential backoff. The
// orchestration core never retries model calls itself; retry policy lives
// entirely in this collaborator wrapper.
type retryingModel struct {
	inner      ChatModel
	maxRetries int
}

// WithRetry wraps a chat model so transient transport faults are retried
// with exponential backoff (1s, 2s, 4s, ...). Permanent errors and context
// cancellation pass through immediately.
func WithRetry(inner ChatModel, maxRetries int) ChatModel {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &retryingModel{inner: inner, maxRetries: maxRetries}
}

func (m *retryingModel) Name() string {
	return m.inner.Name()
}

func (m *retryingModel) Invoke(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt < m.maxRetries; attempt++ {
		response, err := m.inner.Invoke(ctx, req)
		if err == nil {
			return response, nil
		}

		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
		if attempt == m.maxRetries-1 {
			break
		}

		delay := time.Duration(1<<attempt) * time.Second
		log.Info().
			Str("provider", m.inner.Name()).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(err).
			Msg("Retrying model call after transient error")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", m.maxRetries, lastErr)
}
