package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/sirupsen/logrus"
)

// maxRetryDelay caps the exponential backoff
const maxRetryDelay = 30 * time.Second

// RetryMiddleware creates a genkit middleware that retries failed model calls.
// maxAttempts of 1 disables retries.
func RetryMiddleware(log logrus.FieldLogger, maxAttempts int, initialDelay time.Duration) ai.ModelMiddleware {
	return func(next ai.ModelFunc) ai.ModelFunc {
		return func(ctx context.Context, req *ai.ModelRequest, cb ai.ModelStreamCallback) (*ai.ModelResponse, error) {
			var resp *ai.ModelResponse
			err := withRetry(ctx, log, maxAttempts, initialDelay, func() error {
				var err error
				resp, err = next(ctx, req, cb)
				return err
			})
			return resp, err
		}
	}
}

// withRetry runs fn up to maxAttempts times with exponential backoff: 1s → 2s → 4s (cap at 30s)
func withRetry(
	ctx context.Context,
	log logrus.FieldLogger,
	maxAttempts int,
	initialDelay time.Duration,
	fn func() error,
) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				log.Infof("✅ LLM retry succeeded on attempt %d/%d", attempt, maxAttempts)
			}
			return nil
		}
		lastErr = err

		if maxAttempts == 1 {
			return err
		}

		// Last attempt - no delay
		if attempt == maxAttempts {
			log.WithError(err).Errorf("❌ LLM: all retry attempts exhausted (%d/%d)", attempt, maxAttempts)
			break
		}

		delay := initialDelay * time.Duration(1<<uint(attempt-1))
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}

		log.WithError(err).Warnf("⚠️ LLM error on attempt %d/%d, retrying in %v", attempt, maxAttempts, delay)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
