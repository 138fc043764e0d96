package classifier

import (
	"context"
	"log/slog"
	"time"
)

// RetryClassifier retries transient classification failures with linear
// backoff (base delay × attempt number). Malformed responses and missing
// configuration fail immediately.
type RetryClassifier struct {
	inner      Classifier
	maxRetries int
	baseDelay  time.Duration
}

// NewRetryClassifier wraps inner with bounded retries.
func NewRetryClassifier(inner Classifier, maxRetries int, baseDelay time.Duration) *RetryClassifier {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &RetryClassifier{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// Classify delegates to the wrapped classifier, retrying retryable failures.
func (r *RetryClassifier) Classify(ctx context.Context, systemPrompt, userMessage string) (*ClassificationResult, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries+1; attempt++ {
		result, err := r.inner.Classify(ctx, systemPrompt, userMessage)
		if err == nil {
			return result, nil
		}
		lastErr = err

		cerr, ok := AsError(err)
		if !ok || !cerr.Retryable() || attempt > r.maxRetries {
			return nil, err
		}

		delay := r.baseDelay * time.Duration(attempt)
		slog.Warn("classification failed, retrying",
			"attempt", attempt,
			"max_retries", r.maxRetries,
			"code", cerr.Code,
			"delay_ms", delay.Milliseconds())

		select {
		case <-ctx.Done():
			return nil, Timeout("canceled while waiting to retry", ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

var _ Classifier = (*RetryClassifier)(nil)
