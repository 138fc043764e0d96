package classifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyClassifier fails the first n calls with the given error.
type flakyClassifier struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
}

func (f *flakyClassifier) Classify(_ context.Context, _, _ string) (*ClassificationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &ClassificationResult{Intent: IntentChitchat, Confidence: 0.9}, nil
}

func TestRetryClassifier_RecoverFromTransientFailure(t *testing.T) {
	inner := &flakyClassifier{failures: 2, err: Unreachable("connection refused", nil)}
	r := NewRetryClassifier(inner, 2, time.Millisecond)

	result, err := r.Classify(context.Background(), SystemPrompt, "hi")
	require.NoError(t, err)
	assert.Equal(t, IntentChitchat, result.Intent)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryClassifier_ExhaustsRetries(t *testing.T) {
	inner := &flakyClassifier{failures: 10, err: Timeout("deadline exceeded", nil)}
	r := NewRetryClassifier(inner, 2, time.Millisecond)

	_, err := r.Classify(context.Background(), SystemPrompt, "hi")
	require.Error(t, err)
	cerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeTimeout, cerr.Code)
	// 1 initial attempt + 2 retries
	assert.Equal(t, 3, inner.calls)
}

func TestRetryClassifier_NoRetryOnMalformedResponse(t *testing.T) {
	inner := &flakyClassifier{failures: 10, err: MalformedResponse("bad json", nil)}
	r := NewRetryClassifier(inner, 3, time.Millisecond)

	_, err := r.Classify(context.Background(), SystemPrompt, "hi")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryClassifier_NoRetryOnNotConfigured(t *testing.T) {
	inner := &flakyClassifier{failures: 10, err: NotConfigured("no key")}
	r := NewRetryClassifier(inner, 3, time.Millisecond)

	_, err := r.Classify(context.Background(), SystemPrompt, "hi")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryClassifier_ContextCanceledDuringBackoff(t *testing.T) {
	inner := &flakyClassifier{failures: 10, err: Unreachable("down", nil)}
	r := NewRetryClassifier(inner, 3, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.Classify(ctx, SystemPrompt, "hi")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
