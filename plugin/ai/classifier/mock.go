package classifier

import (
	"context"
	"sync"
)

// MockClassifier is a mock implementation of Classifier for testing.
type MockClassifier struct {
	mu sync.Mutex

	// Result is returned for every call unless an override matches.
	Result *ClassificationResult
	// Err is returned for every call when set.
	Err error
	// Overrides allows tests to script results per user message.
	Overrides map[string]*ClassificationResult
	// ErrOverrides allows tests to script failures per user message.
	ErrOverrides map[string]error
	// Calls records the user messages classified, in order.
	Calls []string
}

// NewMockClassifier creates a new MockClassifier.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		Overrides:    make(map[string]*ClassificationResult),
		ErrOverrides: make(map[string]error),
	}
}

// Classify returns the scripted result for userMessage.
func (m *MockClassifier) Classify(_ context.Context, _, userMessage string) (*ClassificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, userMessage)

	if err, ok := m.ErrOverrides[userMessage]; ok {
		return nil, err
	}
	if result, ok := m.Overrides[userMessage]; ok {
		return result, nil
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &ClassificationResult{
		Intent:     IntentChitchat,
		RawIntent:  string(IntentChitchat),
		Confidence: 0.9,
		ReplyText:  "Hello! How can I help you today?",
	}, nil
}

// CallCount returns the number of classification calls made.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

var _ Classifier = (*MockClassifier)(nil)
