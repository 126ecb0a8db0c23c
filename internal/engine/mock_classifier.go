package engine

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/persona"
)

// MockClassifier is a test implementation of persona.Classifier.
// It returns a fixed result, a fixed error, or blocks for Delay.
type MockClassifier struct {
	Err    error
	calls  []persona.Request
	Result model.ClassifierResult
	Delay  time.Duration
	mu     sync.Mutex
}

// NewMockClassifier creates a mock that always returns result.
func NewMockClassifier(result model.ClassifierResult) *MockClassifier {
	return &MockClassifier{Result: result}
}

// Classify records the request and returns the configured outcome.
func (m *MockClassifier) Classify(ctx context.Context, req persona.Request) (model.ClassifierResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	delay, result, err := m.Delay, m.Result, m.Err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return model.ClassifierResult{}, ctx.Err()
		}
	}

	if err != nil {
		return model.ClassifierResult{}, err
	}
	return result, nil
}

// Calls returns a copy of the recorded requests.
func (m *MockClassifier) Calls() []persona.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]persona.Request, len(m.calls))
	copy(out, m.calls)
	return out
}
