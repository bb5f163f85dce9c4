package push

import (
	"context"
	"errors"
	"sync"
)

// MockClient records notifications for tests and local development.
type MockClient struct {
	mu    sync.Mutex
	Calls []Notification

	// FailNext makes the next Send return an error and then resets.
	FailNext bool

	// InvalidTokens is returned by every successful Send.
	InvalidTokens []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		Calls: make([]Notification, 0),
	}
}

func (m *MockClient) Send(ctx context.Context, n Notification) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, n)

	if m.FailNext {
		m.FailNext = false
		return nil, errors.New("mock push send failure")
	}

	return m.InvalidTokens, nil
}
