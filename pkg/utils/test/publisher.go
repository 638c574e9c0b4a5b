package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/verde/pkg/eventstream"
)

// MockPublisher records published exchange events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ExchangeRecordedEvent

	// Err is returned by PublishExchange when set.
	Err error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishExchange(_ context.Context, event *eventstream.ExchangeRecordedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// Events returns the published events in order.
func (m *MockPublisher) Events() []*eventstream.ExchangeRecordedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.ExchangeRecordedEvent(nil), m.events...)
}
