package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/clerk/pkg/eventstream"
)

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.InvoiceStoredEvent

	// Err is returned by every PublishInvoice call when set.
	Err error

	// Block, when non-nil, makes PublishInvoice wait until it is closed.
	Block chan struct{}

	closed bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishInvoice(ctx context.Context, event *eventstream.InvoiceStoredEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of the events published so far.
func (m *MockPublisher) Events() []*eventstream.InvoiceStoredEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*eventstream.InvoiceStoredEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
