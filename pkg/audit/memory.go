package audit

import (
	"context"
	"sync"
)

// MemorySink retains events in memory. Intended for tests and single-process
// inspection, not durable storage.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Record appends the event.
func (s *MemorySink) Record(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Events returns a copy of the recorded events in order.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Close is a no-op.
func (s *MemorySink) Close() error { return nil }

var _ Sink = (*MemorySink)(nil)
