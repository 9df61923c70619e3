package audit

import (
	"context"
	"errors"
	"log/slog"
)

// MultiSink fans events out to several sinks. Record keeps going after a
// sink fails and returns the joined errors.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines the given sinks. Nil sinks are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiSink{sinks: out}
}

// Record delivers the event to every sink.
func (m *MultiSink) Record(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink, returning the joined errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Sink = (*MultiSink)(nil)

// SlogSink writes events through a structured logger at info level.
type SlogSink struct {
	log *slog.Logger
}

// NewSlogSink wraps the given logger. A nil logger uses slog.Default.
func NewSlogSink(log *slog.Logger) *SlogSink {
	if log == nil {
		log = slog.Default()
	}
	return &SlogSink{log: log}
}

// Record logs the event fields.
func (s *SlogSink) Record(ctx context.Context, e Event) error {
	attrs := []any{
		"event_id", e.ID,
		"action", e.Action,
		"id_hash", e.IDHash,
		"success", e.Success,
	}
	for k, v := range e.Metadata {
		attrs = append(attrs, "meta_"+k, v)
	}
	s.log.InfoContext(ctx, "audit", attrs...)
	return nil
}

// Close is a no-op.
func (s *SlogSink) Close() error { return nil }

var _ Sink = (*SlogSink)(nil)
