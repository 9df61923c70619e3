package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileSink appends events to a file as JSON lines.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewFileSink opens (or creates) the file at path for appending.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	return &FileSink{file: f, enc: json.NewEncoder(f)}, nil
}

// Record writes the event as one JSON line.
func (s *FileSink) Record(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return fmt.Errorf("audit: sink is closed")
	}
	if err := s.enc.Encode(e); err != nil {
		return fmt.Errorf("audit: encode event: %w", err)
	}
	return nil
}

// Close closes the underlying file. Further Records fail.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

var _ Sink = (*FileSink)(nil)
