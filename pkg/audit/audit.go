// Package audit provides the structured audit trail for identifier
// operations. The generator emits one event per generate/verify/parse call;
// events carry a hash of the identifier, never the identifier itself.
//
// Persistence is the host application's concern: this package defines the
// sink interface plus reference sinks (file, slog, fan-out, in-memory).
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the generator.
const (
	ActionGenerate = "generate"
	ActionVerify   = "verify"
	ActionParse    = "parse"
	ActionRevoke   = "revoke"
	ActionUnrevoke = "unrevoke"
)

// hashPrefixLen is the number of hex characters of the SHA-256 digest kept
// when hashing an identifier for the trail.
const hashPrefixLen = 16

// Event is a single audit record.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Time is when the event occurred.
	Time time.Time `json:"time"`

	// Action is one of the Action constants.
	Action string `json:"action"`

	// IDHash is the truncated SHA-256 of the identifier involved. The raw
	// identifier is never recorded.
	IDHash string `json:"idHash"`

	// Success reports whether the operation succeeded.
	Success bool `json:"success"`

	// Metadata carries optional contextual key-value pairs (mode, reason
	// codes, lengths).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewEvent creates an event stamped with a fresh UUID and the current time.
func NewEvent(action, idHash string, success bool) Event {
	return Event{
		ID:      uuid.NewString(),
		Time:    time.Now(),
		Action:  action,
		IDHash:  idHash,
		Success: success,
	}
}

// WithMetadata attaches a metadata map to the event.
func (e Event) WithMetadata(md map[string]string) Event {
	e.Metadata = md
	return e
}

// HashID hashes an identifier for inclusion in the trail: SHA-256, hex,
// first 16 characters. Revocation storage uses the same form so audit
// records and revocation entries correlate.
func HashID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])[:hashPrefixLen]
}

// Sink receives audit events. Implementations must be safe for concurrent
// use and should honor ctx cancellation when they do I/O.
type Sink interface {
	Record(ctx context.Context, e Event) error
	Close() error
}

// NoOpSink discards all events. Used when auditing is disabled.
type NoOpSink struct{}

// Record discards the event. Always returns nil.
func (NoOpSink) Record(context.Context, Event) error { return nil }

// Close is a no-op. Always returns nil.
func (NoOpSink) Close() error { return nil }

var _ Sink = NoOpSink{}
