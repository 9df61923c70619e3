package idgen

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the generation pipeline.
var (
	// ErrGenerationExhausted is returned when the collision-avoidance retry
	// budget is spent without producing an unseen identifier.
	ErrGenerationExhausted = errors.New("idgen: collision retry budget exhausted")

	// ErrRateLimited is returned when the configured rate limiter rejects a
	// request before any generation work begins.
	ErrRateLimited = errors.New("idgen: rate limited")
)

// ConfigError reports an invalid configuration. It is always raised before
// any cryptographic work starts; configurations are never silently corrected.
type ConfigError struct {
	// Field names the offending configuration field, when one applies.
	Field string

	// Message is a human-readable explanation.
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("idgen: config %s: %s", e.Field, e.Message)
	}
	return "idgen: config: " + e.Message
}

// LengthError is a ConfigError specialization raised when the requested
// length cannot hold the configured metadata and checksum blocks plus the
// minimum core payload. It carries the full arithmetic so callers can
// self-correct.
type LengthError struct {
	Requested   int
	MetadataLen int
	ChecksumLen int
	MinCore     int
}

func (e *LengthError) Error() string {
	required := e.MetadataLen + e.ChecksumLen + e.MinCore
	return fmt.Sprintf(
		"idgen: config length: requested length %d is insufficient: metadata %d + checksum %d + minimum core %d = %d required",
		e.Requested, e.MetadataLen, e.ChecksumLen, e.MinCore, required)
}

// Reason is a machine-readable verification failure code.
type Reason string

// Verification reason codes.
const (
	ReasonOK               Reason = "ok"
	ReasonBadConfig        Reason = "bad_config"
	ReasonMalformed        Reason = "malformed"
	ReasonChecksumMismatch Reason = "checksum_mismatch"
	ReasonExpired          Reason = "expired"
	ReasonRevoked          Reason = "revoked"
	ReasonInternal         Reason = "internal_error"
)

// VerifyResult is the rich verification outcome. The boolean Verify wrapper
// collapses it at the public boundary; internal logic always works with the
// typed form so failures stay testable.
type VerifyResult struct {
	OK     bool
	Reason Reason
}

func failure(r Reason) VerifyResult { return VerifyResult{OK: false, Reason: r} }

// Warning is an advisory produced by Config.Lint. Warnings never block
// generation unless Strict mode is enabled.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}
