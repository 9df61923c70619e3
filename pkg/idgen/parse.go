package idgen

import "fmt"

// Parsed is the derived view of an identifier under a given Config. It is
// computed on demand and never persisted by this package.
type Parsed struct {
	// Full is the identifier exactly as supplied.
	Full string `json:"full"`

	// Prefix and Suffix are the stripped framing strings, when configured.
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`

	// Core is the reconstructed core payload with metadata stripped.
	Core string `json:"core"`

	// Checksums holds the extracted checksum block values, in order.
	Checksums []string `json:"checksums,omitempty"`

	// TotalLength is len(Full); ContentLength is the core+metadata length
	// after framing, separators, and checksum blocks are removed.
	TotalLength   int `json:"totalLength"`
	ContentLength int `json:"contentLength"`

	// SeparatorCount is the number of separator occurrences removed from the
	// body (framing joins excluded).
	SeparatorCount int `json:"separatorCount"`

	// Metadata carries the decoded metadata fields for features enabled in
	// the Config.
	Metadata DecodedMetadata `json:"metadata"`

	// content is the recovered core+metadata string the checksum blocks were
	// computed over; kept for verification.
	content string
}

// parseIdentifier reverses the generation pipeline step by step: strip
// prefix/suffix, strip separators, cut checksum blocks back out, then decode
// the metadata fragments. Each step is a no-op when the corresponding config
// feature is disabled, making the whole function the exact left-inverse of
// generation for the same Config. It is a pure function of its inputs.
func parseIdentifier(cfg Config, id string) (*Parsed, error) {
	cfg = cfg.withDefaults()

	body, ok := stripWrap(id, cfg.Prefix, cfg.Suffix, cfg.Separator)
	if !ok {
		return nil, fmt.Errorf("idgen: identifier does not carry the configured prefix/suffix framing")
	}

	body, sepCount, ok := stripSeparators(body, cfg.Separator, cfg.SeparatorStride)
	if !ok {
		return nil, fmt.Errorf("idgen: separators do not line up with the configured stride")
	}

	blocks, content, err := extractChecksums(cfg, body)
	if err != nil {
		return nil, err
	}

	core, meta, err := decodeMetadata(cfg, content)
	if err != nil {
		return nil, err
	}

	return &Parsed{
		Full:           id,
		Prefix:         cfg.Prefix,
		Suffix:         cfg.Suffix,
		Core:           core,
		Checksums:      blocks,
		TotalLength:    len(id),
		ContentLength:  len(content),
		SeparatorCount: sepCount,
		Metadata:       meta,
		content:        content,
	}, nil
}

// verifyIdentifier is the internal, typed verification path. The public
// Verify wrapper collapses it to a boolean so verification stays total over
// arbitrary string input.
func verifyIdentifier(cfg Config, id string) (*Parsed, VerifyResult) {
	if err := cfg.Validate(); err != nil {
		return nil, failure(ReasonBadConfig)
	}
	cfg = cfg.withDefaults()

	parsed, err := parseIdentifier(cfg, id)
	if err != nil {
		return nil, failure(ReasonMalformed)
	}

	if !verifyChecksumBlocks(cfg, parsed.content, parsed.Checksums) {
		return parsed, failure(ReasonChecksumMismatch)
	}
	if parsed.Metadata.HasExpiry && parsed.Metadata.Expired {
		return parsed, failure(ReasonExpired)
	}
	return parsed, VerifyResult{OK: true, Reason: ReasonOK}
}
