package idgen

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Mode selects the payload generation strategy.
type Mode string

// Payload generation modes.
const (
	// ModeRandom draws the payload entirely from the CSPRNG.
	ModeRandom Mode = "random"

	// ModeHash hashes fresh random bytes together with the embedded metadata.
	ModeHash Mode = "hash"

	// ModeHMAC authenticates fresh random bytes with the configured secret
	// (key-derived when a pepper is present).
	ModeHMAC Mode = "hmac"

	// ModeHybrid builds the first half of the payload in random mode and the
	// second half in hmac mode (hash mode when no secret is configured).
	ModeHybrid Mode = "hybrid"

	// ModeHMACHash hashes random input first, then HMACs the digest.
	ModeHMACHash Mode = "hmac-hash"

	// ModeMemoryHard runs a deliberately slow PBKDF2-SHA512 derivation over
	// the random input, keyed with the secret.
	ModeMemoryHard Mode = "memory-hard"

	// ModeSimulatedPQ is a NON-CRYPTOGRAPHIC stand-in producing
	// signature-shaped output. It provides no post-quantum security and must
	// never be presented to callers as such.
	ModeSimulatedPQ Mode = "simulated-pq"
)

// Algorithm selects the hash primitive used for hashing modes and checksums.
type Algorithm string

// Hash algorithms.
const (
	AlgorithmSHA256 Algorithm = "sha256"
	AlgorithmSHA512 Algorithm = "sha512"
)

// Case selects the case transform applied to the core payload. Embedded
// metadata fragments keep their own casing (hex device hashes, base64
// fragments); the transform runs before metadata is appended, and other
// features rely on that ordering.
type Case string

// Case transforms.
const (
	CaseMixed Case = ""
	CaseUpper Case = "upper"
	CaseLower Case = "lower"
)

// Checksum positions.
const (
	PositionStart  = "start"
	PositionMiddle = "middle"
	PositionEnd    = "end"
	PositionCustom = "custom"
)

// Pipeline floors.
const (
	// MinLength is the smallest accepted total identifier length.
	MinLength = 8

	// MinCoreLength is the smallest core payload the pipeline will produce.
	// Configurations whose metadata and checksum budget would push the core
	// below this floor are rejected outright.
	MinCoreLength = 8

	// maxCollisionRetries bounds the collision-avoidance regeneration loop.
	maxCollisionRetries = 10
)

// ChecksumConfig controls integrity block computation and placement.
type ChecksumConfig struct {
	// Enabled turns checksum blocks on.
	Enabled bool

	// Count is the number of checksum blocks. Defaults to 1.
	Count int

	// Length is the hex length of each block. Defaults to 4.
	Length int

	// Position is one of start, middle, end, or custom. Defaults to end.
	Position string

	// Offsets holds one ascending character offset per block when Position
	// is custom. Offsets are interpreted against the core+metadata content
	// before insertion; blocks inserted left-to-right shift later blocks
	// right by the cumulative length of earlier ones.
	Offsets []int
}

// MetadataConfig controls the optional fixed-width metadata fragments.
// Fragments are appended to the payload in a stable order: timestamp,
// counter, expiry, geo region, device id, custom JSON.
type MetadataConfig struct {
	// EmbedTimestamp embeds the generation time, base-36 encoded.
	EmbedTimestamp bool

	// EmbedCounter embeds a process-local monotonic counter, base-36 encoded.
	EmbedCounter bool

	// EmbedExpiry embeds now+TTL, base-36 encoded. Requires TTL.
	EmbedExpiry bool

	// TTL is the identifier lifetime used by EmbedExpiry. A zero or negative
	// TTL produces an identifier that is already expired.
	TTL time.Duration

	// GeoRegion embeds a region tag, base64-url encoded at a fixed width of 8.
	GeoRegion string

	// BindDevice embeds a keyed hash of DeviceID, truncated to 12 hex
	// characters. Requires DeviceID.
	BindDevice bool

	// DeviceID is the device identifier hashed by BindDevice.
	DeviceID string

	// Custom embeds an arbitrary JSON object, UTF-8 serialized, optionally
	// gzip-compressed, base64-url encoded.
	Custom map[string]any

	// CustomMaxBytes caps the serialized custom object. Defaults to 1024.
	CustomMaxBytes int

	// CompressCustom gzips the serialized custom object before encoding.
	CompressCustom bool
}

// Config holds the full set of generation parameters. The same Config must be
// supplied again to parse or verify an identifier; the format is not
// self-describing.
type Config struct {
	// Length is the requested total identifier length, excluding separators
	// and prefix/suffix framing. Minimum 8.
	Length int

	// Mode selects the payload strategy. Defaults to random.
	Mode Mode

	// Algorithm selects the hash primitive. Defaults to sha256.
	Algorithm Algorithm

	// Alphabet is the output alphabet. Defaults to AlphabetAlphanumeric.
	Alphabet string

	// Case is the core payload case transform.
	Case Case

	// Separator is inserted between chunks of SeparatorStride characters and
	// joins the prefix and suffix to the body. Empty disables separators.
	Separator string

	// SeparatorStride is the chunk size for separator insertion. Defaults to
	// 4 when a separator is set.
	SeparatorStride int

	// Prefix and Suffix frame the identifier.
	Prefix string
	Suffix string

	// Secret keys the hmac, hmac-hash and memory-hard modes and the checksum
	// HMAC. Required by those modes.
	Secret string

	// Salt is mixed into hmac-mode input and key derivation.
	Salt string

	// Pepper is a global secret combined with Secret via HKDF when present.
	Pepper string

	// EnhancedEntropy mixes additional CSPRNG draws into random-mode input.
	EnhancedEntropy bool

	// Reseed appends a further 32 random bytes to random-mode input.
	Reseed bool

	// DoubleHash hashes the digest a second time in hash and hmac-hash modes.
	DoubleHash bool

	// MemoryHardStrength selects 100000 PBKDF2 iterations instead of 10000
	// in memory-hard mode.
	MemoryHardStrength bool

	// UniquenessCheck runs the collision-avoidance loop against the
	// generator's collision store.
	UniquenessCheck bool

	// Strict promotes advisory warnings (Lint) to configuration errors.
	Strict bool

	Checksum ChecksumConfig
	Metadata MetadataConfig
}

// DefaultConfig returns a permissive baseline: 24 random characters over the
// full alphanumeric alphabet with no metadata, checksums, or framing.
func DefaultConfig() Config {
	return Config{
		Length:    24,
		Mode:      ModeRandom,
		Algorithm: AlgorithmSHA256,
		Alphabet:  AlphabetAlphanumeric,
	}
}

// withDefaults fills unset fields in place of documented defaults.
func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeRandom
	}
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmSHA256
	}
	if c.Alphabet == "" {
		c.Alphabet = AlphabetAlphanumeric
	}
	if c.Checksum.Enabled {
		if c.Checksum.Count == 0 {
			c.Checksum.Count = 1
		}
		if c.Checksum.Length == 0 {
			c.Checksum.Length = 4
		}
		if c.Checksum.Position == "" {
			c.Checksum.Position = PositionEnd
		}
	}
	if c.Separator != "" && c.SeparatorStride == 0 {
		c.SeparatorStride = 4
	}
	if c.Metadata.CustomMaxBytes == 0 {
		c.Metadata.CustomMaxBytes = 1024
	}
	return c
}

// checksumLen returns the total character budget consumed by checksum blocks.
func (c Config) checksumLen() int {
	if !c.Checksum.Enabled {
		return 0
	}
	return c.Checksum.Count * c.Checksum.Length
}

// Validate checks the configuration eagerly, before any generation work.
// It never corrects a bad value silently. In Strict mode every Lint warning
// is also an error.
func (c Config) Validate() error {
	c = c.withDefaults()

	if c.Length < MinLength {
		return &ConfigError{Field: "length", Message: fmt.Sprintf("length %d is below the minimum of %d", c.Length, MinLength)}
	}

	switch c.Mode {
	case ModeRandom, ModeHash, ModeHMAC, ModeHybrid, ModeHMACHash, ModeMemoryHard, ModeSimulatedPQ:
	default:
		return &ConfigError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", c.Mode)}
	}
	switch c.Algorithm {
	case AlgorithmSHA256, AlgorithmSHA512:
	default:
		return &ConfigError{Field: "algorithm", Message: fmt.Sprintf("unknown algorithm %q", c.Algorithm)}
	}
	switch c.Case {
	case CaseMixed, CaseUpper, CaseLower:
	default:
		return &ConfigError{Field: "case", Message: fmt.Sprintf("unknown case transform %q", c.Case)}
	}

	if err := validateAlphabet(c.Alphabet); err != nil {
		return err
	}

	if modeRequiresSecret(c.Mode) && c.Secret == "" {
		return &ConfigError{Field: "secret", Message: fmt.Sprintf("mode %q requires a non-empty secret", c.Mode)}
	}

	if c.Metadata.EmbedExpiry && c.Metadata.TTL == 0 {
		return &ConfigError{Field: "metadata.ttl", Message: "expiry embedding requires a TTL"}
	}
	if c.Metadata.BindDevice && c.Metadata.DeviceID == "" {
		return &ConfigError{Field: "metadata.deviceId", Message: "device binding requires a device id"}
	}

	metaLen, err := metadataLength(c)
	if err != nil {
		return err
	}
	ckLen := c.checksumLen()
	if c.Length < metaLen+ckLen+MinCoreLength {
		return &LengthError{
			Requested:   c.Length,
			MetadataLen: metaLen,
			ChecksumLen: ckLen,
			MinCore:     MinCoreLength,
		}
	}

	if c.Checksum.Enabled {
		if err := c.validateChecksum(metaLen); err != nil {
			return err
		}
	}

	if c.Strict {
		if warns := c.Lint(); len(warns) > 0 {
			return &ConfigError{Field: warns[0].Field, Message: "strict mode: " + warns[0].Message}
		}
	}
	return nil
}

func (c Config) validateChecksum(metaLen int) error {
	if c.Checksum.Count < 1 {
		return &ConfigError{Field: "checksum.count", Message: "count must be at least 1"}
	}
	if c.Checksum.Length < 1 {
		return &ConfigError{Field: "checksum.length", Message: "block length must be at least 1"}
	}
	if maxBlock := digestHexLen(c.Algorithm); c.Checksum.Length > maxBlock {
		return &ConfigError{Field: "checksum.length", Message: fmt.Sprintf("block length %d exceeds the %d hex characters a %s digest provides", c.Checksum.Length, maxBlock, c.Algorithm)}
	}
	switch c.Checksum.Position {
	case PositionStart, PositionMiddle, PositionEnd:
		return nil
	case PositionCustom:
	default:
		return &ConfigError{Field: "checksum.position", Message: fmt.Sprintf("unknown position %q", c.Checksum.Position)}
	}

	if len(c.Checksum.Offsets) != c.Checksum.Count {
		return &ConfigError{Field: "checksum.offsets", Message: fmt.Sprintf("custom position needs exactly %d offsets, got %d", c.Checksum.Count, len(c.Checksum.Offsets))}
	}
	if !sort.IntsAreSorted(c.Checksum.Offsets) {
		return &ConfigError{Field: "checksum.offsets", Message: "offsets must be ascending"}
	}
	contentLen := c.Length - c.checksumLen()
	for _, off := range c.Checksum.Offsets {
		if off < 0 || off > contentLen {
			return &ConfigError{Field: "checksum.offsets", Message: fmt.Sprintf("offset %d is outside the core+metadata content (length %d)", off, contentLen)}
		}
		if off >= c.Length-c.Checksum.Length {
			return &ConfigError{Field: "checksum.offsets", Message: fmt.Sprintf("offset %d leaves no room for a %d-character block within length %d", off, c.Checksum.Length, c.Length)}
		}
	}
	return nil
}

// Lint returns advisory warnings. They never block generation unless Strict
// is set; the generator logs them instead.
func (c Config) Lint() []Warning {
	c = c.withDefaults()
	var warns []Warning
	if c.Length < 16 {
		warns = append(warns, Warning{Field: "length", Message: fmt.Sprintf("length %d is below the recommended minimum of 16", c.Length)})
	}
	if c.Length > 256 {
		warns = append(warns, Warning{Field: "length", Message: fmt.Sprintf("length %d is unusually long", c.Length)})
	}
	if c.Alphabet != AlphabetAlphanumeric && c.Alphabet != AlphabetUnambiguous && len(c.Alphabet) < minAlphabetSize {
		warns = append(warns, Warning{Field: "alphabet", Message: fmt.Sprintf("custom alphabet has only %d symbols; %d or more recommended", len(c.Alphabet), minAlphabetSize)})
	}
	if len(c.Separator) > 3 {
		warns = append(warns, Warning{Field: "separator", Message: fmt.Sprintf("separator %q is unusually long", c.Separator)})
	}
	if c.Separator != "" && strings.ContainsAny(c.Alphabet, c.Separator) {
		warns = append(warns, Warning{Field: "separator", Message: fmt.Sprintf("separator %q also occurs in the alphabet; identifiers will carry it outside stride boundaries too", c.Separator)})
	}
	return warns
}

func digestHexLen(a Algorithm) int {
	if a == AlgorithmSHA512 {
		return 128
	}
	return 64
}

func modeRequiresSecret(m Mode) bool {
	switch m {
	case ModeHMAC, ModeHMACHash, ModeMemoryHard:
		return true
	}
	return false
}
