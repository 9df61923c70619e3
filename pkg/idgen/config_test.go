package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate_Defaults(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		errPart string
	}{
		{
			name:    "length below floor",
			mutate:  func(c *Config) { c.Length = 7 },
			errPart: "below the minimum",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Mode = "quantum" },
			errPart: "unknown mode",
		},
		{
			name:    "hmac without secret",
			mutate:  func(c *Config) { c.Mode = ModeHMAC },
			errPart: "requires a non-empty secret",
		},
		{
			name:    "hmac-hash without secret",
			mutate:  func(c *Config) { c.Mode = ModeHMACHash },
			errPart: "requires a non-empty secret",
		},
		{
			name:    "memory-hard without secret",
			mutate:  func(c *Config) { c.Mode = ModeMemoryHard },
			errPart: "requires a non-empty secret",
		},
		{
			name:    "expiry without ttl",
			mutate:  func(c *Config) { c.Metadata.EmbedExpiry = true },
			errPart: "requires a TTL",
		},
		{
			name: "device binding without device id",
			mutate: func(c *Config) {
				c.Metadata.BindDevice = true
			},
			errPart: "requires a device id",
		},
		{
			name:    "duplicate alphabet symbols",
			mutate:  func(c *Config) { c.Alphabet = "abcabcdefghijklmnop" },
			errPart: "duplicate symbol",
		},
		{
			name: "checksum offsets count mismatch",
			mutate: func(c *Config) {
				c.Checksum = ChecksumConfig{Enabled: true, Count: 2, Length: 2, Position: PositionCustom, Offsets: []int{1}}
			},
			errPart: "exactly 2 offsets",
		},
		{
			name: "checksum offset out of bounds",
			mutate: func(c *Config) {
				c.Checksum = ChecksumConfig{Enabled: true, Count: 1, Length: 2, Position: PositionCustom, Offsets: []int{80}}
			},
			errPart: "outside the core+metadata content",
		},
		{
			name: "checksum offsets not ascending",
			mutate: func(c *Config) {
				c.Checksum = ChecksumConfig{Enabled: true, Count: 2, Length: 2, Position: PositionCustom, Offsets: []int{9, 3}}
			},
			errPart: "ascending",
		},
		{
			name: "checksum block longer than digest",
			mutate: func(c *Config) {
				c.Length = 256
				c.Checksum = ChecksumConfig{Enabled: true, Count: 1, Length: 65, Position: PositionEnd}
			},
			errPart: "exceeds the 64 hex characters",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

// Configurations whose metadata and checksum budget leaves less than the
// minimum core are rejected with the full arithmetic rather than silently
// growing the identifier past the requested length.
func TestConfigValidate_InsufficientLengthArithmetic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Length = 10
	cfg.Checksum = ChecksumConfig{Enabled: true, Count: 2, Length: 2}
	cfg.Metadata = MetadataConfig{EmbedTimestamp: true, EmbedExpiry: true, TTL: 3600 * time.Second}

	err := cfg.Validate()
	require.Error(t, err)

	var lenErr *LengthError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 10, lenErr.Requested)
	assert.Equal(t, timestampWidth+expiryWidth, lenErr.MetadataLen)
	assert.Equal(t, 4, lenErr.ChecksumLen)
	assert.Equal(t, MinCoreLength, lenErr.MinCore)

	// The message carries the numeric breakdown so callers can self-correct.
	msg := err.Error()
	assert.Contains(t, msg, "metadata 18")
	assert.Contains(t, msg, "checksum 4")
	assert.Contains(t, msg, "minimum core 8")
	assert.Contains(t, msg, "30 required")
}

func TestConfigLint_Advisories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Length = 12
	cfg.Alphabet = "abcdefgh" // 8 symbols, below advisory floor
	cfg.Separator = "----"
	cfg.SeparatorStride = 4

	warns := cfg.Lint()
	fields := make([]string, 0, len(warns))
	for _, w := range warns {
		fields = append(fields, w.Field)
	}
	assert.Contains(t, fields, "length")
	assert.Contains(t, fields, "alphabet")
	assert.Contains(t, fields, "separator")

	// Advisory only: the config still validates.
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate_StrictPromotesWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Length = 12
	require.NoError(t, cfg.Validate())

	cfg.Strict = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict mode")
}

func TestConfigValidate_ZeroTTLIsAbsent(t *testing.T) {
	// A zero TTL is indistinguishable from an unset one; expiry embedding
	// demands an explicit lifetime. Negative TTLs are allowed and produce
	// already-expired identifiers.
	cfg := DefaultConfig()
	cfg.Metadata = MetadataConfig{EmbedExpiry: true, TTL: -time.Second}
	assert.NoError(t, cfg.Validate())
}
