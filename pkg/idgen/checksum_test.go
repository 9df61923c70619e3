package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checksumConfig(pos string, count, length int) Config {
	cfg := DefaultConfig()
	cfg.Checksum = ChecksumConfig{Enabled: true, Count: count, Length: length, Position: pos}
	return cfg
}

func TestComputeChecksums_Shape(t *testing.T) {
	cfg := checksumConfig(PositionEnd, 3, 6)
	blocks := computeChecksums(cfg, "some-core-content")

	require.Len(t, blocks, 3)
	for _, b := range blocks {
		assert.Len(t, b, 6)
		assert.Equal(t, strings.ToUpper(b), b, "blocks are uppercased hex")
	}
	// Block index is mixed into the input, so blocks differ.
	assert.NotEqual(t, blocks[0], blocks[1])
}

func TestComputeChecksums_KeyedWhenSecretPresent(t *testing.T) {
	plain := checksumConfig(PositionEnd, 1, 8)
	keyed := plain
	keyed.Secret = "s3cret"

	assert.NotEqual(t,
		computeChecksums(plain, "content")[0],
		computeChecksums(keyed, "content")[0],
		"HMAC blocks must differ from plain hash blocks")

	other := keyed
	other.Secret = "different"
	assert.NotEqual(t,
		computeChecksums(keyed, "content")[0],
		computeChecksums(other, "content")[0])
}

func TestInsertExtractChecksums_RoundTrip(t *testing.T) {
	content := "ABCDEFGHIJKLMNOP"
	for _, pos := range []string{PositionStart, PositionMiddle, PositionEnd} {
		cfg := checksumConfig(pos, 2, 3)
		body, err := insertChecksums(cfg, content)
		require.NoError(t, err, pos)
		require.Len(t, body, len(content)+6, pos)

		blocks, recovered, err := extractChecksums(cfg, body)
		require.NoError(t, err, pos)
		assert.Equal(t, content, recovered, pos)
		assert.True(t, verifyChecksumBlocks(cfg, recovered, blocks), pos)
	}
}

func TestVerifyChecksumBlocks_FailClosed(t *testing.T) {
	cfg := checksumConfig(PositionEnd, 2, 4)
	content := "ABCDEFGHIJKLMNOP"
	blocks := computeChecksums(cfg, content)

	t.Run("tampered content", func(t *testing.T) {
		assert.False(t, verifyChecksumBlocks(cfg, "ABCDEFGHIJKLMNOp", blocks))
	})
	t.Run("tampered block", func(t *testing.T) {
		bad := []string{blocks[0], flipHexChar(blocks[1])}
		assert.False(t, verifyChecksumBlocks(cfg, content, bad))
	})
	t.Run("missing block", func(t *testing.T) {
		assert.False(t, verifyChecksumBlocks(cfg, content, blocks[:1]))
	})
	t.Run("wrong block length", func(t *testing.T) {
		bad := []string{blocks[0], blocks[1] + "0"}
		assert.False(t, verifyChecksumBlocks(cfg, content, bad))
	})
	t.Run("intact", func(t *testing.T) {
		assert.True(t, verifyChecksumBlocks(cfg, content, blocks))
	})
}

func flipHexChar(s string) string {
	b := []byte(s)
	if b[0] == '0' {
		b[0] = '1'
	} else {
		b[0] = '0'
	}
	return string(b)
}
