package idgen

import (
	"crypto/hmac"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
)

// computeChecksums derives the integrity blocks for content: block i is
// hash-or-HMAC(content ‖ itoa(i)), hex encoded, uppercased, truncated to the
// configured block length. HMAC is used whenever a secret is configured.
func computeChecksums(cfg Config, content string) []string {
	blocks := make([]string, 0, cfg.Checksum.Count)
	key := effectiveKey(cfg)
	for i := 0; i < cfg.Checksum.Count; i++ {
		input := content + strconv.Itoa(i)
		var sum []byte
		if cfg.Secret != "" {
			mac := hmac.New(hashFunc(cfg.Algorithm), key)
			mac.Write([]byte(input))
			sum = mac.Sum(nil)
		} else {
			sum = digestOnce(cfg.Algorithm, []byte(input))
		}
		block := strings.ToUpper(hex.EncodeToString(sum))
		blocks = append(blocks, block[:cfg.Checksum.Length])
	}
	return blocks
}

// insertChecksums computes and places the blocks over the core+metadata
// content, using the shared layout for placement.
func insertChecksums(cfg Config, content string) (string, error) {
	if !cfg.Checksum.Enabled {
		return content, nil
	}
	spans, err := checksumSpans(len(content), cfg.Checksum)
	if err != nil {
		return "", err
	}
	return spliceBlocks(content, computeChecksums(cfg, content), spans)
}

// extractChecksums cuts the previously inserted blocks back out of body
// (the unformatted identifier), returning them alongside the recovered
// core+metadata content.
func extractChecksums(cfg Config, body string) (blocks []string, content string, err error) {
	if !cfg.Checksum.Enabled {
		return nil, body, nil
	}
	contentLen := len(body) - cfg.checksumLen()
	if contentLen < 0 {
		return nil, "", &ConfigError{Field: "checksum", Message: "identifier is shorter than its checksum budget"}
	}
	spans, err := checksumSpans(contentLen, cfg.Checksum)
	if err != nil {
		return nil, "", err
	}
	return extractBlocks(body, spans)
}

// verifyChecksumBlocks recomputes the expected blocks over the recovered
// content and compares each extracted block in constant time. Any length or
// block mismatch fails the whole verification; there is no partial credit.
func verifyChecksumBlocks(cfg Config, content string, extracted []string) bool {
	if !cfg.Checksum.Enabled {
		return true
	}
	expected := computeChecksums(cfg, content)
	if len(extracted) != len(expected) {
		return false
	}
	ok := 1
	for i := range expected {
		if len(extracted[i]) != len(expected[i]) {
			ok = 0
			continue
		}
		ok &= subtle.ConstantTimeCompare([]byte(extracted[i]), []byte(expected[i]))
	}
	return ok == 1
}
