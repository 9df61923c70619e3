package idgen

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

// Random input sizes for the hashing modes.
const (
	hashInputBytes = 64

	memoryHardIterations     = 100000
	memoryHardIterationsFast = 10000
	memoryHardKeyLen         = 64
)

func hashFunc(a Algorithm) func() hash.Hash {
	if a == AlgorithmSHA512 {
		return sha512.New
	}
	return sha256.New
}

// generatePayload produces coreLen characters of core payload under the
// configured mode. meta is the embedded-metadata string mixed into the
// hashing modes; retrySalt is a counter-derived fragment mixed in by the
// collision-avoidance loop so retries diverge even under identical inputs.
func generatePayload(cfg Config, pool *EntropyPool, coreLen int, meta, retrySalt string) (string, error) {
	switch cfg.Mode {
	case ModeRandom:
		return randomPayload(cfg, pool, coreLen, retrySalt)
	case ModeHash:
		return hashPayload(cfg, pool, coreLen, meta, retrySalt)
	case ModeHMAC:
		return hmacPayload(cfg, pool, coreLen, meta, retrySalt)
	case ModeHybrid:
		return hybridPayload(cfg, pool, coreLen, meta, retrySalt)
	case ModeHMACHash:
		return hmacHashPayload(cfg, pool, coreLen, meta, retrySalt)
	case ModeMemoryHard:
		return memoryHardPayload(cfg, pool, coreLen, meta, retrySalt)
	case ModeSimulatedPQ:
		return simulatedPQPayload(cfg, pool, coreLen, meta, retrySalt)
	}
	return "", &ConfigError{Field: "mode", Message: "unknown mode " + string(cfg.Mode)}
}

// randomPayload draws 2×coreLen CSPRNG bytes and encodes them. Enhanced
// entropy folds three additional draws in by XOR; reseed appends a further
// 32 bytes to the big-integer input.
func randomPayload(cfg Config, pool *EntropyPool, coreLen int, retrySalt string) (string, error) {
	buf, err := pool.Draw(2 * coreLen)
	if err != nil {
		return "", err
	}
	if cfg.EnhancedEntropy {
		for i := 0; i < 3; i++ {
			extra, err := pool.Draw(len(buf))
			if err != nil {
				return "", err
			}
			for j := range buf {
				buf[j] ^= extra[j]
			}
		}
	}
	if cfg.Reseed {
		extra, err := pool.Draw(32)
		if err != nil {
			return "", err
		}
		buf = append(buf, extra...)
	}
	if retrySalt != "" {
		buf = append(buf, []byte(retrySalt)...)
	}
	return encodeToAlphabet(buf, cfg.Alphabet, coreLen)
}

func hashPayload(cfg Config, pool *EntropyPool, coreLen int, meta, retrySalt string) (string, error) {
	seed, err := pool.Draw(hashInputBytes)
	if err != nil {
		return "", err
	}
	digest := digestOnce(cfg.Algorithm, append(seed, []byte(meta+retrySalt)...))
	if cfg.DoubleHash {
		digest = digestOnce(cfg.Algorithm, digest)
	}
	return encodeToAlphabet(digest, cfg.Alphabet, coreLen)
}

func hmacPayload(cfg Config, pool *EntropyPool, coreLen int, meta, retrySalt string) (string, error) {
	seed, err := pool.Draw(hashInputBytes)
	if err != nil {
		return "", err
	}
	mac := hmac.New(hashFunc(cfg.Algorithm), effectiveKey(cfg))
	mac.Write(seed)
	mac.Write([]byte(cfg.Salt))
	mac.Write([]byte(meta + retrySalt))
	return encodeToAlphabet(mac.Sum(nil), cfg.Alphabet, coreLen)
}

// hybridPayload fills the first half of the target in random mode and the
// second half in hmac mode when a secret is present, hash mode otherwise.
func hybridPayload(cfg Config, pool *EntropyPool, coreLen int, meta, retrySalt string) (string, error) {
	firstLen := coreLen / 2
	secondLen := coreLen - firstLen

	first, err := randomPayload(cfg, pool, firstLen, retrySalt)
	if err != nil {
		return "", err
	}
	var second string
	if cfg.Secret != "" {
		second, err = hmacPayload(cfg, pool, secondLen, meta, retrySalt)
	} else {
		second, err = hashPayload(cfg, pool, secondLen, meta, retrySalt)
	}
	if err != nil {
		return "", err
	}
	return first + second, nil
}

func hmacHashPayload(cfg Config, pool *EntropyPool, coreLen int, meta, retrySalt string) (string, error) {
	seed, err := pool.Draw(hashInputBytes)
	if err != nil {
		return "", err
	}
	digest := digestOnce(cfg.Algorithm, append(seed, []byte(meta+retrySalt)...))
	if cfg.DoubleHash {
		digest = digestOnce(cfg.Algorithm, digest)
	}
	mac := hmac.New(hashFunc(cfg.Algorithm), effectiveKey(cfg))
	mac.Write(digest)
	return encodeToAlphabet(mac.Sum(nil), cfg.Alphabet, coreLen)
}

// memoryHardPayload runs PBKDF2-SHA512 over hex(random 64 bytes)‖metadata
// with the secret as the derivation password. Intentionally slow; the
// MemoryHardStrength flag selects the full 100k iteration count.
func memoryHardPayload(cfg Config, pool *EntropyPool, coreLen int, meta, retrySalt string) (string, error) {
	seed, err := pool.Draw(hashInputBytes)
	if err != nil {
		return "", err
	}
	iterations := memoryHardIterationsFast
	if cfg.MemoryHardStrength {
		iterations = memoryHardIterations
	}
	salt := []byte(hex.EncodeToString(seed) + meta + retrySalt)
	dk := pbkdf2.Key([]byte(cfg.Secret), salt, iterations, memoryHardKeyLen, sha512.New)
	return encodeToAlphabet(dk, cfg.Alphabet, coreLen)
}

func digestOnce(a Algorithm, data []byte) []byte {
	h := hashFunc(a)()
	h.Write(data)
	return h.Sum(nil)
}
