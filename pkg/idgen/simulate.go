package idgen

import "crypto/sha512"

// simulatedPQPayload produces signature-shaped output for callers migrating
// toward post-quantum identifier schemes.
//
// THIS IS A SIMULATION. It is a plain SHA-512 chain over CSPRNG input and
// provides no post-quantum security whatsoever. It exists so integrations can
// exercise the longer output shape before a real scheme is available, and it
// must never be represented to callers as genuine post-quantum cryptography.
func simulatedPQPayload(cfg Config, pool *EntropyPool, coreLen int, meta, retrySalt string) (string, error) {
	seed, err := pool.Draw(hashInputBytes)
	if err != nil {
		return "", err
	}
	// Two chained digests, tagged so the output domain cannot collide with
	// the genuine hash modes.
	h := sha512.New()
	h.Write([]byte("idforge/simulated-pq"))
	h.Write(seed)
	h.Write([]byte(meta + retrySalt))
	first := h.Sum(nil)

	h = sha512.New()
	h.Write(first)
	h.Write([]byte(cfg.Secret))
	return encodeToAlphabet(h.Sum(nil), cfg.Alphabet, coreLen)
}
