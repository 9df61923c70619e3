package idgen

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// kdfInfo binds derived keys to this application so the same secret/pepper
// pair yields unrelated keys in other systems.
const kdfInfo = "idforge/v1 hmac key"

// derivedKeyLen is the byte length of HKDF-derived keys.
const derivedKeyLen = 32

// effectiveKey returns the key used for HMAC operations: the raw secret, or
// an HKDF-SHA256 expansion over secret‖pepper (salted with Salt) when a
// pepper is configured.
func effectiveKey(cfg Config) []byte {
	if cfg.Pepper == "" {
		return []byte(cfg.Secret)
	}
	return deriveKey(cfg.Secret, cfg.Salt, cfg.Pepper)
}

func deriveKey(secret, salt, pepper string) []byte {
	r := hkdf.New(sha256.New, []byte(secret+pepper), []byte(salt), []byte(kdfInfo))
	key := make([]byte, derivedKeyLen)
	// HKDF-SHA256 can always produce 32 bytes; a failure here would mean a
	// broken hash implementation.
	if _, err := io.ReadFull(r, key); err != nil {
		panic("idgen: hkdf expansion failed: " + err.Error())
	}
	return key
}
