package idgen

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode/utf8"
)

// Built-in alphabets.
const (
	// AlphabetAlphanumeric is the full 62-symbol alphanumeric alphabet.
	AlphabetAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// AlphabetUnambiguous excludes visually confusable symbols (0/O, 1/l/I).
	AlphabetUnambiguous = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

// minAlphabetSize is the advisory lower bound for custom alphabets. Smaller
// alphabets yield identifiers with little entropy per character.
const minAlphabetSize = 16

// validateAlphabet checks a custom alphabet. Symbols must be single-byte
// ASCII because the encoder indexes the alphabet by byte; multibyte symbols
// would produce invalid UTF-8 output. Duplicates make encoding ambiguous.
// A small symbol count is only advisory and reported through Config.Lint.
func validateAlphabet(alphabet string) error {
	if alphabet == "" {
		return &ConfigError{Field: "alphabet", Message: "alphabet must not be empty"}
	}
	var seen [128]bool
	for i := 0; i < len(alphabet); i++ {
		b := alphabet[i]
		if b >= utf8.RuneSelf {
			return &ConfigError{Field: "alphabet", Message: "alphabet symbols must be single-byte ASCII characters"}
		}
		if seen[b] {
			return &ConfigError{Field: "alphabet", Message: "alphabet contains duplicate symbol " + string(b)}
		}
		seen[b] = true
	}
	return nil
}

// encodeToAlphabet maps data onto exactly targetLength symbols from alphabet
// by treating data as a big unsigned integer and emitting remainders mod
// len(alphabet), most-significant digit first.
//
// If the integer runs out of digits before targetLength is reached, the
// result is left-padded with freshly drawn secure-random symbols rather than
// a fixed zero symbol, so low-order characters carry no bias. If more digits
// were produced than requested, the rightmost targetLength symbols are kept.
func encodeToAlphabet(data []byte, alphabet string, targetLength int) (string, error) {
	if targetLength <= 0 {
		return "", nil
	}
	base := big.NewInt(int64(len(alphabet)))
	n := new(big.Int).SetBytes(data)

	var digits []byte
	mod := new(big.Int)
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		digits = append(digits, alphabet[mod.Int64()])
	}
	// digits are least-significant first; reverse in place.
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}

	if len(digits) > targetLength {
		return string(digits[len(digits)-targetLength:]), nil
	}
	if len(digits) == targetLength {
		return string(digits), nil
	}

	pad, err := randomSymbols(alphabet, targetLength-len(digits))
	if err != nil {
		return "", err
	}
	return pad + string(digits), nil
}

// randomSymbols draws count alphabet symbols from the CSPRNG using rejection
// sampling to avoid modulo bias.
func randomSymbols(alphabet string, count int) (string, error) {
	var b strings.Builder
	b.Grow(count)
	// Largest multiple of len(alphabet) that fits in a byte; alphabets are
	// validated to at most 128 ASCII symbols.
	limit := 256 - (256 % len(alphabet))
	buf := make([]byte, count*2)
	for b.Len() < count {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, v := range buf {
			if int(v) >= limit {
				continue
			}
			b.WriteByte(alphabet[int(v)%len(alphabet)])
			if b.Len() == count {
				break
			}
		}
	}
	return b.String(), nil
}
