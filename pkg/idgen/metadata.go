package idgen

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Fixed fragment widths. Base-36 timestamps are zero-padded to 9 characters,
// which holds millisecond epochs until the year 5188. The counter wraps at
// 36^4 to keep its width stable.
const (
	timestampWidth = 9
	counterWidth   = 4
	expiryWidth    = 9
	geoWidth       = 8
	deviceWidth    = 12

	counterModulus = 36 * 36 * 36 * 36

	// geoPad right-pads short geo fragments. '=' never occurs inside a
	// raw-url base64 value, so the decoder can strip it unambiguously.
	geoPad = '='
)

// metadataLength reports the exact character count the enabled metadata
// features will contribute, before any payload is generated. Core length is
// requested length minus this minus the checksum budget.
func metadataLength(cfg Config) (int, error) {
	cfg = cfg.withDefaults()
	m := cfg.Metadata
	total := 0
	if m.EmbedTimestamp {
		total += timestampWidth
	}
	if m.EmbedCounter {
		total += counterWidth
	}
	if m.EmbedExpiry {
		total += expiryWidth
	}
	if m.GeoRegion != "" {
		total += geoWidth
	}
	if m.BindDevice {
		total += deviceWidth
	}
	if m.Custom != nil {
		frag, err := encodeCustom(m)
		if err != nil {
			return 0, err
		}
		total += len(frag)
	}
	return total, nil
}

// embedMetadata serializes the enabled fragments in their stable order:
// timestamp, counter, expiry, geo, device, custom. The counter value is
// supplied by the generator so independent instances stay isolated.
func embedMetadata(cfg Config, now time.Time, counter uint64) (string, error) {
	cfg = cfg.withDefaults()
	m := cfg.Metadata
	var b strings.Builder

	if m.EmbedTimestamp {
		b.WriteString(encodeBase36(now.UnixMilli(), timestampWidth))
	}
	if m.EmbedCounter {
		b.WriteString(encodeBase36(int64(counter%counterModulus), counterWidth))
	}
	if m.EmbedExpiry {
		expiry := now.Add(m.TTL).UnixMilli()
		b.WriteString(encodeBase36(expiry, expiryWidth))
	}
	if m.GeoRegion != "" {
		b.WriteString(encodeGeo(m.GeoRegion))
	}
	if m.BindDevice {
		b.WriteString(deviceHash(cfg, m.DeviceID))
	}
	if m.Custom != nil {
		frag, err := encodeCustom(m)
		if err != nil {
			return "", err
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}

// DecodedMetadata is the metadata view recovered by the parser. Fields are
// populated only for features enabled in the supplied Config.
type DecodedMetadata struct {
	HasTimestamp bool       `json:"hasTimestamp"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`

	HasCounter bool   `json:"hasCounter"`
	Counter    uint64 `json:"counter,omitempty"`

	HasExpiry bool       `json:"hasExpiry"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`

	GeoRegion string `json:"geoRegion,omitempty"`

	// DeviceHash is the embedded keyed device hash. DeviceMatch reports
	// whether it matches the hash of the Config's DeviceID.
	DeviceHash  string `json:"deviceHash,omitempty"`
	DeviceMatch bool   `json:"deviceMatch,omitempty"`

	Custom map[string]any `json:"custom,omitempty"`
}

// decodeMetadata splits the trailing metadata fragments off content using the
// same fixed-width assumptions applied during embedding, returning the core
// payload and the decoded view. The caller must supply the identical metadata
// configuration used at generation time; there is no length prefix to detect
// a mismatch.
func decodeMetadata(cfg Config, content string) (core string, meta DecodedMetadata, err error) {
	cfg = cfg.withDefaults()
	m := cfg.Metadata
	total, err := metadataLength(cfg)
	if err != nil {
		return "", meta, err
	}
	if len(content) < total {
		return "", meta, fmt.Errorf("idgen: content too short for embedded metadata: %d < %d", len(content), total)
	}
	core = content[:len(content)-total]
	rest := content[len(content)-total:]

	take := func(n int) string {
		frag := rest[:n]
		rest = rest[n:]
		return frag
	}

	if m.EmbedTimestamp {
		ms, perr := decodeBase36(take(timestampWidth))
		if perr != nil {
			return "", meta, perr
		}
		t := time.UnixMilli(ms)
		meta.HasTimestamp = true
		meta.Timestamp = &t
	}
	if m.EmbedCounter {
		v, perr := decodeBase36(take(counterWidth))
		if perr != nil {
			return "", meta, perr
		}
		meta.HasCounter = true
		meta.Counter = uint64(v)
	}
	if m.EmbedExpiry {
		ms, perr := decodeBase36(take(expiryWidth))
		if perr != nil {
			return "", meta, perr
		}
		t := time.UnixMilli(ms)
		meta.HasExpiry = true
		meta.ExpiresAt = &t
		meta.Expired = nowFunc().After(t)
	}
	if m.GeoRegion != "" {
		meta.GeoRegion = decodeGeo(take(geoWidth))
	}
	if m.BindDevice {
		meta.DeviceHash = take(deviceWidth)
		meta.DeviceMatch = meta.DeviceHash == deviceHash(cfg, m.DeviceID)
	}
	if m.Custom != nil {
		frag, perr := encodeCustom(m)
		if perr != nil {
			return "", meta, perr
		}
		decoded, perr := decodeCustom(take(len(frag)), m.CompressCustom)
		if perr != nil {
			return "", meta, perr
		}
		meta.Custom = decoded
	}
	return core, meta, nil
}

// encodeBase36 renders v in base 36, zero-padded on the left to width.
func encodeBase36(v int64, width int) string {
	if v < 0 {
		v = 0
	}
	s := strconv.FormatInt(v, 36)
	if len(s) > width {
		return s[len(s)-width:]
	}
	return strings.Repeat("0", width-len(s)) + s
}

func decodeBase36(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return 0, fmt.Errorf("idgen: bad base36 fragment %q: %w", s, err)
	}
	return v, nil
}

// encodeGeo base64-url encodes the region and pins the fragment to exactly
// geoWidth characters: longer values are truncated (lossy, by contract),
// shorter values are right-padded.
func encodeGeo(region string) string {
	enc := base64.RawURLEncoding.EncodeToString([]byte(region))
	if len(enc) >= geoWidth {
		return enc[:geoWidth]
	}
	return enc + strings.Repeat(string(geoPad), geoWidth-len(enc))
}

// decodeGeo reverses encodeGeo. Truncated fragments that no longer form a
// valid base64 value are returned as-is rather than failing the parse.
func decodeGeo(frag string) string {
	trimmed := strings.TrimRight(frag, string(geoPad))
	decoded, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return trimmed
	}
	return string(decoded)
}

// deviceHash computes the keyed device fragment: HMAC-SHA256 under the
// effective key when a secret is configured, plain SHA-256 otherwise, hex
// encoded and truncated to deviceWidth.
func deviceHash(cfg Config, deviceID string) string {
	var sum []byte
	if cfg.Secret != "" {
		key := effectiveKey(cfg)
		mac := hmac.New(sha256.New, key)
		mac.Write([]byte(deviceID))
		sum = mac.Sum(nil)
	} else {
		digest := sha256.Sum256([]byte(deviceID))
		sum = digest[:]
	}
	return hex.EncodeToString(sum)[:deviceWidth]
}

// encodeCustom serializes the custom metadata object: JSON (Go's encoder
// sorts map keys, so the output is deterministic), optional gzip, base64-url.
// The serialized size is capped before compression.
func encodeCustom(m MetadataConfig) (string, error) {
	raw, err := json.Marshal(m.Custom)
	if err != nil {
		return "", &ConfigError{Field: "metadata.custom", Message: "custom metadata is not serializable: " + err.Error()}
	}
	if len(raw) > m.CustomMaxBytes {
		return "", &ConfigError{Field: "metadata.custom", Message: fmt.Sprintf("custom metadata is %d bytes, cap is %d", len(raw), m.CustomMaxBytes)}
	}
	if m.CompressCustom {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return "", err
		}
		if err := zw.Close(); err != nil {
			return "", err
		}
		raw = buf.Bytes()
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeCustom(frag string, compressed bool) (map[string]any, error) {
	raw, err := base64.RawURLEncoding.DecodeString(frag)
	if err != nil {
		return nil, fmt.Errorf("idgen: bad custom metadata fragment: %w", err)
	}
	if compressed {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("idgen: bad custom metadata gzip stream: %w", err)
		}
		raw, err = io.ReadAll(zr)
		if err != nil {
			return nil, err
		}
		if err := zr.Close(); err != nil {
			return nil, err
		}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("idgen: custom metadata is not a JSON object: %w", err)
	}
	return out, nil
}
