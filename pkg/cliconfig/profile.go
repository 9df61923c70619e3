package cliconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/idforge/idforge/pkg/idgen"
)

// Named alphabet aliases accepted in profile files and on the command line.
const (
	AlphabetAliasAlphanumeric = "alphanumeric"
	AlphabetAliasUnambiguous  = "unambiguous"
)

// Profile is the YAML representation of an idgen.Config. Field names mirror
// the generation parameters one-to-one; anything omitted keeps the library
// default. Structural constraints are checked with validator tags before the
// deeper idgen.Config.Validate pass runs.
type Profile struct {
	Length    int    `yaml:"length" validate:"omitempty,min=8"`
	Mode      string `yaml:"mode" validate:"omitempty,oneof=random hash hmac hybrid hmac-hash memory-hard simulated-pq"`
	Algorithm string `yaml:"algorithm" validate:"omitempty,oneof=sha256 sha512"`
	Alphabet  string `yaml:"alphabet"`
	Case      string `yaml:"case" validate:"omitempty,oneof=upper lower mixed"`

	Separator string `yaml:"separator"`
	Stride    int    `yaml:"stride" validate:"omitempty,min=1"`
	Prefix    string `yaml:"prefix"`
	Suffix    string `yaml:"suffix"`

	Secret string `yaml:"secret"`
	Salt   string `yaml:"salt"`
	Pepper string `yaml:"pepper"`

	EnhancedEntropy bool `yaml:"enhancedEntropy"`
	Reseed          bool `yaml:"reseed"`
	DoubleHash      bool `yaml:"doubleHash"`
	MemoryHard      bool `yaml:"memoryHard"`
	Unique          bool `yaml:"unique"`
	Strict          bool `yaml:"strict"`

	Checksum struct {
		Enabled  bool   `yaml:"enabled"`
		Count    int    `yaml:"count" validate:"omitempty,min=1,max=8"`
		Length   int    `yaml:"length" validate:"omitempty,min=1,max=64"`
		Position string `yaml:"position" validate:"omitempty,oneof=start middle end custom"`
		Offsets  []int  `yaml:"offsets"`
	} `yaml:"checksum"`

	Metadata struct {
		Timestamp bool           `yaml:"timestamp"`
		Counter   bool           `yaml:"counter"`
		Expiry    bool           `yaml:"expiry"`
		TTL       time.Duration  `yaml:"ttl"`
		Geo       string         `yaml:"geo"`
		Device    string         `yaml:"device"`
		Custom    map[string]any `yaml:"custom"`
		MaxBytes  int            `yaml:"maxBytes" validate:"omitempty,min=1"`
		Compress  bool           `yaml:"compress"`
	} `yaml:"metadata"`
}

var validate = validator.New()

// LoadProfile reads and structurally validates a profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cliconfig: read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("cliconfig: parse profile %s: %w", path, err)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("cliconfig: profile %s: %w", path, err)
	}
	return &p, nil
}

// ToConfig maps the profile onto an idgen.Config, resolving alphabet
// aliases. The returned config still goes through idgen's own validation.
func (p *Profile) ToConfig() idgen.Config {
	cfg := idgen.DefaultConfig()
	if p.Length != 0 {
		cfg.Length = p.Length
	}
	if p.Mode != "" {
		cfg.Mode = idgen.Mode(p.Mode)
	}
	if p.Algorithm != "" {
		cfg.Algorithm = idgen.Algorithm(p.Algorithm)
	}
	cfg.Alphabet = ResolveAlphabet(p.Alphabet)
	if p.Case != "" && p.Case != "mixed" {
		cfg.Case = idgen.Case(p.Case)
	}

	cfg.Separator = p.Separator
	cfg.SeparatorStride = p.Stride
	cfg.Prefix = p.Prefix
	cfg.Suffix = p.Suffix
	cfg.Secret = p.Secret
	cfg.Salt = p.Salt
	cfg.Pepper = p.Pepper

	cfg.EnhancedEntropy = p.EnhancedEntropy
	cfg.Reseed = p.Reseed
	cfg.DoubleHash = p.DoubleHash
	cfg.MemoryHardStrength = p.MemoryHard
	cfg.UniquenessCheck = p.Unique
	cfg.Strict = p.Strict

	cfg.Checksum = idgen.ChecksumConfig{
		Enabled:  p.Checksum.Enabled,
		Count:    p.Checksum.Count,
		Length:   p.Checksum.Length,
		Position: p.Checksum.Position,
		Offsets:  p.Checksum.Offsets,
	}
	cfg.Metadata = idgen.MetadataConfig{
		EmbedTimestamp: p.Metadata.Timestamp,
		EmbedCounter:   p.Metadata.Counter,
		EmbedExpiry:    p.Metadata.Expiry,
		TTL:            p.Metadata.TTL,
		GeoRegion:      p.Metadata.Geo,
		BindDevice:     p.Metadata.Device != "",
		DeviceID:       p.Metadata.Device,
		Custom:         p.Metadata.Custom,
		CustomMaxBytes: p.Metadata.MaxBytes,
		CompressCustom: p.Metadata.Compress,
	}
	return cfg
}

// ResolveAlphabet maps an alias (or literal alphabet string) to the alphabet
// idgen expects. Empty selects the default alphanumeric alphabet.
func ResolveAlphabet(s string) string {
	switch s {
	case "", AlphabetAliasAlphanumeric:
		return idgen.AlphabetAlphanumeric
	case AlphabetAliasUnambiguous:
		return idgen.AlphabetUnambiguous
	default:
		return s
	}
}
