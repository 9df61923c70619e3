package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/idforge/idforge/pkg/cliconfig"
	"github.com/idforge/idforge/pkg/idgen"
)

// configFlags mirrors the generation parameters as command-line flags. The
// same set is registered on generate, verify, and parse so a generation
// command line can be replayed for verification verbatim.
type configFlags struct {
	profile string

	length    int
	mode      string
	algorithm string
	alphabet  string
	caseMode  string

	separator string
	stride    int
	prefix    string
	suffix    string

	secret string
	salt   string
	pepper string

	enhancedEntropy bool
	reseed          bool
	doubleHash      bool
	memoryHard      bool
	unique          bool
	strict          bool

	checksum         bool
	checksumCount    int
	checksumLength   int
	checksumPosition string
	checksumOffsets  []int

	timestamp    bool
	counter      bool
	ttl          time.Duration
	geo          string
	device       string
	customJSON   string
	customMax    int
	compressMeta bool
}

func (f *configFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.profile, "profile", "", "YAML profile file with generation parameters (default from IDFORGE_PROFILE)")

	fl.IntVarP(&f.length, "length", "l", 0, "Total identifier length (default 24)")
	fl.StringVarP(&f.mode, "mode", "m", "", "Payload mode: random, hash, hmac, hybrid, hmac-hash, memory-hard, simulated-pq")
	fl.StringVar(&f.algorithm, "algorithm", "", "Hash algorithm: sha256, sha512")
	fl.StringVar(&f.alphabet, "alphabet", "", "Alphabet: alphanumeric, unambiguous, or a literal symbol set")
	fl.StringVar(&f.caseMode, "case", "", "Core case transform: upper, lower, mixed")

	fl.StringVar(&f.separator, "separator", "", "Separator string inserted between chunks")
	fl.IntVar(&f.stride, "stride", 0, "Chunk size for separator insertion (default 4)")
	fl.StringVar(&f.prefix, "prefix", "", "Prefix joined with one separator occurrence")
	fl.StringVar(&f.suffix, "suffix", "", "Suffix joined with one separator occurrence")

	fl.StringVar(&f.secret, "secret", "", "Secret for keyed modes (default from IDFORGE_SECRET)")
	fl.StringVar(&f.salt, "salt", "", "Salt mixed into keyed modes (default from IDFORGE_SALT)")
	fl.StringVar(&f.pepper, "pepper", "", "Pepper combined with the secret via HKDF (default from IDFORGE_PEPPER)")

	fl.BoolVar(&f.enhancedEntropy, "enhanced-entropy", false, "Fold extra CSPRNG draws into random mode")
	fl.BoolVar(&f.reseed, "reseed", false, "Append 32 extra random bytes in random mode")
	fl.BoolVar(&f.doubleHash, "double-hash", false, "Hash the digest twice in hash modes")
	fl.BoolVar(&f.memoryHard, "memory-hard", false, "Use the full 100k PBKDF2 iterations in memory-hard mode")
	fl.BoolVar(&f.unique, "unique", false, "Check candidates against the collision store")
	fl.BoolVar(&f.strict, "strict", false, "Treat advisory warnings as errors")

	fl.BoolVar(&f.checksum, "checksum", false, "Insert checksum blocks")
	fl.IntVar(&f.checksumCount, "checksum-count", 0, "Number of checksum blocks (default 1)")
	fl.IntVar(&f.checksumLength, "checksum-length", 0, "Hex length of each checksum block (default 4)")
	fl.StringVar(&f.checksumPosition, "checksum-position", "", "Checksum position: start, middle, end, custom")
	fl.IntSliceVar(&f.checksumOffsets, "checksum-offset", nil, "Explicit block offset (repeatable, requires --checksum-position=custom)")

	fl.BoolVar(&f.timestamp, "timestamp", false, "Embed the generation timestamp")
	fl.BoolVar(&f.counter, "counter", false, "Embed a monotonic counter")
	fl.DurationVar(&f.ttl, "ttl", 0, "Embed an expiry of now+TTL (e.g. 1h30m)")
	fl.StringVar(&f.geo, "geo", "", "Embed a geo region tag")
	fl.StringVar(&f.device, "device", "", "Embed a keyed hash of this device identifier")
	fl.StringVar(&f.customJSON, "meta", "", "Embed a custom JSON object")
	fl.IntVar(&f.customMax, "meta-max-bytes", 0, "Serialized custom metadata cap (default 1024)")
	fl.BoolVar(&f.compressMeta, "meta-compress", false, "Gzip the custom metadata before encoding")
}

// build resolves the effective configuration: profile file (flag or
// IDFORGE_PROFILE), then explicit flags on top, then environment key
// material for anything still unset.
func (f *configFlags) build(cmd *cobra.Command, env *cliconfig.Env) (idgen.Config, error) {
	cfg := idgen.DefaultConfig()

	profilePath := f.profile
	if profilePath == "" {
		profilePath = env.Profile
	}
	if profilePath != "" {
		p, err := cliconfig.LoadProfile(profilePath)
		if err != nil {
			return cfg, err
		}
		cfg = p.ToConfig()
	}

	changed := cmd.Flags().Changed
	if changed("length") {
		cfg.Length = f.length
	}
	if changed("mode") {
		cfg.Mode = idgen.Mode(f.mode)
	}
	if changed("algorithm") {
		cfg.Algorithm = idgen.Algorithm(f.algorithm)
	}
	if changed("alphabet") {
		cfg.Alphabet = cliconfig.ResolveAlphabet(f.alphabet)
	}
	if changed("case") {
		if f.caseMode == "mixed" {
			cfg.Case = idgen.CaseMixed
		} else {
			cfg.Case = idgen.Case(f.caseMode)
		}
	}
	if changed("separator") {
		cfg.Separator = f.separator
	}
	if changed("stride") {
		cfg.SeparatorStride = f.stride
	}
	if changed("prefix") {
		cfg.Prefix = f.prefix
	}
	if changed("suffix") {
		cfg.Suffix = f.suffix
	}
	if changed("secret") {
		cfg.Secret = f.secret
	}
	if changed("salt") {
		cfg.Salt = f.salt
	}
	if changed("pepper") {
		cfg.Pepper = f.pepper
	}
	if changed("enhanced-entropy") {
		cfg.EnhancedEntropy = f.enhancedEntropy
	}
	if changed("reseed") {
		cfg.Reseed = f.reseed
	}
	if changed("double-hash") {
		cfg.DoubleHash = f.doubleHash
	}
	if changed("memory-hard") {
		cfg.MemoryHardStrength = f.memoryHard
	}
	if changed("unique") {
		cfg.UniquenessCheck = f.unique
	}
	if changed("strict") {
		cfg.Strict = f.strict
	}

	if changed("checksum") {
		cfg.Checksum.Enabled = f.checksum
	}
	if changed("checksum-count") {
		cfg.Checksum.Count = f.checksumCount
	}
	if changed("checksum-length") {
		cfg.Checksum.Length = f.checksumLength
	}
	if changed("checksum-position") {
		cfg.Checksum.Position = f.checksumPosition
	}
	if changed("checksum-offset") {
		cfg.Checksum.Offsets = f.checksumOffsets
	}

	if changed("timestamp") {
		cfg.Metadata.EmbedTimestamp = f.timestamp
	}
	if changed("counter") {
		cfg.Metadata.EmbedCounter = f.counter
	}
	if changed("ttl") {
		cfg.Metadata.EmbedExpiry = true
		cfg.Metadata.TTL = f.ttl
	}
	if changed("geo") {
		cfg.Metadata.GeoRegion = f.geo
	}
	if changed("device") {
		cfg.Metadata.BindDevice = f.device != ""
		cfg.Metadata.DeviceID = f.device
	}
	if changed("meta") {
		var custom map[string]any
		if err := json.Unmarshal([]byte(f.customJSON), &custom); err != nil {
			return cfg, fmt.Errorf("--meta must be a JSON object: %w", err)
		}
		cfg.Metadata.Custom = custom
	}
	if changed("meta-max-bytes") {
		cfg.Metadata.CustomMaxBytes = f.customMax
	}
	if changed("meta-compress") {
		cfg.Metadata.CompressCustom = f.compressMeta
	}

	// Environment key material fills remaining gaps.
	if cfg.Secret == "" {
		cfg.Secret = env.Secret
	}
	if cfg.Salt == "" {
		cfg.Salt = env.Salt
	}
	if cfg.Pepper == "" {
		cfg.Pepper = env.Pepper
	}
	return cfg, nil
}
