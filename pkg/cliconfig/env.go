// Package cliconfig resolves the idforge CLI's configuration: environment
// defaults plus optional YAML profile files that mirror the generation
// parameters, so a config used at generation time can be reproduced exactly
// for later verification.
package cliconfig

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// Env holds environment-derived defaults. Flags override these; secrets are
// usually supplied this way so they stay out of shell history.
type Env struct {
	// Secret, Salt and Pepper are the default key material for keyed modes.
	Secret string `env:"IDFORGE_SECRET"`
	Salt   string `env:"IDFORGE_SALT"`
	Pepper string `env:"IDFORGE_PEPPER"`

	// Profile is the default profile file path.
	Profile string `env:"IDFORGE_PROFILE"`

	// AuditLog is a file path for the JSON-lines audit trail. Empty disables
	// the file sink.
	AuditLog string `env:"IDFORGE_AUDIT_LOG"`

	// RateLimit caps generation requests per minute. Zero disables gating.
	RateLimit int `env:"IDFORGE_RATE_LIMIT"`

	// LogLevel and LogFormat configure the CLI logger. LogFile, when set,
	// receives a JSON copy of every record in addition to stderr.
	LogLevel  string `env:"IDFORGE_LOG_LEVEL, default=info"`
	LogFormat string `env:"IDFORGE_LOG_FORMAT, default=text"`
	LogFile   string `env:"IDFORGE_LOG_FILE"`
}

// LoadEnv reads the environment defaults.
func LoadEnv(ctx context.Context) (*Env, error) {
	var e Env
	if err := envconfig.Process(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
