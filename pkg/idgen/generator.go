package idgen

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/idforge/idforge/pkg/audit"
)

// nowFunc supplies generation timestamps; a variable so tests can pin time.
var nowFunc = time.Now

// CollisionStore tracks identifiers already handed out. Implementations may
// delegate to external storage and must honor ctx.
type CollisionStore interface {
	Has(ctx context.Context, id string) (bool, error)
	Add(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

// RevocationList tracks revoked identifiers by their audit hash.
type RevocationList interface {
	IsRevoked(ctx context.Context, idHash string) (bool, error)
	Revoke(ctx context.Context, idHash string) error
	Unrevoke(ctx context.Context, idHash string) error
}

// RateLimiter gates operations by key before any generation work starts.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Generator runs the identifier pipeline. The zero collaborators are all
// optional: without a collision store UniquenessCheck configs fail, without a
// revocation list verification skips the revocation check, without a rate
// limiter nothing is gated, and without a sink no audit trail is written.
//
// A Generator owns its monotonic counter and entropy pool, so independent
// instances are fully isolated. All methods are safe for concurrent use.
type Generator struct {
	pool        *EntropyPool
	counter     atomic.Uint64
	limiter     RateLimiter
	collisions  CollisionStore
	revocations RevocationList
	sink        audit.Sink
	log         *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithEntropyPool replaces the default entropy pool.
func WithEntropyPool(p *EntropyPool) Option {
	return func(g *Generator) { g.pool = p }
}

// WithRateLimiter gates Generate calls through l.
func WithRateLimiter(l RateLimiter) Option {
	return func(g *Generator) { g.limiter = l }
}

// WithCollisionStore enables UniquenessCheck configurations.
func WithCollisionStore(s CollisionStore) Option {
	return func(g *Generator) { g.collisions = s }
}

// WithRevocationList makes verification consult the revocation list.
func WithRevocationList(r RevocationList) Option {
	return func(g *Generator) { g.revocations = r }
}

// WithAuditSink records an audit event per operation.
func WithAuditSink(s audit.Sink) Option {
	return func(g *Generator) { g.sink = s }
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// New creates a Generator with the given options.
func New(opts ...Option) *Generator {
	g := &Generator{
		sink: audit.NoOpSink{},
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.pool == nil {
		g.pool = NewEntropyPool(0)
	}
	return g
}

// rate limit keys used by the generator's own operations.
const rateKeyGenerate = "generate"

// Generate produces one identifier under cfg. The configuration is validated
// eagerly; the rate limiter is consulted before any cryptographic work; the
// collision loop runs only for UniquenessCheck configs.
func (g *Generator) Generate(ctx context.Context, cfg Config) (string, error) {
	id, err := g.generate(ctx, cfg)

	ev := audit.NewEvent(audit.ActionGenerate, audit.HashID(id), err == nil)
	ev = ev.WithMetadata(map[string]string{"mode": string(cfg.withDefaults().Mode)})
	if serr := g.sink.Record(ctx, ev); serr != nil {
		g.log.Warn("audit sink rejected event", "action", ev.Action, "error", serr)
	}
	return id, err
}

func (g *Generator) generate(ctx context.Context, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	cfg = cfg.withDefaults()

	for _, w := range cfg.Lint() {
		g.log.Warn("config advisory", "field", w.Field, "message", w.Message)
	}

	if g.limiter != nil {
		ok, err := g.limiter.Allow(ctx, rateKeyGenerate)
		if err != nil {
			return "", fmt.Errorf("idgen: rate limiter: %w", err)
		}
		if !ok {
			return "", ErrRateLimited
		}
	}

	if cfg.UniquenessCheck && g.collisions == nil {
		return "", &ConfigError{Field: "uniquenessCheck", Message: "no collision store configured on this generator"}
	}

	candidate, err := g.buildCandidate(cfg, "")
	if err != nil {
		return "", err
	}
	if !cfg.UniquenessCheck {
		return candidate, nil
	}

	for attempt := 0; ; attempt++ {
		seen, err := g.collisions.Has(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("idgen: collision store: %w", err)
		}
		if !seen {
			if err := g.collisions.Add(ctx, candidate); err != nil {
				return "", fmt.Errorf("idgen: collision store: %w", err)
			}
			return candidate, nil
		}
		if attempt >= maxCollisionRetries {
			return "", ErrGenerationExhausted
		}
		// Mix a counter-derived fragment into the regenerated core so
		// retries diverge even for derived modes.
		retrySalt := strconv.FormatUint(g.counter.Add(1), 36)
		candidate, err = g.buildCandidate(cfg, retrySalt)
		if err != nil {
			return "", err
		}
	}
}

// buildCandidate runs the full forward pipeline once: metadata plan, core
// payload, case transform, metadata append, checksum insertion, separators,
// framing.
func (g *Generator) buildCandidate(cfg Config, retrySalt string) (string, error) {
	meta, err := embedMetadata(cfg, nowFunc(), g.nextCounter(cfg))
	if err != nil {
		return "", err
	}
	coreLen := cfg.Length - len(meta) - cfg.checksumLen()
	if coreLen < MinCoreLength {
		// Validate already rejects this; a change in custom metadata between
		// Validate and here would be a caller bug.
		return "", &LengthError{Requested: cfg.Length, MetadataLen: len(meta), ChecksumLen: cfg.checksumLen(), MinCore: MinCoreLength}
	}

	core, err := generatePayload(cfg, g.pool, coreLen, meta, retrySalt)
	if err != nil {
		return "", err
	}
	core = applyCase(core, cfg.Case)

	content := core + meta
	body, err := insertChecksums(cfg, content)
	if err != nil {
		return "", err
	}
	body = insertSeparators(body, cfg.Separator, cfg.SeparatorStride)
	return wrap(body, cfg.Prefix, cfg.Suffix, cfg.Separator), nil
}

// nextCounter advances the monotonic counter only when the config embeds it.
func (g *Generator) nextCounter(cfg Config) uint64 {
	if !cfg.Metadata.EmbedCounter {
		return 0
	}
	return g.counter.Add(1)
}

// GenerateBatch produces n identifiers under cfg, sharing one validation
// pass. With UniquenessCheck enabled every identifier is also checked against
// the collision store, so the batch is internally collision-free.
func (g *Generator) GenerateBatch(ctx context.Context, cfg Config, n int) ([]string, error) {
	if n <= 0 {
		return nil, &ConfigError{Field: "batch", Message: fmt.Sprintf("batch size %d must be positive", n)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := g.Generate(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Parse derives the structured view of id under cfg. It does not verify
// checksums; use Verify or VerifyDetail for that.
func (g *Generator) Parse(ctx context.Context, cfg Config, id string) (*Parsed, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parsed, err := parseIdentifier(cfg, id)

	ev := audit.NewEvent(audit.ActionParse, audit.HashID(id), err == nil)
	if serr := g.sink.Record(ctx, ev); serr != nil {
		g.log.Warn("audit sink rejected event", "action", ev.Action, "error", serr)
	}
	return parsed, err
}

// VerifyDetail verifies id under cfg and reports a reason code. It never
// panics; internal failures come back as typed reasons. The revocation list
// is consulted when one is configured.
func (g *Generator) VerifyDetail(ctx context.Context, cfg Config, id string) VerifyResult {
	result := g.verifyDetail(ctx, cfg, id)

	ev := audit.NewEvent(audit.ActionVerify, audit.HashID(id), result.OK)
	ev = ev.WithMetadata(map[string]string{"reason": string(result.Reason)})
	if serr := g.sink.Record(ctx, ev); serr != nil {
		g.log.Warn("audit sink rejected event", "action", ev.Action, "error", serr)
	}
	return result
}

func (g *Generator) verifyDetail(ctx context.Context, cfg Config, id string) (result VerifyResult) {
	// Verification is total over arbitrary input: a panic anywhere below
	// becomes a typed failure, never an escape.
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("verification panicked", "panic", r)
			result = failure(ReasonInternal)
		}
	}()

	if g.revocations != nil {
		revoked, err := g.revocations.IsRevoked(ctx, audit.HashID(id))
		if err != nil {
			return failure(ReasonInternal)
		}
		if revoked {
			return failure(ReasonRevoked)
		}
	}

	_, result = verifyIdentifier(cfg, id)
	return result
}

// Verify is the boolean boundary over VerifyDetail: true only when the
// identifier parses, every checksum matches, it is not expired, and it is
// not revoked. All internal errors collapse to false.
func (g *Generator) Verify(ctx context.Context, cfg Config, id string) bool {
	return g.VerifyDetail(ctx, cfg, id).OK
}

// Revoke marks id as revoked on the configured revocation list.
func (g *Generator) Revoke(ctx context.Context, id string) error {
	if g.revocations == nil {
		return fmt.Errorf("idgen: no revocation list configured")
	}
	err := g.revocations.Revoke(ctx, audit.HashID(id))
	ev := audit.NewEvent(audit.ActionRevoke, audit.HashID(id), err == nil)
	if serr := g.sink.Record(ctx, ev); serr != nil {
		g.log.Warn("audit sink rejected event", "action", ev.Action, "error", serr)
	}
	return err
}

// Unrevoke removes id from the configured revocation list.
func (g *Generator) Unrevoke(ctx context.Context, id string) error {
	if g.revocations == nil {
		return fmt.Errorf("idgen: no revocation list configured")
	}
	err := g.revocations.Unrevoke(ctx, audit.HashID(id))
	ev := audit.NewEvent(audit.ActionUnrevoke, audit.HashID(id), err == nil)
	if serr := g.sink.Record(ctx, ev); serr != nil {
		g.log.Warn("audit sink rejected event", "action", ev.Action, "error", serr)
	}
	return err
}
