package authcore

import (
	"errors"
	"time"

	"github.com/pawshelter/authcore/internal/stores"
	"github.com/pawshelter/authcore/token"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	identity  IdentityStore
	sms       SMSSender
	clock     Clock
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with the package defaults.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the redis client backing the challenge, SMS code, and code
// set stores.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithIdentityStore sets the external identity backend.
func (b *Builder) WithIdentityStore(store IdentityStore) *Builder {
	b.identity = store
	return b
}

// WithSMSSender sets the SMS transport.
func (b *Builder) WithSMSSender(sender SMSSender) *Builder {
	b.sms = sender
	return b
}

// WithClock overrides the time source; tests inject a fixed clock here.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithAuditSink sets the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter recording.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires every store and manager, and
// returns an immutable Engine. A Builder may build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.identity == nil {
		return nil, errors.New("identity store required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = SystemClock()
	}
	now := func() time.Time { return clock.Now() }

	engine := &Engine{
		config:   cfg,
		identity: b.identity,
		sms:      b.sms,
		clock:    clock,
	}

	engine.challenges = stores.NewChallengeStore(b.redis, cfg.Redis.ChallengePrefix, now)
	engine.smsCodes = stores.NewSMSCodeStore(b.redis, cfg.Redis.SMSCodePrefix, now)

	codeSets := stores.NewCodeSetStore(b.redis, cfg.Redis.CodeSetPrefix)
	engine.backupCodes = newCodeVault(codeSets, stores.CodeSetBackup, cfg.BackupCodes)
	engine.recoveryCodes = newCodeVault(codeSets, stores.CodeSetRecovery, cfg.RecoveryCodes)

	engine.totp = newTOTPManager(cfg.TOTP, now)
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	tm, err := token.NewManager(token.Config{
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshTTL:    cfg.Tokens.RefreshTTL,
		SigningMethod: token.SigningMethod(cfg.Tokens.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Tokens.PrivateKey),
		PublicKey:     cloneBytes(cfg.Tokens.PublicKey),
		Issuer:        cfg.Tokens.Issuer,
		Audience:      cfg.Tokens.Audience,
		Leeway:        cfg.Tokens.Leeway,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}
	engine.tokens = tm

	b.built = true

	return engine, nil
}
