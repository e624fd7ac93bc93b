package authcore

import (
	"errors"

	"github.com/taskora/authcore/jwt"
	"github.com/taskora/authcore/password"
)

// Builder assembles an [Engine]. A Builder is single-use: Build returns an
// error when called twice.
type Builder struct {
	config Config

	store  AccountStore
	mailer Mailer
	sink   AuditSink

	built bool
}

// New returns a Builder seeded with the engine defaults (15m/180d token
// TTLs, bcrypt cost 12, lockout after 5 failures for 15m, 1h reset tokens).
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the full configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore wires the credential store. Required.
func (b *Builder) WithStore(store AccountStore) *Builder {
	b.store = store
	return b
}

// WithMailer wires the external mail collaborator. Optional; the default
// discards mail.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithAuditSink wires the audit sink. Only read when audit is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles in-process metrics.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires all dependencies, and returns a
// ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("account store required")
	}

	hasher, err := password.NewBcrypt(password.Config{Cost: cfg.Password.Cost})
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
		Issuer:     cfg.JWT.Issuer,
		Leeway:     cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	// Compared against on unknown-email logins so the miss path spends the
	// same hashing cost as a real mismatch.
	dummyHash, err := hasher.Hash("authcore.timing.equalizer")
	if err != nil {
		return nil, err
	}

	mailer := b.mailer
	if mailer == nil {
		mailer = NoOpMailer{}
	}

	b.built = true

	return &Engine{
		config:    cfg,
		store:     b.store,
		mailer:    mailer,
		hasher:    hasher,
		tokens:    tokens,
		audit:     newAuditDispatcher(cfg.Audit, b.sink),
		metrics:   NewMetrics(cfg.Metrics),
		dummyHash: dummyHash,
	}, nil
}
