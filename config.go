package authcore

import (
	"errors"
	"time"
)

// Config defines the engine configuration. Config values are read during
// Builder.Build and treated as immutable afterwards.
type Config struct {
	JWT      JWTConfig
	Password PasswordConfig
	Lockout  LockoutConfig
	Reset    ResetConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures token issuance. Both token kinds are signed with the
// single shared Secret; there is no server-side revocation list, so a leaked
// refresh token stays valid until natural expiry.
type JWTConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Leeway     time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig configures the bcrypt hasher. Cost is the bcrypt work
// factor. When UpgradeOnLogin is set, hashes stored at a lower cost are
// transparently rehashed after a successful login.
type PasswordConfig struct {
	Cost           int
	MinLength      int
	UpgradeOnLogin bool
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig configures the failed-login guard. After Threshold
// consecutive failures the account is locked for Duration; attempts during
// the lock are rejected before any hashing work is spent.
type LockoutConfig struct {
	Threshold int
	Duration  time.Duration
}

/*
====================================
RESET CONFIG
====================================
*/

// ResetConfig configures the password-reset flow. EnumerationDelay is slept
// on reset requests for unknown emails so the generic ack stays observably
// identical to the known-email path.
type ResetConfig struct {
	TokenTTL         time.Duration
	EnumerationDelay time.Duration
}

// AuditConfig configures the audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig configures the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the engine defaults. The JWT secret is empty and
// must be set before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 180 * 24 * time.Hour,
			Leeway:     30 * time.Second,
		},
		Password: PasswordConfig{
			Cost:           12,
			MinLength:      8,
			UpgradeOnLogin: true,
		},
		Lockout: LockoutConfig{
			Threshold: 5,
			Duration:  15 * time.Minute,
		},
		Reset: ResetConfig{
			TokenTTL:         time.Hour,
			EnumerationDelay: 120 * time.Millisecond,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for values the engine cannot operate
// with. Builder.Build calls it before wiring anything.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT Secret must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	if c.Password.Cost < 4 || c.Password.Cost > 31 {
		return errors.New("password Cost must be a valid bcrypt cost (4..31)")
	}
	if c.Password.MinLength < 6 {
		return errors.New("password MinLength must be >= 6")
	}

	if c.Lockout.Threshold <= 0 {
		return errors.New("lockout Threshold must be > 0")
	}
	if c.Lockout.Duration <= 0 {
		return errors.New("lockout Duration must be > 0")
	}

	if c.Reset.TokenTTL <= 0 {
		return errors.New("reset TokenTTL must be > 0")
	}
	if c.Reset.EnumerationDelay < 0 {
		return errors.New("reset EnumerationDelay must be >= 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
