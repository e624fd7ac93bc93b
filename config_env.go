package authcore

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type envConfig struct {
	JWTSecret  string        `env:"AUTHCORE_JWT_SECRET,required"`
	AccessTTL  time.Duration `env:"AUTHCORE_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL time.Duration `env:"AUTHCORE_REFRESH_TTL" envDefault:"4320h"`
	Issuer     string        `env:"AUTHCORE_JWT_ISSUER"`

	BcryptCost        int  `env:"AUTHCORE_BCRYPT_COST" envDefault:"12"`
	PasswordMinLength int  `env:"AUTHCORE_PASSWORD_MIN_LENGTH" envDefault:"8"`
	UpgradeOnLogin    bool `env:"AUTHCORE_PASSWORD_UPGRADE_ON_LOGIN" envDefault:"true"`

	LockoutThreshold int           `env:"AUTHCORE_LOCKOUT_THRESHOLD" envDefault:"5"`
	LockoutDuration  time.Duration `env:"AUTHCORE_LOCKOUT_DURATION" envDefault:"15m"`

	ResetTokenTTL time.Duration `env:"AUTHCORE_RESET_TOKEN_TTL" envDefault:"1h"`

	AuditEnabled   bool `env:"AUTHCORE_AUDIT_ENABLED" envDefault:"false"`
	MetricsEnabled bool `env:"AUTHCORE_METRICS_ENABLED" envDefault:"false"`
}

// ConfigFromEnv loads the process-wide configuration surface from
// AUTHCORE_* environment variables, layered over the engine defaults.
// AUTHCORE_JWT_SECRET is required; everything else falls back to the same
// defaults Builder uses.
func ConfigFromEnv() (Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("authcore: parse environment: %w", err)
	}

	cfg := defaultConfig()
	cfg.JWT.Secret = []byte(ec.JWTSecret)
	cfg.JWT.AccessTTL = ec.AccessTTL
	cfg.JWT.RefreshTTL = ec.RefreshTTL
	cfg.JWT.Issuer = ec.Issuer
	cfg.Password.Cost = ec.BcryptCost
	cfg.Password.MinLength = ec.PasswordMinLength
	cfg.Password.UpgradeOnLogin = ec.UpgradeOnLogin
	cfg.Lockout.Threshold = ec.LockoutThreshold
	cfg.Lockout.Duration = ec.LockoutDuration
	cfg.Reset.TokenTTL = ec.ResetTokenTTL
	cfg.Audit.Enabled = ec.AuditEnabled
	cfg.Metrics.Enabled = ec.MetricsEnabled

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("authcore: environment config invalid: %w", err)
	}

	return cfg, nil
}
