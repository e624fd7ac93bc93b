package authcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	return cfg
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 180*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 12, cfg.Password.Cost)
	assert.Equal(t, 8, cfg.Password.MinLength)
	assert.Equal(t, 5, cfg.Lockout.Threshold)
	assert.Equal(t, 15*time.Minute, cfg.Lockout.Duration)
	assert.Equal(t, time.Hour, cfg.Reset.TokenTTL)
}

func TestValidateAcceptsDefaultsWithSecret(t *testing.T) {
	cfg := validTestConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.JWT.Secret = []byte("short") }},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }},
		{"zero refresh ttl", func(c *Config) { c.JWT.RefreshTTL = 0 }},
		{"refresh below access", func(c *Config) { c.JWT.RefreshTTL = time.Minute; c.JWT.AccessTTL = time.Hour }},
		{"negative leeway", func(c *Config) { c.JWT.Leeway = -time.Second }},
		{"bad bcrypt cost", func(c *Config) { c.Password.Cost = 99 }},
		{"tiny min length", func(c *Config) { c.Password.MinLength = 1 }},
		{"zero threshold", func(c *Config) { c.Lockout.Threshold = 0 }},
		{"zero lockout duration", func(c *Config) { c.Lockout.Duration = 0 }},
		{"zero reset ttl", func(c *Config) { c.Reset.TokenTTL = 0 }},
		{"audit without buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCloneConfigIsDeep(t *testing.T) {
	cfg := validTestConfig()
	clone := cloneConfig(cfg)

	clone.JWT.Secret[0] = 'x'
	assert.NotEqual(t, cfg.JWT.Secret[0], clone.JWT.Secret[0], "secret buffer shared between clones")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AUTHCORE_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("AUTHCORE_ACCESS_TTL", "5m")
	t.Setenv("AUTHCORE_LOCKOUT_THRESHOLD", "3")
	t.Setenv("AUTHCORE_BCRYPT_COST", "10")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, []byte("0123456789abcdef0123456789abcdef"), cfg.JWT.Secret)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 3, cfg.Lockout.Threshold)
	assert.Equal(t, 10, cfg.Password.Cost)
	// Unset knobs keep their defaults.
	assert.Equal(t, 180*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, time.Hour, cfg.Reset.TokenTTL)
}

func TestConfigFromEnvMissingSecret(t *testing.T) {
	t.Setenv("AUTHCORE_JWT_SECRET", "")

	_, err := ConfigFromEnv()
	assert.Error(t, err)
}
