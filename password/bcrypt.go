package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently truncates beyond 72 bytes; reject instead.
const maxSecretBytes = 72

// Config configures the bcrypt hasher. Cost is the bcrypt work factor; the
// production default is 12.
type Config struct {
	Cost int
}

// Bcrypt is a one-way adaptive hasher over x/crypto/bcrypt. Hash generates
// a fresh random salt per call; Verify is constant-time by library
// guarantee.
//
// Bcrypt instances are configured once and treated as immutable; all
// methods are safe for concurrent use.
type Bcrypt struct {
	config Config
}

// NewBcrypt validates cfg and returns a ready hasher.
func NewBcrypt(cfg Config) (*Bcrypt, error) {
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}

	return &Bcrypt{config: cfg}, nil
}

// Hash derives a salted hash of secret at the configured cost.
func (b *Bcrypt) Hash(secret string) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty secret")
	}
	if len(secret) > maxSecretBytes {
		return "", errors.New("secret exceeds 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), b.config.Cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether secret matches encodedHash. A malformed hash is an
// error; a plain mismatch is (false, nil).
func (b *Bcrypt) Verify(secret, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// NeedsUpgrade reports whether encodedHash was generated at a lower cost
// than currently configured.
func (b *Bcrypt) NeedsUpgrade(encodedHash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return false, err
	}

	return cost < b.config.Cost, nil
}
