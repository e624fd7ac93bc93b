package internal

import (
	"crypto/rand"
	"encoding/hex"
)

const opaqueTokenBytes = 32

// NewOpaqueToken returns a 256-bit cryptographically random token encoded as
// 64 lowercase hex characters. Used for email-verification and
// password-reset tokens.
func NewOpaqueToken() (string, error) {
	var raw [opaqueTokenBytes]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}
