package authcore

import (
	"fmt"
	"regexp"
	"strings"
)

// emailPattern accepts word characters with optional single dot or hyphen
// separators on either side of the @, and a 2-3 letter final label.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// normalizeEmail is the canonical form used for storage and lookup. Two
// addresses differing only in case or surrounding whitespace are the same
// account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email required", ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: malformed email", ErrValidation)
	}
	return nil
}

func (e *Engine) validateSecret(secret string) error {
	if len(secret) < e.config.Password.MinLength {
		return fmt.Errorf("%w: secret shorter than %d characters", ErrValidation, e.config.Password.MinLength)
	}
	return nil
}
