package authcore

import "errors"

var (
	// ErrInvalidCredentials is returned for every login failure that would
	// otherwise reveal whether an email is registered: unknown email, wrong
	// secret, or empty input all surface identically.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned by Register when the normalized email already
	// belongs to an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAccountNotFound is returned by store lookups that miss.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNotActive is returned when a PENDING, SUSPENDED, or INACTIVE
	// account attempts an operation reserved for ACTIVE accounts.
	ErrAccountNotActive = errors.New("account not active")
	// ErrAccountLocked is returned while lockedUntil lies in the future,
	// regardless of secret correctness.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrTokenInvalid is returned by Authenticate for any access token that
	// fails signature, expiry, or type checks.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrRefreshInvalid is returned by Refresh for any refresh token that
	// fails signature, expiry, or type checks, or whose account is gone.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrVerificationInvalid is returned when an email-verification token is
	// unknown or already consumed. Replayed tokens always land here.
	ErrVerificationInvalid = errors.New("verification token invalid")
	// ErrResetInvalid is returned when a password-reset token is unknown,
	// already consumed, or past its expiry.
	ErrResetInvalid = errors.New("reset token invalid or expired")
	// ErrValidation is returned for malformed input: empty or malformed
	// email, secret below the configured minimum length, unknown role.
	ErrValidation = errors.New("invalid input")
	// ErrStoreUnavailable wraps backing-store failures that are not lookup
	// misses.
	ErrStoreUnavailable = errors.New("account store unavailable")
	// ErrEngineNotReady is returned when an Engine method is called before
	// Builder.Build wired all dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
)
