package authcore

import (
	"context"
	"time"
)

// AccountStatus represents the lifecycle state of an account.
//
// Only StatusActive accounts may obtain new tokens via login, and only
// StatusActive accounts pass the access middleware gate.
type AccountStatus string

const (
	// StatusPending marks a freshly registered account whose email
	// verification token has not been consumed yet.
	StatusPending AccountStatus = "pending"
	// StatusActive marks a verified account with full access.
	StatusActive AccountStatus = "active"
	// StatusSuspended marks an account under a temporary administrative
	// access block.
	StatusSuspended AccountStatus = "suspended"
	// StatusInactive marks an account deactivated by an administrator.
	StatusInactive AccountStatus = "inactive"
)

// Valid reports whether s is one of the four known statuses.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended, StatusInactive:
		return true
	}
	return false
}

// Role determines the authorization scope an account carries into the
// business routes. The engine only stores and propagates it; allow-list
// enforcement happens in the middleware package.
type Role string

const (
	// RoleSuperAdmin is the unrestricted platform role.
	RoleSuperAdmin Role = "super_admin"
	// RoleAdmin manages the system.
	RoleAdmin Role = "admin"
	// RoleProjectManager manages projects.
	RoleProjectManager Role = "project_manager"
	// RoleSEOSpecialist handles SEO work.
	RoleSEOSpecialist Role = "seo_specialist"
	// RoleDesigner handles design work.
	RoleDesigner Role = "designer"
	// RoleDeveloper handles software development.
	RoleDeveloper Role = "developer"
	// RoleCustomerService handles support.
	RoleCustomerService Role = "customer_service"
	// RoleHRManager handles human resources.
	RoleHRManager Role = "hr_manager"
	// RoleCustomer is the external customer role and the registration
	// default.
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleProjectManager, RoleSEOSpecialist,
		RoleDesigner, RoleDeveloper, RoleCustomerService, RoleHRManager,
		RoleCustomer:
		return true
	}
	return false
}

// Profile carries the non-credential fields attached to an account at
// registration. FirstName and LastName are required; the rest are optional.
type Profile struct {
	FirstName string
	LastName  string
	Phone     string
	Company   string
	Position  string
}

// Account is the full credential record as owned by the [AccountStore].
// It is returned only to the engine; public responses use [Identity].
//
// Zero time values mean "not set" for ResetExpiresAt, LockedUntil, and
// LastLoginAt.
type Account struct {
	ID         string
	Email      string
	SecretHash string
	Role       Role
	Status     AccountStatus
	Profile    Profile

	EmailVerified     bool
	VerificationToken string

	ResetToken     string
	ResetExpiresAt time.Time

	FailedLoginCount int
	LockedUntil      time.Time

	LastLoginAt time.Time
	CreatedAt   time.Time
}

// Identity is the public projection of an [Account]. It never carries the
// secret hash or any unconsumed token.
type Identity struct {
	ID            string
	Email         string
	Role          Role
	Status        AccountStatus
	Profile       Profile
	EmailVerified bool
	LastLoginAt   time.Time
	CreatedAt     time.Time
}

func (a *Account) identity() Identity {
	return Identity{
		ID:            a.ID,
		Email:         a.Email,
		Role:          a.Role,
		Status:        a.Status,
		Profile:       a.Profile,
		EmailVerified: a.EmailVerified,
		LastLoginAt:   a.LastLoginAt,
		CreatedAt:     a.CreatedAt,
	}
}

// TokenPair carries one access token and one refresh token minted together.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned by [Engine.Authenticate] and attached to the
// request context by the middleware package.
type AuthResult struct {
	AccountID string
	Email     string
	Role      Role
}

// CreateAccountInput is the input for [AccountStore.Create]. The engine has
// already normalized the email and hashed the secret.
type CreateAccountInput struct {
	Email             string
	SecretHash        string
	Role              Role
	Status            AccountStatus
	Profile           Profile
	VerificationToken string
	CreatedAt         time.Time
}

// LoginFailure is the outcome of one atomic failed-login accounting
// operation.
type LoginFailure struct {
	Count       int
	Locked      bool
	LockedUntil time.Time
}

// AccountStore is the persistence interface the engine consumes. Every
// method that mutates more than one field must apply its changes as a single
// atomic operation against the backing store; see store/redisstore for the
// reference implementation.
//
// Lookup misses return [ErrAccountNotFound]; duplicate emails return
// [ErrEmailTaken]; all other failures wrap [ErrStoreUnavailable].
type AccountStore interface {
	// Create persists a new account and returns it with its assigned ID.
	Create(ctx context.Context, input CreateAccountInput) (*Account, error)
	// FindByEmail looks an account up by its normalized email.
	FindByEmail(ctx context.Context, email string) (*Account, error)
	// FindByID looks an account up by ID.
	FindByID(ctx context.Context, id string) (*Account, error)
	// FindByVerificationToken looks an account up by its unconsumed
	// email-verification token.
	FindByVerificationToken(ctx context.Context, token string) (*Account, error)
	// FindByResetToken looks an account up by its unconsumed reset token,
	// additionally filtered to ResetExpiresAt > now.
	FindByResetToken(ctx context.Context, token string, now time.Time) (*Account, error)

	// ConsumeVerificationToken atomically clears the token, marks the email
	// verified, and transitions the account PENDING→ACTIVE. Of two
	// concurrent consumptions, exactly one succeeds; the loser observes
	// ErrAccountNotFound.
	ConsumeVerificationToken(ctx context.Context, token string) (*Account, error)
	// SetResetToken atomically replaces the account's reset token and its
	// absolute expiry, invalidating any previously issued reset token.
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	// ConsumeResetToken atomically swaps in the new secret hash and clears
	// both reset fields, provided the token exists and has not expired at
	// now. Of two concurrent consumptions, exactly one succeeds.
	ConsumeResetToken(ctx context.Context, token, newSecretHash string, now time.Time) (*Account, error)

	// RecordLoginFailure atomically increments the failed-login counter and,
	// when the counter reaches threshold and no lock is in place, sets
	// lockedUntil to now+lockout. A lockout window that already elapsed
	// restarts the counter at 1.
	RecordLoginFailure(ctx context.Context, id string, threshold int, lockout time.Duration, now time.Time) (LoginFailure, error)
	// RecordLoginSuccess atomically resets the failed-login counter, clears
	// any lock, and stamps lastLoginAt.
	RecordLoginSuccess(ctx context.Context, id string, now time.Time) error

	// UpdateStatus sets the account status and returns the updated record.
	UpdateStatus(ctx context.Context, id string, status AccountStatus) (*Account, error)
	// UpdateSecretHash replaces the stored secret hash.
	UpdateSecretHash(ctx context.Context, id, secretHash string) error
}
