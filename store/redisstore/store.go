package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	authcore "github.com/taskora/authcore"
)

// DefaultPrefix namespaces all keys when none is configured.
const DefaultPrefix = "authcore"

// Hash field names of the per-account record.
const (
	fieldID                = "id"
	fieldEmail             = "email"
	fieldSecretHash        = "secret_hash"
	fieldRole              = "role"
	fieldStatus            = "status"
	fieldFirstName         = "first_name"
	fieldLastName          = "last_name"
	fieldPhone             = "phone"
	fieldCompany           = "company"
	fieldPosition          = "position"
	fieldEmailVerified     = "email_verified"
	fieldVerificationToken = "verification_token"
	fieldResetToken        = "reset_token"
	fieldResetExpiresAt    = "reset_expires_at"
	fieldFailedLoginCount  = "failed_login_count"
	fieldLockedUntil       = "locked_until"
	fieldLastLoginAt       = "last_login_at"
	fieldCreatedAt         = "created_at"
)

// createScript inserts the account hash and its indexes only if the email
// index slot is free.
//
//	KEYS[1] email index key
//	KEYS[2] account hash key
//	KEYS[3] verification token index key ("" token -> dummy key, skipped)
//	ARGV[1] account id
//	ARGV[2] "1" when a verification token index must be written
//	ARGV[3..] HSET field/value pairs
const createScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[2], unpack(ARGV, 3))
redis.call("SET", KEYS[1], ARGV[1])
if ARGV[2] == "1" then
  redis.call("SET", KEYS[3], ARGV[1])
end
return 1
`

var createLua = redis.NewScript(createScript)

// consumeVerificationScript redeems a verification token: exactly one
// caller gets the id back, the rest see nil.
//
//	KEYS[1] verification token index key
//	ARGV[1] account hash key prefix
const consumeVerificationScript = `
local id = redis.call("GET", KEYS[1])
if not id then
  return nil
end
redis.call("DEL", KEYS[1])
local acct = ARGV[1] .. id
if redis.call("EXISTS", acct) == 0 then
  return nil
end
redis.call("HSET", acct,
  "status", "active",
  "email_verified", "1",
  "verification_token", "")
return id
`

var consumeVerificationLua = redis.NewScript(consumeVerificationScript)

// setResetScript installs a reset token, replacing (and de-indexing) any
// previous one.
//
//	KEYS[1] account hash key
//	KEYS[2] new reset token index key
//	ARGV[1] token
//	ARGV[2] expiry, unix milliseconds
//	ARGV[3] index TTL, milliseconds
//	ARGV[4] reset index key prefix
//	ARGV[5] account id
const setResetScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
local old = redis.call("HGET", KEYS[1], "reset_token")
if old and old ~= "" then
  redis.call("DEL", ARGV[4] .. old)
end
redis.call("HSET", KEYS[1], "reset_token", ARGV[1], "reset_expires_at", ARGV[2])
redis.call("SET", KEYS[2], ARGV[5], "PX", ARGV[3])
return 1
`

var setResetLua = redis.NewScript(setResetScript)

// consumeResetScript redeems an unexpired reset token and installs the new
// secret hash in the same step. The token index and hash field are cleared
// even when the token turns out expired, so a later retry cannot succeed.
// A successful reset also clears failed-login accounting.
//
//	KEYS[1] reset token index key
//	ARGV[1] account hash key prefix
//	ARGV[2] token
//	ARGV[3] now, unix milliseconds
//	ARGV[4] new secret hash
const consumeResetScript = `
local id = redis.call("GET", KEYS[1])
if not id then
  return nil
end
redis.call("DEL", KEYS[1])
local acct = ARGV[1] .. id
if redis.call("EXISTS", acct) == 0 then
  return nil
end
local tok = redis.call("HGET", acct, "reset_token")
local exp = tonumber(redis.call("HGET", acct, "reset_expires_at") or "0")
if tok ~= ARGV[2] or exp == 0 or exp <= tonumber(ARGV[3]) then
  redis.call("HSET", acct, "reset_token", "", "reset_expires_at", "0")
  return nil
end
redis.call("HSET", acct,
  "secret_hash", ARGV[4],
  "reset_token", "",
  "reset_expires_at", "0",
  "failed_login_count", "0",
  "locked_until", "0")
return id
`

var consumeResetLua = redis.NewScript(consumeResetScript)

// recordFailureScript advances the failed-login counter by exactly one. An
// elapsed lock restarts the count at 1; the lock itself is set at most once
// per window, when the counter first reaches the threshold.
//
//	KEYS[1] account hash key
//	ARGV[1] threshold
//	ARGV[2] lock duration, milliseconds
//	ARGV[3] now, unix milliseconds
//
// Returns {count, locked_now, locked_until}.
const recordFailureScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return {-1, 0, 0}
end
local now = tonumber(ARGV[3])
local locked = tonumber(redis.call("HGET", KEYS[1], "locked_until") or "0")
local count
if locked > 0 and locked <= now then
  count = 1
  redis.call("HSET", KEYS[1], "failed_login_count", "1", "locked_until", "0")
  locked = 0
else
  count = redis.call("HINCRBY", KEYS[1], "failed_login_count", 1)
end
if locked == 0 and count >= tonumber(ARGV[1]) then
  locked = now + tonumber(ARGV[2])
  redis.call("HSET", KEYS[1], "locked_until", locked)
  return {count, 1, locked}
end
return {count, 0, locked}
`

var recordFailureLua = redis.NewScript(recordFailureScript)

// recordSuccessScript resets failure accounting and stamps the login time.
//
//	KEYS[1] account hash key
//	ARGV[1] now, unix milliseconds
const recordSuccessScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1],
  "failed_login_count", "0",
  "locked_until", "0",
  "last_login_at", ARGV[1])
return 1
`

var recordSuccessLua = redis.NewScript(recordSuccessScript)

// hsetIfExistsScript guards a field update against a vanished account.
//
//	KEYS[1] account hash key
//	ARGV[1] field
//	ARGV[2] value
const hsetIfExistsScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return 1
`

var hsetIfExistsLua = redis.NewScript(hsetIfExistsScript)

// Store implements authcore.AccountStore on a Redis backend.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a [Store] on the given Redis client. prefix namespaces all
// keys; empty means [DefaultPrefix].
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) accountKey(id string) string {
	return s.accountPrefix() + id
}

func (s *Store) accountPrefix() string {
	return s.prefix + ":acct:"
}

func (s *Store) emailKey(email string) string {
	return s.prefix + ":email:" + email
}

func (s *Store) verifyKey(token string) string {
	return s.prefix + ":verify:" + token
}

func (s *Store) resetKey(token string) string {
	return s.resetPrefix() + token
}

func (s *Store) resetPrefix() string {
	return s.prefix + ":reset:"
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", authcore.ErrStoreUnavailable, err)
}

// Create persists a new PENDING account. The email index doubles as the
// uniqueness check, so two concurrent registrations of the same address
// cannot both succeed.
func (s *Store) Create(ctx context.Context, input authcore.CreateAccountInput) (*authcore.Account, error) {
	acct := &authcore.Account{
		ID:                uuid.NewString(),
		Email:             input.Email,
		SecretHash:        input.SecretHash,
		Role:              input.Role,
		Status:            input.Status,
		Profile:           input.Profile,
		VerificationToken: input.VerificationToken,
		CreatedAt:         input.CreatedAt,
	}

	hasVerify := "0"
	verifyKey := s.verifyKey("-")
	if acct.VerificationToken != "" {
		hasVerify = "1"
		verifyKey = s.verifyKey(acct.VerificationToken)
	}

	args := []interface{}{acct.ID, hasVerify}
	args = append(args, accountFields(acct)...)

	created, err := createLua.Run(ctx, s.redis,
		[]string{s.emailKey(acct.Email), s.accountKey(acct.ID), verifyKey},
		args...).Int64()
	if err != nil {
		return nil, storeErr(err)
	}
	if created == 0 {
		return nil, authcore.ErrEmailTaken
	}
	return acct, nil
}

// FindByEmail looks an account up through the email index.
func (s *Store) FindByEmail(ctx context.Context, email string) (*authcore.Account, error) {
	id, err := s.redis.Get(ctx, s.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrAccountNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return s.FindByID(ctx, id)
}

// FindByID loads the full account hash.
func (s *Store) FindByID(ctx context.Context, id string) (*authcore.Account, error) {
	vals, err := s.redis.HGetAll(ctx, s.accountKey(id)).Result()
	if err != nil {
		return nil, storeErr(err)
	}
	if len(vals) == 0 {
		return nil, authcore.ErrAccountNotFound
	}
	return parseAccount(vals)
}

// FindByVerificationToken resolves a verification token without consuming it.
func (s *Store) FindByVerificationToken(ctx context.Context, token string) (*authcore.Account, error) {
	id, err := s.redis.Get(ctx, s.verifyKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrAccountNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return s.FindByID(ctx, id)
}

// FindByResetToken resolves an unexpired reset token without consuming it.
func (s *Store) FindByResetToken(ctx context.Context, token string, now time.Time) (*authcore.Account, error) {
	id, err := s.redis.Get(ctx, s.resetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrAccountNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	acct, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct.ResetToken != token || acct.ResetExpiresAt.IsZero() || !now.Before(acct.ResetExpiresAt) {
		return nil, authcore.ErrAccountNotFound
	}
	return acct, nil
}

// ConsumeVerificationToken atomically redeems a verification token,
// activating the account. At most one concurrent caller succeeds.
func (s *Store) ConsumeVerificationToken(ctx context.Context, token string) (*authcore.Account, error) {
	id, err := consumeVerificationLua.Run(ctx, s.redis,
		[]string{s.verifyKey(token)}, s.accountPrefix()).Text()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrAccountNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return s.FindByID(ctx, id)
}

// SetResetToken installs a single-use reset token with the given expiry,
// replacing any outstanding one.
func (s *Store) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("%w: reset expiry in the past", authcore.ErrStoreUnavailable)
	}
	ok, err := setResetLua.Run(ctx, s.redis,
		[]string{s.accountKey(id), s.resetKey(token)},
		token,
		strconv.FormatInt(expiresAt.UnixMilli(), 10),
		strconv.FormatInt(ttl.Milliseconds(), 10),
		s.resetPrefix(),
		id).Int64()
	if err != nil {
		return storeErr(err)
	}
	if ok == 0 {
		return authcore.ErrAccountNotFound
	}
	return nil
}

// ConsumeResetToken atomically redeems an unexpired reset token and swaps
// in the new secret hash. Expired or replayed tokens surface as
// [authcore.ErrAccountNotFound].
func (s *Store) ConsumeResetToken(ctx context.Context, token, newSecretHash string, now time.Time) (*authcore.Account, error) {
	id, err := consumeResetLua.Run(ctx, s.redis,
		[]string{s.resetKey(token)},
		s.accountPrefix(),
		token,
		strconv.FormatInt(now.UnixMilli(), 10),
		newSecretHash).Text()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrAccountNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return s.FindByID(ctx, id)
}

// RecordLoginFailure advances failed-login accounting by exactly one. When
// the counter reaches the threshold the lock is armed once for the given
// duration; an already elapsed lock restarts the count at 1.
func (s *Store) RecordLoginFailure(ctx context.Context, id string, threshold int, lockout time.Duration, now time.Time) (authcore.LoginFailure, error) {
	res, err := recordFailureLua.Run(ctx, s.redis,
		[]string{s.accountKey(id)},
		strconv.Itoa(threshold),
		strconv.FormatInt(lockout.Milliseconds(), 10),
		strconv.FormatInt(now.UnixMilli(), 10)).Int64Slice()
	if err != nil {
		return authcore.LoginFailure{}, storeErr(err)
	}
	if len(res) != 3 {
		return authcore.LoginFailure{}, fmt.Errorf("%w: unexpected script reply", authcore.ErrStoreUnavailable)
	}
	if res[0] < 0 {
		return authcore.LoginFailure{}, authcore.ErrAccountNotFound
	}
	failure := authcore.LoginFailure{
		Count:  int(res[0]),
		Locked: res[1] == 1,
	}
	if res[2] > 0 {
		failure.LockedUntil = time.UnixMilli(res[2])
	}
	return failure, nil
}

// RecordLoginSuccess clears failure accounting and stamps the login time.
func (s *Store) RecordLoginSuccess(ctx context.Context, id string, now time.Time) error {
	ok, err := recordSuccessLua.Run(ctx, s.redis,
		[]string{s.accountKey(id)},
		strconv.FormatInt(now.UnixMilli(), 10)).Int64()
	if err != nil {
		return storeErr(err)
	}
	if ok == 0 {
		return authcore.ErrAccountNotFound
	}
	return nil
}

// UpdateStatus sets the account status and returns the updated record.
func (s *Store) UpdateStatus(ctx context.Context, id string, status authcore.AccountStatus) (*authcore.Account, error) {
	ok, err := hsetIfExistsLua.Run(ctx, s.redis,
		[]string{s.accountKey(id)},
		fieldStatus, string(status)).Int64()
	if err != nil {
		return nil, storeErr(err)
	}
	if ok == 0 {
		return nil, authcore.ErrAccountNotFound
	}
	return s.FindByID(ctx, id)
}

// UpdateSecretHash replaces the stored secret hash.
func (s *Store) UpdateSecretHash(ctx context.Context, id, secretHash string) error {
	ok, err := hsetIfExistsLua.Run(ctx, s.redis,
		[]string{s.accountKey(id)},
		fieldSecretHash, secretHash).Int64()
	if err != nil {
		return storeErr(err)
	}
	if ok == 0 {
		return authcore.ErrAccountNotFound
	}
	return nil
}

func accountFields(a *authcore.Account) []interface{} {
	return []interface{}{
		fieldID, a.ID,
		fieldEmail, a.Email,
		fieldSecretHash, a.SecretHash,
		fieldRole, string(a.Role),
		fieldStatus, string(a.Status),
		fieldFirstName, a.Profile.FirstName,
		fieldLastName, a.Profile.LastName,
		fieldPhone, a.Profile.Phone,
		fieldCompany, a.Profile.Company,
		fieldPosition, a.Profile.Position,
		fieldEmailVerified, boolField(a.EmailVerified),
		fieldVerificationToken, a.VerificationToken,
		fieldResetToken, a.ResetToken,
		fieldResetExpiresAt, unixField(a.ResetExpiresAt),
		fieldFailedLoginCount, strconv.Itoa(a.FailedLoginCount),
		fieldLockedUntil, unixField(a.LockedUntil),
		fieldLastLoginAt, unixField(a.LastLoginAt),
		fieldCreatedAt, unixField(a.CreatedAt),
	}
}

func parseAccount(vals map[string]string) (*authcore.Account, error) {
	count, err := strconv.Atoi(zeroIfEmpty(vals[fieldFailedLoginCount]))
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt failed_login_count", authcore.ErrStoreUnavailable)
	}
	return &authcore.Account{
		ID:         vals[fieldID],
		Email:      vals[fieldEmail],
		SecretHash: vals[fieldSecretHash],
		Role:       authcore.Role(vals[fieldRole]),
		Status:     authcore.AccountStatus(vals[fieldStatus]),
		Profile: authcore.Profile{
			FirstName: vals[fieldFirstName],
			LastName:  vals[fieldLastName],
			Phone:     vals[fieldPhone],
			Company:   vals[fieldCompany],
			Position:  vals[fieldPosition],
		},
		EmailVerified:     vals[fieldEmailVerified] == "1",
		VerificationToken: vals[fieldVerificationToken],
		ResetToken:        vals[fieldResetToken],
		ResetExpiresAt:    parseUnix(vals[fieldResetExpiresAt]),
		FailedLoginCount:  count,
		LockedUntil:       parseUnix(vals[fieldLockedUntil]),
		LastLoginAt:       parseUnix(vals[fieldLastLoginAt]),
		CreatedAt:         parseUnix(vals[fieldCreatedAt]),
	}, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func unixField(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseUnix(v string) time.Time {
	n, err := strconv.ParseInt(zeroIfEmpty(v), 10, 64)
	if err != nil || n == 0 {
		return time.Time{}
	}
	return time.UnixMilli(n)
}

func zeroIfEmpty(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
