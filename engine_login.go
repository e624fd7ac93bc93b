package authcore

import (
	"context"
	"errors"
	"log"
	"time"
)

// LoginResult pairs the authenticated identity with its freshly minted
// token pair.
type LoginResult struct {
	Identity Identity
	Tokens   TokenPair
}

// Login authenticates an email/secret pair.
//
// The failure surface is deliberately narrow: an unknown email and a wrong
// secret both return [ErrInvalidCredentials], and the unknown-email path
// still performs a hash comparison so its timing matches a real mismatch.
// A locked account returns [ErrAccountLocked] before the secret is checked,
// and a correct secret against a non-ACTIVE account returns
// [ErrAccountNotActive] without touching the failure counter.
func (e *Engine) Login(ctx context.Context, email, secret string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" || secret == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "empty_input"}
		})
		return nil, ErrInvalidCredentials
	}

	acct, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return nil, storeErr("login", err)
		}
		// Burn the same hashing cost as a mismatch before reporting failure.
		_, _ = e.hasher.Verify(secret, e.dummyHash)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "unknown_email"}
		})
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if acct.LockedUntil.After(now) {
		e.metricInc(MetricLoginLocked)
		e.emitAudit(ctx, auditEventLoginLocked, false, acct.ID, ErrAccountLocked, nil)
		return nil, ErrAccountLocked
	}

	ok, err := e.hasher.Verify(secret, acct.SecretHash)
	if err != nil || !ok {
		failure, recErr := e.store.RecordLoginFailure(ctx, acct.ID,
			e.config.Lockout.Threshold, e.config.Lockout.Duration, now)
		if recErr != nil {
			log.Print("authcore: record login failure: ", recErr)
		} else if failure.Locked {
			e.metricInc(MetricLoginLocked)
			e.emitAudit(ctx, auditEventLoginLocked, false, acct.ID, ErrAccountLocked, nil)
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, acct.ID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "secret_mismatch"}
		})
		return nil, ErrInvalidCredentials
	}

	if acct.Status != StatusActive {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, acct.ID, ErrAccountNotActive, func() map[string]string {
			return map[string]string{"reason": "status_" + string(acct.Status)}
		})
		return nil, ErrAccountNotActive
	}

	if e.config.Password.UpgradeOnLogin {
		e.maybeUpgradeHash(ctx, acct, secret)
	}
	secret = ""

	if err := e.store.RecordLoginSuccess(ctx, acct.ID, now); err != nil {
		return nil, storeErr("login", err)
	}
	acct.LastLoginAt = now

	pair, err := e.issueTokenPair(acct)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, acct.ID, nil, nil)

	return &LoginResult{Identity: acct.identity(), Tokens: *pair}, nil
}

// maybeUpgradeHash re-hashes the secret at the configured cost when the
// stored hash was produced at a lower one. Best effort: failures are logged
// and the login proceeds with the existing hash.
func (e *Engine) maybeUpgradeHash(ctx context.Context, acct *Account, secret string) {
	needs, err := e.hasher.NeedsUpgrade(acct.SecretHash)
	if err != nil || !needs {
		return
	}
	newHash, err := e.hasher.Hash(secret)
	if err != nil {
		return
	}
	if err := e.store.UpdateSecretHash(ctx, acct.ID, newHash); err != nil {
		log.Print("authcore: upgrade secret hash: ", err)
		return
	}
	acct.SecretHash = newHash
}

func (e *Engine) issueTokenPair(acct *Account) (*TokenPair, error) {
	access, err := e.tokens.CreateAccess(acct.ID, string(acct.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := e.tokens.CreateRefresh(acct.ID, string(acct.Role))
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
