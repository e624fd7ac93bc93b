package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskora/authcore/internal"
)

// RequestPasswordReset starts the reset flow for an email address. The
// caller-visible outcome is identical whether or not the address is
// registered: nil, after roughly the same wall time. For a registered
// account a single-use reset token valid for Config.Reset.TokenTTL is
// stored and mailed; for an unknown address the engine sleeps for the
// configured enumeration delay instead.
//
// Only malformed input surfaces an error ([ErrValidation]).
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	acct, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return storeErr("password reset request", err)
		}
		e.metricInc(MetricResetRequest)
		e.emitAudit(ctx, auditEventResetRequest, true, "", nil, func() map[string]string {
			return map[string]string{"known_account": "false"}
		})
		return sleepEnumerationDelay(ctx, e.config.Reset.EnumerationDelay)
	}

	token, err := internal.NewOpaqueToken()
	if err != nil {
		return fmt.Errorf("password reset request: %w", err)
	}
	expiresAt := time.Now().Add(e.config.Reset.TokenTTL)
	if err := e.store.SetResetToken(ctx, acct.ID, token, expiresAt); err != nil {
		return storeErr("password reset request", err)
	}

	e.dispatchMail(ctx, acct.Email, MailTemplatePasswordReset, map[string]string{
		MailKeyToken:     token,
		MailKeyFirstName: acct.Profile.FirstName,
	})

	e.metricInc(MetricResetRequest)
	e.emitAudit(ctx, auditEventResetRequest, true, acct.ID, nil, func() map[string]string {
		return map[string]string{"known_account": "true"}
	})
	return nil
}

// ConfirmPasswordReset redeems a reset token and installs a new secret.
// The token must be unexpired and is cleared atomically with the hash
// update, so a second redemption of the same token fails. Consuming a
// reset token does not change account status and leaves any pending email
// verification token in place.
//
// Unknown, consumed, or expired tokens return [ErrResetInvalid]; a new
// secret below the configured minimum length returns [ErrValidation].
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newSecret string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if token == "" {
		e.metricInc(MetricResetConfirmFailure)
		return ErrResetInvalid
	}
	if err := e.validateSecret(newSecret); err != nil {
		return err
	}

	hash, err := e.hasher.Hash(newSecret)
	if err != nil {
		return fmt.Errorf("password reset confirm: hash secret: %w", err)
	}

	acct, err := e.store.ConsumeResetToken(ctx, token, hash, time.Now())
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return storeErr("password reset confirm", err)
		}
		e.metricInc(MetricResetConfirmFailure)
		e.emitAudit(ctx, auditEventResetFailure, false, "", ErrResetInvalid, nil)
		return ErrResetInvalid
	}

	e.metricInc(MetricResetConfirmSuccess)
	e.emitAudit(ctx, auditEventResetSuccess, true, acct.ID, nil, nil)
	return nil
}

// sleepEnumerationDelay pads the unknown-address path so its latency is not
// a cheap membership oracle. Honors context cancellation.
func sleepEnumerationDelay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
