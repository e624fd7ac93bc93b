package authcore

import (
	"context"
	"errors"
)

// VerifyEmail consumes a single-use email verification token. On success
// the account moves PENDING -> ACTIVE, EmailVerified is set, and the token
// is cleared so a replay fails. Verification tokens never expire; the
// account simply stays PENDING until one is redeemed.
//
// An unknown or already-consumed token returns [ErrVerificationInvalid].
func (e *Engine) VerifyEmail(ctx context.Context, token string) (*Identity, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if token == "" {
		e.metricInc(MetricVerifyFailure)
		return nil, ErrVerificationInvalid
	}

	acct, err := e.store.ConsumeVerificationToken(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return nil, storeErr("verify email", err)
		}
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyFailure, false, "", ErrVerificationInvalid, nil)
		return nil, ErrVerificationInvalid
	}

	e.metricInc(MetricVerifySuccess)
	e.emitAudit(ctx, auditEventVerifySuccess, true, acct.ID, nil, nil)

	id := acct.identity()
	return &id, nil
}
