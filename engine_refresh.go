package authcore

import (
	"context"
	"errors"
)

// Refresh exchanges a valid refresh token for a brand-new access/refresh
// pair. The account is re-read from the store: it must still exist and be
// ACTIVE, and the new tokens carry its current role rather than the one
// frozen into the old token. A refresh token presented as an access token
// (or vice versa) is rejected by type.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, "", ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}

	acct, err := e.store.FindByID(ctx, claims.AccountID)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return nil, storeErr("refresh", err)
		}
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, claims.AccountID, ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}
	if acct.Status != StatusActive {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, acct.ID, ErrAccountNotActive, nil)
		return nil, ErrAccountNotActive
	}

	pair, err := e.issueTokenPair(acct)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, acct.ID, nil, nil)
	return pair, nil
}
