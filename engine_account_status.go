package authcore

import (
	"context"
	"fmt"
)

// SuspendAccount moves an ACTIVE account to SUSPENDED. Suspended accounts
// keep their credentials but fail login and token authentication until
// reactivated.
func (e *Engine) SuspendAccount(ctx context.Context, accountID string) error {
	return e.changeStatus(ctx, accountID, StatusSuspended, MetricAccountSuspended,
		StatusActive)
}

// ReactivateAccount moves a SUSPENDED or INACTIVE account back to ACTIVE.
// A PENDING account cannot be reactivated; it becomes ACTIVE only by
// redeeming its verification token.
func (e *Engine) ReactivateAccount(ctx context.Context, accountID string) error {
	return e.changeStatus(ctx, accountID, StatusActive, MetricAccountReactivated,
		StatusSuspended, StatusInactive)
}

// DeactivateAccount retires an account to INACTIVE regardless of its
// current state. The record is retained; use ReactivateAccount to restore
// access.
func (e *Engine) DeactivateAccount(ctx context.Context, accountID string) error {
	return e.changeStatus(ctx, accountID, StatusInactive, MetricAccountDeactivated,
		StatusPending, StatusActive, StatusSuspended)
}

func (e *Engine) changeStatus(ctx context.Context, accountID string, to AccountStatus, metric MetricID, allowedFrom ...AccountStatus) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	acct, err := e.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.Status == to {
		return nil
	}

	allowed := false
	for _, from := range allowedFrom {
		if acct.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: cannot move %s account to %s", ErrValidation, acct.Status, to)
	}

	if _, err := e.store.UpdateStatus(ctx, accountID, to); err != nil {
		return err
	}

	e.metricInc(metric)
	e.emitAudit(ctx, auditEventStatusChange, true, accountID, nil, func() map[string]string {
		return map[string]string{"from": string(acct.Status), "to": string(to)}
	})
	return nil
}
