package authcore

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/taskora/authcore/jwt"
	"github.com/taskora/authcore/password"
)

// mailDispatchTimeout bounds a single background mail delivery attempt.
const mailDispatchTimeout = 10 * time.Second

// Engine is the account-lifecycle core. Construct it through [New] and
// [Builder.Build]; the zero value is not usable.
//
// All exported methods are safe for concurrent use.
type Engine struct {
	config Config

	store  AccountStore
	mailer Mailer
	hasher *password.Bcrypt
	tokens *jwt.Manager

	audit   *auditDispatcher
	metrics *Metrics

	// dummyHash is compared on unknown-email logins so a miss costs the
	// same hashing work as a mismatch.
	dummyHash string
}

// Close stops the audit dispatcher and drains buffered events. The engine
// must not be used after Close.
func (e *Engine) Close() {
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters and
// latency histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e.metrics != nil {
		e.metrics.Inc(id)
	}
}

// ready reports whether the engine was assembled through the builder.
func (e *Engine) ready() bool {
	return e != nil && e.store != nil && e.hasher != nil && e.tokens != nil
}

// Authenticate verifies a bearer access token and resolves it to the live
// account behind it. The account must still exist and be active; role and
// email are read from the store, not the token, so revocations and role
// changes take effect within one access-token lifetime.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}()
	}

	claims, err := e.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	acct, err := e.store.FindByID(ctx, claims.AccountID)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if acct.Status != StatusActive {
		return nil, ErrAccountNotActive
	}

	return &AuthResult{
		AccountID: acct.ID,
		Email:     acct.Email,
		Role:      acct.Role,
	}, nil
}

// Me returns the identity projection for an account id, typically the one
// carried by an authenticated request.
func (e *Engine) Me(ctx context.Context, accountID string) (*Identity, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	acct, err := e.store.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	id := acct.identity()
	return &id, nil
}

// Logout acknowledges the end of a session. Tokens are stateless, so there
// is nothing to revoke server-side; issued tokens lapse at their natural
// expiry. The call exists so callers get a uniform audit trail.
func (e *Engine) Logout(ctx context.Context, accountID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, accountID, nil, nil)
	return nil
}

// dispatchMail hands a message to the mailer on a background goroutine.
// Delivery failures are audited and logged but never surface to the
// operation that triggered the mail.
func (e *Engine) dispatchMail(ctx context.Context, recipient, templateID string, payload map[string]string) {
	ip := clientIPFromContext(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), mailDispatchTimeout)
		defer cancel()
		if ip != "" {
			sendCtx = WithClientIP(sendCtx, ip)
		}
		if err := e.mailer.Send(sendCtx, recipient, templateID, payload); err != nil {
			log.Print("authcore: mail dispatch failed: ", err)
			e.emitAudit(sendCtx, auditEventMailDispatchFailed, false, "", err, func() map[string]string {
				return map[string]string{"template": templateID}
			})
		}
	}()
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
