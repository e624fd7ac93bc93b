package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskora/authcore/internal"
)

// RegisterRequest carries the signup payload. Role is optional and defaults
// to [RoleCustomer]; Profile fields are free-form and stored as given.
type RegisterRequest struct {
	Email   string
	Secret  string
	Role    Role
	Profile Profile
}

// Register creates a new account in PENDING state, issues its email
// verification token, and hands the verification mail to the mailer. The
// account cannot log in until the token is consumed through [Engine.VerifyEmail].
//
// Returns [ErrEmailTaken] when the normalized email is already registered
// and [ErrValidation] for malformed input.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*Identity, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email := normalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := e.validateSecret(req.Secret); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = RoleCustomer
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	hash, err := e.hasher.Hash(req.Secret)
	if err != nil {
		return nil, fmt.Errorf("register: hash secret: %w", err)
	}

	verifyToken, err := internal.NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	acct, err := e.store.Create(ctx, CreateAccountInput{
		Email:             email,
		SecretHash:        hash,
		Role:              role,
		Status:            StatusPending,
		Profile:           req.Profile,
		VerificationToken: verifyToken,
		CreatedAt:         time.Now(),
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			e.metricInc(MetricRegisterConflict)
			e.emitAudit(ctx, auditEventRegister, false, "", err, nil)
			return nil, err
		}
		return nil, storeErr("register", err)
	}

	e.dispatchMail(ctx, acct.Email, MailTemplateVerifyEmail, map[string]string{
		MailKeyToken:     verifyToken,
		MailKeyFirstName: acct.Profile.FirstName,
	})

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegister, true, acct.ID, nil, nil)

	id := acct.identity()
	return &id, nil
}
