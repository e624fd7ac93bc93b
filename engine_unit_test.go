package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockStore lets each test override exactly the calls its path exercises.
type mockStore struct {
	create              func(context.Context, CreateAccountInput) (*Account, error)
	findByEmail         func(context.Context, string) (*Account, error)
	findByID            func(context.Context, string) (*Account, error)
	consumeVerification func(context.Context, string) (*Account, error)
	setResetToken       func(context.Context, string, string, time.Time) error
	consumeResetToken   func(context.Context, string, string, time.Time) (*Account, error)
	recordFailure       func(context.Context, string, int, time.Duration, time.Time) (LoginFailure, error)
	recordSuccess       func(context.Context, string, time.Time) error
	updateStatus        func(context.Context, string, AccountStatus) (*Account, error)
	updateSecretHash    func(context.Context, string, string) error
}

func (m *mockStore) Create(ctx context.Context, in CreateAccountInput) (*Account, error) {
	if m.create == nil {
		return nil, errors.New("unexpected Create")
	}
	return m.create(ctx, in)
}

func (m *mockStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	if m.findByEmail == nil {
		return nil, ErrAccountNotFound
	}
	return m.findByEmail(ctx, email)
}

func (m *mockStore) FindByID(ctx context.Context, id string) (*Account, error) {
	if m.findByID == nil {
		return nil, ErrAccountNotFound
	}
	return m.findByID(ctx, id)
}

func (m *mockStore) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	return nil, ErrAccountNotFound
}

func (m *mockStore) FindByResetToken(ctx context.Context, token string, now time.Time) (*Account, error) {
	return nil, ErrAccountNotFound
}

func (m *mockStore) ConsumeVerificationToken(ctx context.Context, token string) (*Account, error) {
	if m.consumeVerification == nil {
		return nil, ErrAccountNotFound
	}
	return m.consumeVerification(ctx, token)
}

func (m *mockStore) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	if m.setResetToken == nil {
		return errors.New("unexpected SetResetToken")
	}
	return m.setResetToken(ctx, id, token, expiresAt)
}

func (m *mockStore) ConsumeResetToken(ctx context.Context, token, newSecretHash string, now time.Time) (*Account, error) {
	if m.consumeResetToken == nil {
		return nil, ErrAccountNotFound
	}
	return m.consumeResetToken(ctx, token, newSecretHash, now)
}

func (m *mockStore) RecordLoginFailure(ctx context.Context, id string, threshold int, lockout time.Duration, now time.Time) (LoginFailure, error) {
	if m.recordFailure == nil {
		return LoginFailure{Count: 1}, nil
	}
	return m.recordFailure(ctx, id, threshold, lockout, now)
}

func (m *mockStore) RecordLoginSuccess(ctx context.Context, id string, now time.Time) error {
	if m.recordSuccess == nil {
		return nil
	}
	return m.recordSuccess(ctx, id, now)
}

func (m *mockStore) UpdateStatus(ctx context.Context, id string, status AccountStatus) (*Account, error) {
	if m.updateStatus == nil {
		return nil, ErrAccountNotFound
	}
	return m.updateStatus(ctx, id, status)
}

func (m *mockStore) UpdateSecretHash(ctx context.Context, id, secretHash string) error {
	if m.updateSecretHash == nil {
		return nil
	}
	return m.updateSecretHash(ctx, id, secretHash)
}

func buildUnitEngine(t *testing.T, store AccountStore, mutate func(*Config)) *Engine {
	t.Helper()

	cfg := defaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password.Cost = 4
	cfg.Reset.EnumerationDelay = 0
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New().WithConfig(cfg).WithStore(store).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestZeroEngineNotReady(t *testing.T) {
	var e Engine
	ctx := context.Background()

	if _, err := e.Login(ctx, "a@example.com", "secret-value"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Login err = %v", err)
	}
	if _, err := e.Register(ctx, RegisterRequest{}); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Register err = %v", err)
	}
	if _, err := e.Refresh(ctx, "tok"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Refresh err = %v", err)
	}
	if _, err := e.Authenticate(ctx, "tok"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Authenticate err = %v", err)
	}
	if err := e.RequestPasswordReset(ctx, "a@example.com"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("RequestPasswordReset err = %v", err)
	}
}

func TestLoginStoreFailureSurfaces(t *testing.T) {
	store := &mockStore{
		findByEmail: func(context.Context, string) (*Account, error) {
			return nil, errors.New("connection refused")
		},
	}
	e := buildUnitEngine(t, store, nil)

	_, err := e.Login(context.Background(), "a@example.com", "secret-value")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestLoginStatusCheckedAfterSecret(t *testing.T) {
	// A wrong secret against a suspended account must report invalid
	// credentials, not reveal the account state.
	e := buildUnitEngine(t, &mockStore{}, nil)
	hash, err := e.hasher.Hash("right-secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	acct := &Account{ID: "acct-1", Email: "s@example.com", SecretHash: hash, Status: StatusSuspended, Role: RoleCustomer}
	store := &mockStore{
		findByEmail: func(context.Context, string) (*Account, error) { return acct, nil },
	}
	e2 := buildUnitEngine(t, store, nil)

	if _, err := e2.Login(context.Background(), "s@example.com", "wrong-secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong secret err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := e2.Login(context.Background(), "s@example.com", "right-secret"); !errors.Is(err, ErrAccountNotActive) {
		t.Fatalf("right secret err = %v, want ErrAccountNotActive", err)
	}
}

func TestLoginLockedSkipsHashAndCounter(t *testing.T) {
	counted := false
	acct := &Account{
		ID:          "acct-locked",
		Email:       "l@example.com",
		SecretHash:  "not-a-real-hash",
		Status:      StatusActive,
		LockedUntil: time.Now().Add(10 * time.Minute),
	}
	store := &mockStore{
		findByEmail: func(context.Context, string) (*Account, error) { return acct, nil },
		recordFailure: func(context.Context, string, int, time.Duration, time.Time) (LoginFailure, error) {
			counted = true
			return LoginFailure{}, nil
		},
	}
	e := buildUnitEngine(t, store, nil)

	if _, err := e.Login(context.Background(), "l@example.com", "whatever-secret"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("err = %v, want ErrAccountLocked", err)
	}
	if counted {
		t.Fatal("failure counter advanced during lockout")
	}
}

func TestLoginUpgradesLowCostHash(t *testing.T) {
	low := buildUnitEngine(t, &mockStore{}, nil)
	lowHash, err := low.hasher.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	var upgraded string
	acct := &Account{ID: "acct-up", Email: "u@example.com", SecretHash: lowHash, Status: StatusActive, Role: RoleCustomer}
	store := &mockStore{
		findByEmail: func(context.Context, string) (*Account, error) { return acct, nil },
		updateSecretHash: func(_ context.Context, _ string, hash string) error {
			upgraded = hash
			return nil
		},
	}
	e := buildUnitEngine(t, store, func(cfg *Config) {
		cfg.Password.Cost = 6
	})

	if _, err := e.Login(context.Background(), "u@example.com", "correct-horse"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if upgraded == "" {
		t.Fatal("hash was not upgraded")
	}
	if upgraded == lowHash {
		t.Fatal("upgraded hash identical to old hash")
	}
}

func TestRegisterConflictMetric(t *testing.T) {
	store := &mockStore{
		create: func(context.Context, CreateAccountInput) (*Account, error) {
			return nil, ErrEmailTaken
		},
	}
	e := buildUnitEngine(t, store, func(cfg *Config) {
		cfg.Metrics.Enabled = true
	})

	_, err := e.Register(context.Background(), RegisterRequest{Email: "dup@example.com", Secret: "long-enough"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
	if got := e.metrics.Value(MetricRegisterConflict); got != 1 {
		t.Fatalf("conflict metric = %d, want 1", got)
	}
}

func TestAuditEventsFlow(t *testing.T) {
	sink := NewChannelSink(16)
	store := &mockStore{
		findByEmail: func(context.Context, string) (*Account, error) {
			return nil, ErrAccountNotFound
		},
	}

	cfg := defaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password.Cost = 4
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16

	e, err := New().WithConfig(cfg).WithStore(store).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ctx := WithClientIP(context.Background(), "203.0.113.7")
	if _, err := e.Login(ctx, "ghost@example.com", "whatever-secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login err = %v", err)
	}
	e.Close()

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventLoginFailure {
			t.Fatalf("event type = %q", event.EventType)
		}
		if event.IP != "203.0.113.7" {
			t.Fatalf("event IP = %q", event.IP)
		}
		if event.Success {
			t.Fatal("failure event marked success")
		}
	default:
		t.Fatal("no audit event delivered")
	}
}

func TestValidateEmailPattern(t *testing.T) {
	valid := []string{"a@b.co", "first.last@example.com", "user-name@sub.example.org"}
	invalid := []string{"", "plain", "@example.com", "a@b", "a b@example.com", "a@@example.com"}

	for _, email := range valid {
		if err := validateEmail(email); err != nil {
			t.Fatalf("validateEmail(%q) = %v, want nil", email, err)
		}
	}
	for _, email := range invalid {
		if err := validateEmail(email); !errors.Is(err, ErrValidation) {
			t.Fatalf("validateEmail(%q) = %v, want ErrValidation", email, err)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Fatalf("normalizeEmail = %q", got)
	}
}
