package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/taskora/authcore"
	"github.com/taskora/authcore/middleware"
	"github.com/taskora/authcore/store/redisstore"
)

func newGuardedEnv(t *testing.T) (*authcore.Engine, string, string) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := authcore.DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password.Cost = 4

	mailer := authcore.NewChannelMailer(4)
	engine, err := authcore.New().
		WithConfig(cfg).
		WithStore(redisstore.New(client, "t")).
		WithMailer(mailer).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	ctx := context.Background()
	id, err := engine.Register(ctx, authcore.RegisterRequest{
		Email:  "guard@example.com",
		Secret: "correct-horse",
		Role:   authcore.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	msg := <-mailer.Messages()
	if _, err := engine.VerifyEmail(ctx, msg.Payload[authcore.MailKeyToken]); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	res, err := engine.Login(ctx, "guard@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return engine, res.Tokens.AccessToken, id.ID
}

func okHandler() (http.Handler, *bool) {
	called := new(bool)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}), called
}

func TestGuardAllowsValidToken(t *testing.T) {
	engine, token, accountID := newGuardedEnv(t)

	var seen *authcore.AuthResult
	handler := middleware.Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.AuthResultFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if seen == nil || seen.AccountID != accountID {
		t.Fatalf("auth result = %+v", seen)
	}
}

func TestGuardRejectsMissingOrBadToken(t *testing.T) {
	engine, _, _ := newGuardedEnv(t)

	next, called := okHandler()
	handler := middleware.Guard(engine)(next)

	for _, header := range []string{"", "Bearer ", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q status = %d, want 401", header, rec.Code)
		}
	}
	if *called {
		t.Fatal("handler reached without valid token")
	}
}

func TestGuardRejectsSuspendedAccount(t *testing.T) {
	engine, token, accountID := newGuardedEnv(t)

	if err := engine.SuspendAccount(context.Background(), accountID); err != nil {
		t.Fatalf("SuspendAccount: %v", err)
	}

	next, called := okHandler()
	handler := middleware.Guard(engine)(next)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if *called {
		t.Fatal("handler reached for suspended account")
	}
}

func TestRequireRole(t *testing.T) {
	engine, token, _ := newGuardedEnv(t)

	adminOnly, adminCalled := okHandler()
	adminChain := middleware.Guard(engine)(middleware.RequireRole(authcore.RoleAdmin)(adminOnly))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	adminChain.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !*adminCalled {
		t.Fatalf("admin chain status = %d, called = %v", rec.Code, *adminCalled)
	}

	hrOnly, hrCalled := okHandler()
	hrChain := middleware.Guard(engine)(middleware.RequireRole(authcore.RoleHRManager)(hrOnly))

	req = httptest.NewRequest(http.MethodGet, "/hr", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	hrChain.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("hr chain status = %d, want 403", rec.Code)
	}
	if *hrCalled {
		t.Fatal("handler reached with wrong role")
	}
}

func TestRequireRoleWithoutGuard(t *testing.T) {
	next, called := okHandler()
	handler := middleware.RequireRole(authcore.RoleAdmin)(next)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if *called {
		t.Fatal("handler reached without guard")
	}
}
