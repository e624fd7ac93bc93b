package authcore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/taskora/authcore"
	"github.com/taskora/authcore/store/redisstore"
)

func newBenchmarkEngine(b *testing.B) (*authcore.Engine, string) {
	b.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis: %v", err)
	}
	b.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b.Cleanup(func() { _ = client.Close() })

	cfg := authcore.DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password.Cost = 4

	mailer := authcore.NewChannelMailer(4)
	engine, err := authcore.New().
		WithConfig(cfg).
		WithStore(redisstore.New(client, "bench")).
		WithMailer(mailer).
		Build()
	if err != nil {
		b.Fatalf("Build: %v", err)
	}
	b.Cleanup(engine.Close)

	ctx := context.Background()
	if _, err := engine.Register(ctx, authcore.RegisterRequest{
		Email:  "alice@example.com",
		Secret: "correct-password-123",
	}); err != nil {
		b.Fatalf("Register: %v", err)
	}
	msg := <-mailer.Messages()
	if _, err := engine.VerifyEmail(ctx, msg.Payload[authcore.MailKeyToken]); err != nil {
		b.Fatalf("VerifyEmail: %v", err)
	}

	res, err := engine.Login(ctx, "alice@example.com", "correct-password-123")
	if err != nil {
		b.Fatalf("Login: %v", err)
	}
	return engine, res.Tokens.AccessToken
}

func BenchmarkAuthenticate(b *testing.B) {
	engine, access := newBenchmarkEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Authenticate(context.Background(), access); err != nil {
			b.Fatalf("authenticate failed: %v", err)
		}
	}
}

func BenchmarkLogin(b *testing.B) {
	engine, _ := newBenchmarkEngine(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Login(context.Background(), "alice@example.com", "correct-password-123"); err != nil {
			b.Fatalf("login failed: %v", err)
		}
	}
}
