package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/nvron-auth/internal/auth"
	"github.com/spec-kit/nvron-auth/internal/domain"
	"github.com/spec-kit/nvron-auth/internal/events"
	"github.com/spec-kit/nvron-auth/internal/observability"
	"github.com/spec-kit/nvron-auth/internal/repository"
)

type fixture struct {
	clock    *time.Time
	tokens   *auth.TokenManager
	users    *repository.MemoryUserRepository
	events   *eventRecorder
	metrics  *observability.Metrics
	issuer   *CredentialIssuer
	verifier *CredentialVerifier
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Unix(1_700_000_000, 0)
	f := &fixture{clock: &now}

	tokens, err := auth.NewTokenManager("fixture-key", auth.WithClock(func() time.Time { return *f.clock }))
	require.NoError(t, err)
	f.tokens = tokens

	hash, err := auth.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	f.users = repository.NewMemoryUserRepository()
	require.NoError(t, f.users.Create(context.Background(), &domain.User{ID: "123", Username: "testuser", PasswordHash: hash}))

	dispatcher := events.NewInMemoryDispatcher()
	f.events = &eventRecorder{}
	for _, et := range []events.EventType{events.EventCredentialIssued, events.EventCredentialRejected, events.EventSubscriptionCreated} {
		dispatcher.Subscribe(et, f.events.record)
	}
	f.metrics = observability.NewMetrics()

	f.issuer, err = NewCredentialIssuer(IssuerDependencies{
		Users:      f.users,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    f.metrics,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	f.verifier = NewCredentialVerifier(VerifierDependencies{
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    f.metrics,
	})
	return f
}
