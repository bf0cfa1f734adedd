package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/nvron-auth/internal/auth"
	"github.com/spec-kit/nvron-auth/internal/domain"
	"github.com/spec-kit/nvron-auth/internal/events"
	"github.com/spec-kit/nvron-auth/internal/repository"
)

func TestIssueSuccess(t *testing.T) {
	f := newFixture(t)

	issued, err := f.issuer.Issue(context.Background(), "testuser", "password123", "203.0.113.5")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, "123", issued.Credential.SubjectID)
	assert.Equal(t, "testuser", issued.Credential.SubjectName)
	assert.Equal(t, "203.0.113.5", issued.Credential.BoundAddress)
	assert.Equal(t, f.clock.Unix(), issued.Credential.IssuedAt.Unix())
	assert.Equal(t, f.clock.Add(time.Hour).Unix(), issued.Credential.ExpiresAt.Unix())
	assert.Equal(t, []events.EventType{events.EventCredentialIssued}, f.events.types())
	assert.Equal(t, int64(1), f.metrics.Snapshot().AuthOutcomes["issue|ok"])
}

func TestIssueMissingFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.issuer.Issue(ctx, "", "x", "203.0.113.5")
	assert.ErrorIs(t, err, auth.ErrMissingFields)

	_, err = f.issuer.Issue(ctx, "x", "", "203.0.113.5")
	assert.ErrorIs(t, err, auth.ErrMissingFields)
}

func TestIssueInvalidCredentialsAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, unknownErr := f.issuer.Issue(ctx, "wrong", "creds", "203.0.113.5")
	_, wrongPassErr := f.issuer.Issue(ctx, "testuser", "nope", "203.0.113.5")

	assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassErr, auth.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongPassErr.Error())
	assert.Empty(t, f.events.types())
}

type failingStore struct{ err error }

func (s failingStore) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, s.err
}

func TestIssueStoreFailureIsNotInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	storeErr := errors.New("connection refused")
	issuer, err := NewCredentialIssuer(IssuerDependencies{Users: failingStore{err: storeErr}, Tokens: f.tokens, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	_, err = issuer.Issue(context.Background(), "testuser", "password123", "203.0.113.5")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestIssuerDecoyMatchesStoredPasswordCost(t *testing.T) {
	const storedCost = bcrypt.MinCost + 2

	hash, err := auth.HashPassword("password123", storedCost)
	require.NoError(t, err)
	users := repository.NewMemoryUserRepository()
	require.NoError(t, users.Create(context.Background(), &domain.User{Username: "testuser", PasswordHash: hash}))

	issuer, err := NewCredentialIssuer(IssuerDependencies{Users: users, Tokens: newFixture(t).tokens, BcryptCost: storedCost})
	require.NoError(t, err)

	decoyCost, err := bcrypt.Cost([]byte(issuer.decoyHash))
	require.NoError(t, err)
	userCost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, userCost, decoyCost)

	_, err = issuer.Issue(context.Background(), "nobody", "password123", "203.0.113.5")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
