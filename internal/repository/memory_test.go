package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/nvron-auth/internal/domain"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &domain.User{Username: "testuser", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	got, err := repo.GetByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Create(ctx, &domain.User{Username: "testuser", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrConflict)

	err = repo.Create(ctx, &domain.User{ID: user.ID, Username: "other", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryUserRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "123", Username: "testuser", PasswordHash: "hash"}))

	got, err := repo.GetByUsername(ctx, "testuser")
	require.NoError(t, err)
	got.PasswordHash = "mutated"

	again, err := repo.GetByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, "hash", again.PasswordHash)
}

func TestMemorySubscriptionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySubscriptionRepository()

	for _, plan := range []string{"basic", "pro"} {
		require.NoError(t, repo.Create(ctx, &domain.Subscription{SubjectID: "123", Plan: plan}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Subscription{SubjectID: "456", Plan: "basic"}))

	subs, err := repo.ListBySubject(ctx, "123", 0)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	subs, err = repo.ListBySubject(ctx, "123", 1)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}
