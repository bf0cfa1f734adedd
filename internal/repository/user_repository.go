package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nvron-auth/internal/domain"
)

const uniqueViolation = "23505"

// UserRepository defines persistence access for dashboard users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, username, password_hash)
        VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
        SELECT id, username, password_hash, created_at, updated_at
        FROM users WHERE username=$1`

	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// MemoryUserRepository keeps users in process memory. It backs local runs
// without Postgres and doubles as a test fake.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.User
	byUsername map[string]*domain.User
}

// NewMemoryUserRepository returns an empty in-memory store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[string]*domain.User),
		byUsername: make(map[string]*domain.User),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return ErrConflict
	}
	if strings.TrimSpace(user.ID) == "" {
		user.ID = uuid.NewString()
	}
	if _, exists := r.byID[user.ID]; exists {
		return ErrConflict
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := *user
	r.byID[stored.ID] = &stored
	r.byUsername[stored.Username] = &stored
	return nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}
