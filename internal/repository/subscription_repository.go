package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nvron-auth/internal/domain"
)

// SubscriptionRepository stores subscribe actions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]domain.Subscription, error)
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository returns a Postgres-backed implementation.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	const query = `
        INSERT INTO subscriptions (subject_id, subject_name, plan, client_address)
        VALUES ($1, $2, $3, $4)
        RETURNING id::text, created_at`

	return r.pool.QueryRow(ctx, query,
		sub.SubjectID,
		sub.SubjectName,
		sub.Plan,
		sub.ClientAddress,
	).Scan(&sub.ID, &sub.CreatedAt)
}

func (r *subscriptionRepository) ListBySubject(ctx context.Context, subjectID string, limit int) ([]domain.Subscription, error) {
	const query = `
        SELECT id::text, subject_id, subject_name, plan, client_address, created_at
        FROM subscriptions WHERE subject_id=$1
        ORDER BY created_at DESC
        LIMIT $2`

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(
			&sub.ID,
			&sub.SubjectID,
			&sub.SubjectName,
			&sub.Plan,
			&sub.ClientAddress,
			&sub.CreatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// MemorySubscriptionRepository keeps subscriptions in process memory.
type MemorySubscriptionRepository struct {
	mu   sync.RWMutex
	subs []domain.Subscription
}

// NewMemorySubscriptionRepository returns an empty in-memory store.
func NewMemorySubscriptionRepository() *MemorySubscriptionRepository {
	return &MemorySubscriptionRepository{}
}

func (r *MemorySubscriptionRepository) Create(_ context.Context, sub *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub.ID = uuid.NewString()
	sub.CreatedAt = time.Now().UTC()
	r.subs = append(r.subs, *sub)
	return nil
}

func (r *MemorySubscriptionRepository) ListBySubject(_ context.Context, subjectID string, limit int) ([]domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Subscription
	for _, sub := range r.subs {
		if sub.SubjectID == subjectID {
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
