package repository

import (
	"context"

	"github.com/spec-kit/auth-service/internal/domain"
)

// ActivityRepository persists simulated user actions into the analytics store.
type ActivityRepository interface {
	Insert(ctx context.Context, event domain.ActivityEvent) error
}

type activityRepository struct {
	pool PgxQuerier
}

// NewActivityRepository returns a Postgres-backed implementation.
func NewActivityRepository(pool PgxQuerier) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Insert(ctx context.Context, event domain.ActivityEvent) error {
	const query = `INSERT INTO user_activity (user_id, action) VALUES ($1, $2)`

	_, err := r.pool.Exec(ctx, query, event.UserID, event.Action)
	return err
}
