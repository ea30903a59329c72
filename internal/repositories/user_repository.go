package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"relation-service/internal/models"
)

// UserRepository is a read-only view over the users table owned by the
// account subsystem.
type UserRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	GetBriefs(ctx context.Context, ids []int64) (map[int64]models.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)", id)
	return exists, err
}

func (r *userRepository) GetBriefs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	briefs := make(map[int64]models.User, len(ids))
	if len(ids) == 0 {
		return briefs, nil
	}

	query, args, err := sqlx.In("SELECT id, username, COALESCE(avatar_url, '') AS avatar_url FROM users WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, u := range users {
		briefs[u.ID] = u
	}
	return briefs, nil
}
