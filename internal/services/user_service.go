package services

import (
	"context"

	"relation-service/internal/models"
	"relation-service/internal/repositories"
)

// UserDirectory answers the two questions the core asks about accounts:
// does this user exist, and what do we show for them.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Briefs(ctx context.Context, ids []int64) (map[int64]models.User, error)
}

type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.users.Exists(ctx, id)
}

// Briefs returns a brief for every requested id; unknown ids get a
// placeholder carrying only the id.
func (s *UserService) Briefs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	briefs, err := s.users.GetBriefs(ctx, unique)
	if err != nil {
		return nil, err
	}
	for _, id := range unique {
		if _, ok := briefs[id]; !ok {
			briefs[id] = models.UnknownUser(id)
		}
	}
	return briefs, nil
}
