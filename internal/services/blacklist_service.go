package services

import (
	"context"

	"relation-service/internal/apperr"
	"relation-service/internal/models"
	"relation-service/internal/repositories"
)

// BlacklistService applies directed blocks. A block severs any friendship
// and rejects pending requests between the pair; unblocking restores nothing.
type BlacklistService struct {
	relations repositories.RelationshipRepository
	users     UserDirectory
}

func NewBlacklistService(relations repositories.RelationshipRepository, users UserDirectory) *BlacklistService {
	return &BlacklistService{relations: relations, users: users}
}

func (s *BlacklistService) Block(ctx context.Context, userID, targetID int64) (*repositories.BlockResult, error) {
	if userID == targetID {
		return nil, apperr.ErrSelfTarget
	}

	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrUserNotFound
	}

	return s.relations.Block(ctx, userID, targetID)
}

func (s *BlacklistService) Unblock(ctx context.Context, userID, targetID int64) error {
	if userID == targetID {
		return apperr.ErrSelfTarget
	}
	return s.relations.Unblock(ctx, userID, targetID)
}

func (s *BlacklistService) List(ctx context.Context, userID int64) ([]models.BlacklistEntry, error) {
	return s.relations.ListBlacklist(ctx, userID)
}

// IsBlocked reports whether either side has blocked the other.
func (s *BlacklistService) IsBlocked(ctx context.Context, userID, otherID int64) (bool, error) {
	blocked, err := s.relations.HasBlocked(ctx, userID, otherID)
	if err != nil || blocked {
		return blocked, err
	}
	return s.relations.IsBlockedBy(ctx, userID, otherID)
}
