package services

import (
	"context"
	"unicode/utf8"

	"relation-service/internal/apperr"
	"relation-service/internal/models"
	"relation-service/internal/repositories"
)

// FriendService drives the friend request lifecycle:
// pending -> accepted or pending -> rejected, both terminal.
type FriendService struct {
	relations repositories.RelationshipRepository
	users     UserDirectory
}

func NewFriendService(relations repositories.RelationshipRepository, users UserDirectory) *FriendService {
	return &FriendService{relations: relations, users: users}
}

func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID int64, message string) (*models.FriendRequest, error) {
	if receiverID == senderID {
		return nil, apperr.ErrSelfTarget
	}
	if utf8.RuneCountInString(message) > models.MaxRequestMessageLen {
		return nil, apperr.ErrInvalidMessageRequest
	}

	exists, err := s.users.Exists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrUserNotFound
	}

	friends, err := s.relations.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, apperr.ErrAlreadyFriends
	}

	blockedBy, err := s.relations.IsBlockedBy(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if blockedBy {
		return nil, apperr.ErrBlockedByTarget
	}

	blocked, err := s.relations.HasBlocked(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperr.ErrSenderHasBlocked
	}

	pending, err := s.relations.HasPendingRequest(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.ErrDuplicatePending
	}

	// The receiver asked first; they must answer that request.
	reverse, err := s.relations.HasPendingRequest(ctx, receiverID, senderID)
	if err != nil {
		return nil, err
	}
	if reverse {
		return nil, apperr.ErrReverseRequestExists
	}

	return s.relations.CreateRequest(ctx, senderID, receiverID, message)
}

func (s *FriendService) ListIncoming(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	return s.relations.GetIncomingRequests(ctx, userID)
}

func (s *FriendService) Accept(ctx context.Context, receiverID, requestID int64) (*models.FriendRequest, error) {
	return s.relations.AcceptRequest(ctx, requestID, receiverID)
}

func (s *FriendService) Reject(ctx context.Context, receiverID, requestID int64) (*models.FriendRequest, error) {
	return s.relations.RejectRequest(ctx, requestID, receiverID)
}

func (s *FriendService) ListFriends(ctx context.Context, userID int64) ([]models.Friendship, error) {
	return s.relations.ListFriends(ctx, userID)
}

func (s *FriendService) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	return s.relations.AreFriends(ctx, userID, otherID)
}

func (s *FriendService) Unfriend(ctx context.Context, userID, friendID int64) error {
	if userID == friendID {
		return apperr.ErrFriendshipNotFound
	}
	return s.relations.DeleteFriendship(ctx, userID, friendID)
}
