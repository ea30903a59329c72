package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"relation-service/internal/apperr"
	"relation-service/internal/db"
	"relation-service/internal/models"
	"relation-service/internal/rabbitmq"
)

const (
	pendingRequestIndex = "friend_requests_unique_pending"
	blacklistPairKey    = "blacklist_user_id_blocked_user_id_key"

	requestColumns   = `id, sender_id, receiver_id, message, status, created_at, processed_at`
	friendColumns    = `id, user_id, friend_id, created_at`
	blacklistColumns = `id, user_id, blocked_user_id, created_at`
)

// RelationshipRepository owns friend requests, friendships and blacklist rows.
// Friendships are only ever written or removed as a mirrored pair.
type RelationshipRepository interface {
	CreateRequest(ctx context.Context, senderID, receiverID int64, message string) (*models.FriendRequest, error)
	GetIncomingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error)
	AcceptRequest(ctx context.Context, requestID, receiverID int64) (*models.FriendRequest, error)
	RejectRequest(ctx context.Context, requestID, receiverID int64) (*models.FriendRequest, error)
	ListFriends(ctx context.Context, userID int64) ([]models.Friendship, error)
	AreFriends(ctx context.Context, userID, otherID int64) (bool, error)
	HasPendingRequest(ctx context.Context, senderID, receiverID int64) (bool, error)
	HasBlocked(ctx context.Context, userID, targetID int64) (bool, error)
	IsBlockedBy(ctx context.Context, userID, otherID int64) (bool, error)
	DeleteFriendship(ctx context.Context, userID, friendID int64) error
	Block(ctx context.Context, userID, targetID int64) (*BlockResult, error)
	Unblock(ctx context.Context, userID, targetID int64) error
	ListBlacklist(ctx context.Context, userID int64) ([]models.BlacklistEntry, error)
}

type BlockResult struct {
	Entry             models.BlacklistEntry
	RejectedRequests  int64
	SeveredFriendship bool
}

type relationshipRepository struct {
	db     *sqlx.DB
	events eventLog
}

func NewRelationshipRepository(db *sqlx.DB, publisher rabbitmq.Publisher, log *zap.Logger) RelationshipRepository {
	return &relationshipRepository{db: db, events: newEventLog(publisher, log)}
}

func (r *relationshipRepository) CreateRequest(ctx context.Context, senderID, receiverID int64, message string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockPair(ctx, tx, senderID, receiverID); err != nil {
			return err
		}

		// Rechecked under the pair lock: a block committed after the caller's
		// own checks must still stop the request.
		var guard struct {
			BlockedBy  bool `db:"blocked_by"`
			HasBlocked bool `db:"has_blocked"`
		}
		if err := tx.GetContext(ctx, &guard, `
SELECT
EXISTS(SELECT 1 FROM blacklist WHERE user_id=$2 AND blocked_user_id=$1) AS blocked_by,
EXISTS(SELECT 1 FROM blacklist WHERE user_id=$1 AND blocked_user_id=$2) AS has_blocked
`, senderID, receiverID); err != nil {
			return err
		}
		switch {
		case guard.BlockedBy:
			return apperr.ErrBlockedByTarget
		case guard.HasBlocked:
			return apperr.ErrSenderHasBlocked
		}

		err := tx.QueryRowxContext(ctx, `
INSERT INTO friend_requests (sender_id, receiver_id, message, status)
VALUES ($1, $2, $3, 'pending')
RETURNING `+requestColumns, senderID, receiverID, message).StructScan(&req)
		if err != nil {
			if db.IsUniqueViolation(err, pendingRequestIndex) {
				return apperr.ErrDuplicatePending
			}
			return fmt.Errorf("insert friend request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.events.publish(ctx, rabbitmq.EventFriendRequestCreated, rabbitmq.FriendRequestEvent{
		RequestID:  req.ID,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Status:     string(req.Status),
		OccurredAt: req.CreatedAt,
	})

	return &req, nil
}

func (r *relationshipRepository) GetIncomingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	reqs := []models.FriendRequest{}
	err := r.db.SelectContext(ctx, &reqs, `
SELECT `+requestColumns+`
FROM friend_requests
WHERE receiver_id=$1 AND status='pending'
ORDER BY created_at DESC, id DESC
`, userID)
	return reqs, err
}

func (r *relationshipRepository) AcceptRequest(ctx context.Context, requestID, receiverID int64) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &req, `
UPDATE friend_requests SET status='accepted', processed_at=NOW()
WHERE id=$1 AND receiver_id=$2 AND status='pending'
AND NOT EXISTS (
SELECT 1 FROM blacklist b
WHERE (b.user_id=friend_requests.sender_id AND b.blocked_user_id=friend_requests.receiver_id)
OR (b.user_id=friend_requests.receiver_id AND b.blocked_user_id=friend_requests.sender_id)
)
RETURNING `+requestColumns, requestID, receiverID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.ErrRequestNotFound
			}
			return err
		}

		// A crossing request in the other direction is satisfied by this one.
		if _, err := tx.ExecContext(ctx, `
UPDATE friend_requests SET status='accepted', processed_at=NOW()
WHERE sender_id=$1 AND receiver_id=$2 AND status='pending'
`, req.ReceiverID, req.SenderID); err != nil {
			return err
		}

		return insertFriendshipPair(ctx, tx, req.SenderID, req.ReceiverID)
	})
	if err != nil {
		return nil, err
	}

	r.events.publish(ctx, rabbitmq.EventFriendRequestAccepted, requestEvent(&req))
	return &req, nil
}

func (r *relationshipRepository) RejectRequest(ctx context.Context, requestID, receiverID int64) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.GetContext(ctx, &req, `
UPDATE friend_requests SET status='rejected', processed_at=NOW()
WHERE id=$1 AND receiver_id=$2 AND status='pending'
RETURNING `+requestColumns, requestID, receiverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrRequestNotFound
		}
		return nil, err
	}

	r.events.publish(ctx, rabbitmq.EventFriendRequestRejected, requestEvent(&req))
	return &req, nil
}

func (r *relationshipRepository) ListFriends(ctx context.Context, userID int64) ([]models.Friendship, error) {
	friends := []models.Friendship{}
	err := r.db.SelectContext(ctx, &friends, `
SELECT `+friendColumns+`
FROM friendships
WHERE user_id=$1
ORDER BY created_at DESC, id DESC
`, userID)
	return friends, err
}

func (r *relationshipRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
SELECT EXISTS(
SELECT 1 FROM friendships WHERE user_id=$1 AND friend_id=$2
)
`, userID, otherID)
	return exists, err
}

func (r *relationshipRepository) HasPendingRequest(ctx context.Context, senderID, receiverID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
SELECT EXISTS(
SELECT 1 FROM friend_requests
WHERE sender_id=$1 AND receiver_id=$2 AND status='pending'
)
`, senderID, receiverID)
	return exists, err
}

func (r *relationshipRepository) HasBlocked(ctx context.Context, userID, targetID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
SELECT EXISTS(
SELECT 1 FROM blacklist WHERE user_id=$1 AND blocked_user_id=$2
)
`, userID, targetID)
	return exists, err
}

func (r *relationshipRepository) IsBlockedBy(ctx context.Context, userID, otherID int64) (bool, error) {
	return r.HasBlocked(ctx, otherID, userID)
}

func (r *relationshipRepository) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	// Both directed rows go in one statement.
	res, err := r.db.ExecContext(ctx, `
DELETE FROM friendships
WHERE (user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)
`, userID, friendID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return apperr.ErrFriendshipNotFound
	}

	r.events.publish(ctx, rabbitmq.EventFriendshipDeleted, rabbitmq.PairEvent{
		UserID:     userID,
		OtherID:    friendID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (r *relationshipRepository) Block(ctx context.Context, userID, targetID int64) (*BlockResult, error) {
	result := &BlockResult{}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockPair(ctx, tx, userID, targetID); err != nil {
			return err
		}

		err := tx.GetContext(ctx, &result.Entry, `
INSERT INTO blacklist (user_id, blocked_user_id)
VALUES ($1, $2)
RETURNING `+blacklistColumns, userID, targetID)
		if err != nil {
			if db.IsUniqueViolation(err, blacklistPairKey) {
				return apperr.ErrAlreadyBlocked
			}
			return err
		}

		// Requests first: an in-flight accept holds the request row, so waiting
		// on it here guarantees its friendship rows are visible to the delete.
		res, err := tx.ExecContext(ctx, `
UPDATE friend_requests SET status='rejected', processed_at=NOW()
WHERE status='pending'
AND ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))
`, userID, targetID)
		if err != nil {
			return err
		}
		if result.RejectedRequests, err = res.RowsAffected(); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `
DELETE FROM friendships
WHERE (user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)
`, userID, targetID)
		if err != nil {
			return err
		}
		severed, err := res.RowsAffected()
		if err != nil {
			return err
		}
		result.SeveredFriendship = severed > 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.events.publish(ctx, rabbitmq.EventUserBlocked, rabbitmq.PairEvent{
		UserID:     userID,
		OtherID:    targetID,
		OccurredAt: result.Entry.CreatedAt,
	})
	return result, nil
}

func (r *relationshipRepository) Unblock(ctx context.Context, userID, targetID int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM blacklist WHERE user_id=$1 AND blocked_user_id=$2
`, userID, targetID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return apperr.ErrBlockNotFound
	}

	r.events.publish(ctx, rabbitmq.EventUserUnblocked, rabbitmq.PairEvent{
		UserID:     userID,
		OtherID:    targetID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (r *relationshipRepository) ListBlacklist(ctx context.Context, userID int64) ([]models.BlacklistEntry, error) {
	entries := []models.BlacklistEntry{}
	err := r.db.SelectContext(ctx, &entries, `
SELECT `+blacklistColumns+`
FROM blacklist
WHERE user_id=$1
ORDER BY created_at DESC, id DESC
`, userID)
	return entries, err
}

func insertFriendshipPair(ctx context.Context, tx *sqlx.Tx, userID, friendID int64) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2), ($2, $1)
ON CONFLICT (user_id, friend_id) DO NOTHING
`, userID, friendID)
	return err
}

func requestEvent(req *models.FriendRequest) rabbitmq.FriendRequestEvent {
	occurred := time.Now().UTC()
	if req.ProcessedAt != nil {
		occurred = *req.ProcessedAt
	}
	return rabbitmq.FriendRequestEvent{
		RequestID:  req.ID,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Status:     string(req.Status),
		OccurredAt: occurred,
	}
}
