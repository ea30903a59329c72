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
	"relation-service/internal/models"
	"relation-service/internal/rabbitmq"
)

const (
	conversationColumns = `id, low_user_id, high_user_id, last_message_id, last_message_time, unread_count_low, unread_count_high, created_at`
	messageColumns      = `id, conversation_id, sender_id, receiver_id, content, is_read, read_at, created_at`

	getOrCreateAttempts = 3
)

var errConversationRace = errors.New("conversation get-or-create did not converge")

// ConversationRepository is the conversation ledger: one row per unordered
// user pair, a last-message pointer and one unread counter per side.
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, userA, userB int64) (*models.Conversation, error)
	GetForUser(ctx context.Context, conversationID, userID int64) (*models.Conversation, error)
	AppendMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.PrivateMessage, *models.Conversation, error)
	MarkRead(ctx context.Context, conversationID, userID int64) (int64, error)
	ListConversations(ctx context.Context, userID int64, limit, offset int) ([]models.ConversationSummary, int64, error)
	ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]models.PrivateMessage, int64, error)
	TotalUnread(ctx context.Context, userID int64) (int64, error)
	MessagesSince(ctx context.Context, userID, sinceID int64) ([]models.PrivateMessage, error)
}

type conversationRepository struct {
	db     *sqlx.DB
	events eventLog
}

func NewConversationRepository(db *sqlx.DB, publisher rabbitmq.Publisher, log *zap.Logger) ConversationRepository {
	return &conversationRepository{db: db, events: newEventLog(publisher, log)}
}

func (r *conversationRepository) GetOrCreate(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	if userA == userB {
		return nil, apperr.ErrSelfTarget
	}
	low, high := models.CanonicalPair(userA, userB)
	return getOrCreateConversation(ctx, r.db, low, high)
}

// getOrCreateConversation relies on the unique (low, high) constraint: a
// losing concurrent insert returns no row and the winner is read back.
func getOrCreateConversation(ctx context.Context, q sqlx.QueryerContext, low, high int64) (*models.Conversation, error) {
	for attempt := 0; attempt < getOrCreateAttempts; attempt++ {
		var conv models.Conversation
		err := sqlx.GetContext(ctx, q, &conv, `
INSERT INTO conversations (low_user_id, high_user_id)
VALUES ($1, $2)
ON CONFLICT (low_user_id, high_user_id) DO NOTHING
RETURNING `+conversationColumns, low, high)
		if err == nil {
			return &conv, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("insert conversation: %w", err)
		}

		err = sqlx.GetContext(ctx, q, &conv, `
SELECT `+conversationColumns+`
FROM conversations
WHERE low_user_id=$1 AND high_user_id=$2
`, low, high)
		if err == nil {
			return &conv, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load conversation: %w", err)
		}
	}
	return nil, errConversationRace
}

func (r *conversationRepository) GetForUser(ctx context.Context, conversationID, userID int64) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `
SELECT `+conversationColumns+`
FROM conversations
WHERE id=$1 AND (low_user_id=$2 OR high_user_id=$2)
`, conversationID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) AppendMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.PrivateMessage, *models.Conversation, error) {
	var (
		msg  models.PrivateMessage
		conv *models.Conversation
	)
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// The share lock on the sender's friendship row makes a concurrent
		// block or unfriend wait for this message, or fail it.
		var friendshipID int64
		err := tx.GetContext(ctx, &friendshipID, `
SELECT f.id FROM friendships f
WHERE f.user_id=$1 AND f.friend_id=$2
AND NOT EXISTS (
SELECT 1 FROM blacklist b
WHERE (b.user_id=$1 AND b.blocked_user_id=$2) OR (b.user_id=$2 AND b.blocked_user_id=$1)
)
FOR SHARE OF f
`, senderID, receiverID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.ErrRelationshipChanged
			}
			return err
		}

		low, high := models.CanonicalPair(senderID, receiverID)
		created, err := getOrCreateConversation(ctx, tx, low, high)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `SELECT id FROM conversations WHERE id=$1 FOR UPDATE`, created.ID); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &msg, `
INSERT INTO private_messages (conversation_id, sender_id, receiver_id, content)
VALUES ($1, $2, $3, $4)
RETURNING `+messageColumns, created.ID, senderID, receiverID, content); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		var updated models.Conversation
		if err := tx.GetContext(ctx, &updated, `
UPDATE conversations SET
last_message_id=$2,
last_message_time=$3,
unread_count_low = unread_count_low + CASE WHEN low_user_id=$4 THEN 1 ELSE 0 END,
unread_count_high = unread_count_high + CASE WHEN high_user_id=$4 THEN 1 ELSE 0 END
WHERE id=$1
RETURNING `+conversationColumns, created.ID, msg.ID, msg.CreatedAt, receiverID); err != nil {
			return fmt.Errorf("update conversation: %w", err)
		}
		conv = &updated
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	r.events.publish(ctx, rabbitmq.EventMessageSent, rabbitmq.MessageSentEvent{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		ReceiverID:     msg.ReceiverID,
		CreatedAt:      msg.CreatedAt,
	})
	return &msg, conv, nil
}

func (r *conversationRepository) MarkRead(ctx context.Context, conversationID, userID int64) (int64, error) {
	var marked int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var conv models.Conversation
		err := tx.GetContext(ctx, &conv, `
SELECT `+conversationColumns+`
FROM conversations
WHERE id=$1 AND (low_user_id=$2 OR high_user_id=$2)
FOR UPDATE
`, conversationID, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.ErrConversationNotFound
			}
			return err
		}

		res, err := tx.ExecContext(ctx, `
UPDATE private_messages SET is_read=TRUE, read_at=NOW()
WHERE conversation_id=$1 AND receiver_id=$2 AND is_read=FALSE
`, conversationID, userID)
		if err != nil {
			return err
		}
		if marked, err = res.RowsAffected(); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
UPDATE conversations SET
unread_count_low = CASE WHEN low_user_id=$2 THEN 0 ELSE unread_count_low END,
unread_count_high = CASE WHEN high_user_id=$2 THEN 0 ELSE unread_count_high END
WHERE id=$1
`, conversationID, userID)
		return err
	})
	if err != nil {
		return 0, err
	}

	r.events.publish(ctx, rabbitmq.EventConversationRead, rabbitmq.ConversationReadEvent{
		ConversationID: conversationID,
		UserID:         userID,
		MarkedRead:     marked,
		OccurredAt:     time.Now().UTC(),
	})
	return marked, nil
}

func (r *conversationRepository) ListConversations(ctx context.Context, userID int64, limit, offset int) ([]models.ConversationSummary, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `
SELECT COUNT(*) FROM conversations
WHERE (low_user_id=$1 OR high_user_id=$1) AND last_message_id IS NOT NULL
`, userID); err != nil {
		return nil, 0, err
	}

	items := []models.ConversationSummary{}
	err := r.db.SelectContext(ctx, &items, `
SELECT c.id, c.low_user_id, c.high_user_id, c.last_message_id, c.last_message_time,
c.unread_count_low, c.unread_count_high, c.created_at, m.content AS last_message_content
FROM conversations c
JOIN private_messages m ON m.id = c.last_message_id
WHERE c.low_user_id=$1 OR c.high_user_id=$1
ORDER BY c.last_message_time DESC, c.id DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *conversationRepository) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]models.PrivateMessage, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `
SELECT COUNT(*) FROM private_messages WHERE conversation_id=$1
`, conversationID); err != nil {
		return nil, 0, err
	}

	msgs := []models.PrivateMessage{}
	err := r.db.SelectContext(ctx, &msgs, `
SELECT `+messageColumns+`
FROM private_messages
WHERE conversation_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *conversationRepository) TotalUnread(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `
SELECT COALESCE(SUM(CASE WHEN low_user_id=$1 THEN unread_count_low ELSE unread_count_high END), 0)
FROM conversations
WHERE low_user_id=$1 OR high_user_id=$1
`, userID)
	return total, err
}

func (r *conversationRepository) MessagesSince(ctx context.Context, userID, sinceID int64) ([]models.PrivateMessage, error) {
	msgs := []models.PrivateMessage{}
	err := r.db.SelectContext(ctx, &msgs, `
SELECT `+messageColumns+`
FROM private_messages
WHERE receiver_id=$1 AND id>$2
ORDER BY id ASC
`, userID, sinceID)
	return msgs, err
}
