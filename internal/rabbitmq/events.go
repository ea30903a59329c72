package rabbitmq

import "time"

// Routing keys for relationship and messaging events.
const (
	EventFriendRequestCreated  = "friend.request.created"
	EventFriendRequestAccepted = "friend.request.accepted"
	EventFriendRequestRejected = "friend.request.rejected"
	EventFriendshipDeleted     = "friendship.deleted"
	EventUserBlocked           = "user.blocked"
	EventUserUnblocked         = "user.unblocked"
	EventMessageSent           = "message.sent"
	EventConversationRead      = "conversation.read"
)

type FriendRequestEvent struct {
	RequestID  int64     `json:"request_id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PairEvent struct {
	UserID     int64     `json:"user_id"`
	OtherID    int64     `json:"other_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type MessageSentEvent struct {
	MessageID      int64     `json:"message_id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	ReceiverID     int64     `json:"receiver_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type ConversationReadEvent struct {
	ConversationID int64     `json:"conversation_id"`
	UserID         int64     `json:"user_id"`
	MarkedRead     int64     `json:"marked_read"`
	OccurredAt     time.Time `json:"occurred_at"`
}
