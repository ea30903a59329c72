package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

const MaxRequestMessageLen = 100

type FriendRequest struct {
	ID          int64         `db:"id" json:"id"`
	SenderID    int64         `db:"sender_id" json:"sender_id"`
	ReceiverID  int64         `db:"receiver_id" json:"receiver_id"`
	Message     string        `db:"message" json:"message"`
	Status      RequestStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
}

// Friendship is one directed edge. A mutual friendship is always two rows.
type Friendship struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	FriendID  int64     `db:"friend_id" json:"friend_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type BlacklistEntry struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	BlockedUserID int64     `db:"blocked_user_id" json:"blocked_user_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
