package models

import "time"

const MaxMessageContentLen = 1000

// Conversation is keyed on the ordered pair LowUserID < HighUserID.
type Conversation struct {
	ID              int64      `db:"id" json:"id"`
	LowUserID       int64      `db:"low_user_id" json:"low_user_id"`
	HighUserID      int64      `db:"high_user_id" json:"high_user_id"`
	LastMessageID   *int64     `db:"last_message_id" json:"last_message_id,omitempty"`
	LastMessageTime *time.Time `db:"last_message_time" json:"last_message_time,omitempty"`
	UnreadLow       int64      `db:"unread_count_low" json:"-"`
	UnreadHigh      int64      `db:"unread_count_high" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// ConversationSummary is a conversation joined with its last message text.
type ConversationSummary struct {
	Conversation
	LastMessageContent *string `db:"last_message_content" json:"-"`
}

type PrivateMessage struct {
	ID             int64      `db:"id" json:"id"`
	ConversationID int64      `db:"conversation_id" json:"conversation_id"`
	SenderID       int64      `db:"sender_id" json:"sender_id"`
	ReceiverID     int64      `db:"receiver_id" json:"receiver_id"`
	Content        string     `db:"content" json:"content"`
	IsRead         bool       `db:"is_read" json:"is_read"`
	ReadAt         *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

func CanonicalPair(a, b int64) (low, high int64) {
	if a < b {
		return a, b
	}
	return b, a
}

func (c *Conversation) Involves(userID int64) bool {
	return c.LowUserID == userID || c.HighUserID == userID
}

func (c *Conversation) OtherParty(userID int64) int64 {
	if c.LowUserID == userID {
		return c.HighUserID
	}
	return c.LowUserID
}

func (c *Conversation) UnreadCountFor(userID int64) int64 {
	switch userID {
	case c.LowUserID:
		return c.UnreadLow
	case c.HighUserID:
		return c.UnreadHigh
	default:
		return 0
	}
}

// ApplyMessage moves the last-message pointer to m and bumps the unread
// counter on the receiver's side.
func (c *Conversation) ApplyMessage(m *PrivateMessage) {
	id := m.ID
	at := m.CreatedAt
	c.LastMessageID = &id
	c.LastMessageTime = &at
	if m.ReceiverID == c.LowUserID {
		c.UnreadLow++
	} else {
		c.UnreadHigh++
	}
}

func (c *Conversation) ResetUnread(userID int64) {
	switch userID {
	case c.LowUserID:
		c.UnreadLow = 0
	case c.HighUserID:
		c.UnreadHigh = 0
	}
}
