package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPair(t *testing.T) {
	low, high := CanonicalPair(9, 3)
	assert.Equal(t, int64(3), low)
	assert.Equal(t, int64(9), high)

	low2, high2 := CanonicalPair(3, 9)
	assert.Equal(t, low, low2)
	assert.Equal(t, high, high2)
}

func TestConversationSides(t *testing.T) {
	c := &Conversation{LowUserID: 1, HighUserID: 2, UnreadLow: 4, UnreadHigh: 7}

	assert.Equal(t, int64(2), c.OtherParty(1))
	assert.Equal(t, int64(1), c.OtherParty(2))
	assert.Equal(t, int64(4), c.UnreadCountFor(1))
	assert.Equal(t, int64(7), c.UnreadCountFor(2))
	assert.Equal(t, int64(0), c.UnreadCountFor(3))
	assert.True(t, c.Involves(2))
	assert.False(t, c.Involves(3))
}

func TestApplyMessageIncrementsReceiverSide(t *testing.T) {
	c := &Conversation{LowUserID: 1, HighUserID: 2}
	now := time.Now()

	c.ApplyMessage(&PrivateMessage{ID: 10, SenderID: 2, ReceiverID: 1, CreatedAt: now})
	assert.Equal(t, int64(1), c.UnreadLow)
	assert.Equal(t, int64(0), c.UnreadHigh)
	assert.Equal(t, int64(10), *c.LastMessageID)

	c.ApplyMessage(&PrivateMessage{ID: 11, SenderID: 1, ReceiverID: 2, CreatedAt: now})
	assert.Equal(t, int64(1), c.UnreadLow)
	assert.Equal(t, int64(1), c.UnreadHigh)
	assert.Equal(t, int64(11), *c.LastMessageID)

	c.ResetUnread(1)
	assert.Equal(t, int64(0), c.UnreadLow)
	assert.Equal(t, int64(1), c.UnreadHigh)
}
