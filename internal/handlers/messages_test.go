package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"relation-service/internal/apperr"
	"relation-service/internal/models"
)

func allowMessaging(d *testDeps, sender, receiver int64) {
	d.users.On("Exists", mock.Anything, receiver).Return(true, nil)
	d.relations.On("AreFriends", mock.Anything, sender, receiver).Return(true, nil)
	d.relations.On("IsBlockedBy", mock.Anything, sender, receiver).Return(false, nil)
	d.relations.On("HasBlocked", mock.Anything, sender, receiver).Return(false, nil)
}

func TestSendMessage_Created(t *testing.T) {
	router, deps := newTestRouter(7)
	allowMessaging(deps, 7, 3)
	deps.policy.On("CheckSensitive", "hello").Return(false, nil)
	deps.conversations.On("AppendMessage", mock.Anything, int64(7), int64(3), "hello").Return(
		&models.PrivateMessage{ID: 1, ConversationID: 11, SenderID: 7, ReceiverID: 3, Content: "hello", CreatedAt: time.Now()},
		&models.Conversation{ID: 11, LowUserID: 3, HighUserID: 7, UnreadLow: 1},
		nil,
	)

	rec := doRequest(router, http.MethodPost, "/messages/send", `{"receiver_id":3,"content":"hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.PrivateMessage
	decodeData(t, rec, &resp)
	assert.Equal(t, int64(11), resp.ConversationID)
	assert.False(t, resp.IsRead)
}

func TestSendMessage_NotFriendsForbidden(t *testing.T) {
	router, deps := newTestRouter(1)
	deps.users.On("Exists", mock.Anything, int64(2)).Return(true, nil)
	deps.relations.On("AreFriends", mock.Anything, int64(1), int64(2)).Return(false, nil)

	rec := doRequest(router, http.MethodPost, "/messages/send", `{"receiver_id":2,"content":"hi"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_friends", decodeEnvelope(t, rec).Errors["reason"])
}

func TestSendMessage_SensitiveContent(t *testing.T) {
	router, deps := newTestRouter(1)
	allowMessaging(deps, 1, 2)
	deps.policy.On("CheckSensitive", "spam here").Return(true, []string{"spam"})

	rec := doRequest(router, http.MethodPost, "/messages/send", `{"receiver_id":2,"content":"spam here"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Code   int `json:"code"`
		Errors struct {
			Reason       string   `json:"reason"`
			MatchedTerms []string `json:"matched_terms"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "content_rejected", resp.Errors.Reason)
	assert.Equal(t, []string{"spam"}, resp.Errors.MatchedTerms)
}

func TestListConversations_Paged(t *testing.T) {
	router, deps := newTestRouter(7)
	content := strings.Repeat("a", 80)
	at := time.Now()
	deps.conversations.On("ListConversations", mock.Anything, int64(7), 10, 10).Return([]models.ConversationSummary{
		{
			Conversation:       models.Conversation{ID: 11, LowUserID: 3, HighUserID: 7, UnreadHigh: 2, LastMessageTime: &at},
			LastMessageContent: &content,
		},
	}, int64(11), nil)
	deps.users.On("Briefs", mock.Anything, []int64{3}).Return(map[int64]models.User{3: {ID: 3, Username: "cat"}}, nil)

	rec := doRequest(router, http.MethodGet, "/messages/conversations?page=2&page_size=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total    int64             `json:"total"`
		Page     int               `json:"page"`
		PageSize int               `json:"page_size"`
		Results  []conversationDTO `json:"results"`
	}
	decodeData(t, rec, &resp)
	assert.Equal(t, int64(11), resp.Total)
	assert.Equal(t, 2, resp.Page)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "cat", resp.Results[0].OtherUser.Username)
	assert.Equal(t, int64(2), resp.Results[0].UnreadCount)
	assert.Equal(t, strings.Repeat("a", 50)+"...", *resp.Results[0].LastMessageContent)
}

func TestListMessages_NotParticipant(t *testing.T) {
	router, deps := newTestRouter(8)
	deps.conversations.On("GetForUser", mock.Anything, int64(11), int64(8)).Return(nil, apperr.ErrConversationNotFound)

	rec := doRequest(router, http.MethodGet, "/messages/conversations/11/messages", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkRead(t *testing.T) {
	router, deps := newTestRouter(3)
	deps.conversations.On("MarkRead", mock.Anything, int64(11), int64(3)).Return(int64(2), nil)

	rec := doRequest(router, http.MethodPost, "/messages/conversations/11/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":200,"message":"conversation marked read","data":{"marked_count":2}}`, rec.Body.String())
}

func TestUnreadCount(t *testing.T) {
	router, deps := newTestRouter(3)
	deps.conversations.On("TotalUnread", mock.Anything, int64(3)).Return(int64(5), nil)

	rec := doRequest(router, http.MethodGet, "/messages/unread-count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":200,"message":"success","data":{"unread_count":5}}`, rec.Body.String())
}

func TestUpdates(t *testing.T) {
	router, deps := newTestRouter(3)
	deps.conversations.On("TotalUnread", mock.Anything, int64(3)).Return(int64(1), nil)
	deps.conversations.On("MessagesSince", mock.Anything, int64(3), int64(40)).
		Return([]models.PrivateMessage{{ID: 41, SenderID: 7, ReceiverID: 3, Content: "new"}}, nil)

	rec := doRequest(router, http.MethodGet, "/messages/updates?since=40", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UnreadCount int64                   `json:"unread_count"`
		NewMessages []models.PrivateMessage `json:"new_messages"`
	}
	decodeData(t, rec, &resp)
	assert.Equal(t, int64(1), resp.UnreadCount)
	require.Len(t, resp.NewMessages, 1)
	assert.Equal(t, int64(41), resp.NewMessages[0].ID)

	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/messages/updates?since=x", "").Code)
}
