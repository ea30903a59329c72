package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"relation-service/internal/models"
	"relation-service/internal/rabbitmq"
	"relation-service/internal/repositories"
)

// MockRelationshipRepository mocks RelationshipRepository behavior for handlers and services.
type MockRelationshipRepository struct {
	mock.Mock
}

func (m *MockRelationshipRepository) CreateRequest(ctx context.Context, senderID, receiverID int64, message string) (*models.FriendRequest, error) {
	args := m.Called(ctx, senderID, receiverID, message)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockRelationshipRepository) GetIncomingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	args := m.Called(ctx, userID)
	var reqs []models.FriendRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.FriendRequest)
	}
	return reqs, args.Error(1)
}

func (m *MockRelationshipRepository) AcceptRequest(ctx context.Context, requestID, receiverID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, requestID, receiverID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockRelationshipRepository) RejectRequest(ctx context.Context, requestID, receiverID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, requestID, receiverID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockRelationshipRepository) ListFriends(ctx context.Context, userID int64) ([]models.Friendship, error) {
	args := m.Called(ctx, userID)
	var friends []models.Friendship
	if val := args.Get(0); val != nil {
		friends = val.([]models.Friendship)
	}
	return friends, args.Error(1)
}

func (m *MockRelationshipRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipRepository) HasPendingRequest(ctx context.Context, senderID, receiverID int64) (bool, error) {
	args := m.Called(ctx, senderID, receiverID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipRepository) HasBlocked(ctx context.Context, userID, targetID int64) (bool, error) {
	args := m.Called(ctx, userID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipRepository) IsBlockedBy(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipRepository) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockRelationshipRepository) Block(ctx context.Context, userID, targetID int64) (*repositories.BlockResult, error) {
	args := m.Called(ctx, userID, targetID)
	var res *repositories.BlockResult
	if val := args.Get(0); val != nil {
		res = val.(*repositories.BlockResult)
	}
	return res, args.Error(1)
}

func (m *MockRelationshipRepository) Unblock(ctx context.Context, userID, targetID int64) error {
	args := m.Called(ctx, userID, targetID)
	return args.Error(0)
}

func (m *MockRelationshipRepository) ListBlacklist(ctx context.Context, userID int64) ([]models.BlacklistEntry, error) {
	args := m.Called(ctx, userID)
	var entries []models.BlacklistEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.BlacklistEntry)
	}
	return entries, args.Error(1)
}

// MockConversationRepository mocks ConversationRepository behavior.
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) GetOrCreate(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	args := m.Called(ctx, userA, userB)
	var conv *models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(*models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *MockConversationRepository) GetForUser(ctx context.Context, conversationID, userID int64) (*models.Conversation, error) {
	args := m.Called(ctx, conversationID, userID)
	var conv *models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(*models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *MockConversationRepository) AppendMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.PrivateMessage, *models.Conversation, error) {
	args := m.Called(ctx, senderID, receiverID, content)
	var msg *models.PrivateMessage
	if val := args.Get(0); val != nil {
		msg = val.(*models.PrivateMessage)
	}
	var conv *models.Conversation
	if val := args.Get(1); val != nil {
		conv = val.(*models.Conversation)
	}
	return msg, conv, args.Error(2)
}

func (m *MockConversationRepository) MarkRead(ctx context.Context, conversationID, userID int64) (int64, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConversationRepository) ListConversations(ctx context.Context, userID int64, limit, offset int) ([]models.ConversationSummary, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	var rows []models.ConversationSummary
	if val := args.Get(0); val != nil {
		rows = val.([]models.ConversationSummary)
	}
	return rows, args.Get(1).(int64), args.Error(2)
}

func (m *MockConversationRepository) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]models.PrivateMessage, int64, error) {
	args := m.Called(ctx, conversationID, limit, offset)
	var msgs []models.PrivateMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.PrivateMessage)
	}
	return msgs, args.Get(1).(int64), args.Error(2)
}

func (m *MockConversationRepository) TotalUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConversationRepository) MessagesSince(ctx context.Context, userID, sinceID int64) ([]models.PrivateMessage, error) {
	args := m.Called(ctx, userID, sinceID)
	var msgs []models.PrivateMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.PrivateMessage)
	}
	return msgs, args.Error(1)
}

// MockUserRepository mocks UserRepository lookups.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetBriefs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	args := m.Called(ctx, ids)
	var briefs map[int64]models.User
	if val := args.Get(0); val != nil {
		briefs = val.(map[int64]models.User)
	}
	return briefs, args.Error(1)
}

// MockUserDirectory mocks the service-level user lookups.
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserDirectory) Briefs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	args := m.Called(ctx, ids)
	var briefs map[int64]models.User
	if val := args.Get(0); val != nil {
		briefs = val.(map[int64]models.User)
	}
	return briefs, args.Error(1)
}

type MockContentPolicy struct {
	mock.Mock
}

func (m *MockContentPolicy) CheckSensitive(text string) (bool, []string) {
	args := m.Called(text)
	var terms []string
	if val := args.Get(1); val != nil {
		terms = val.([]string)
	}
	return args.Bool(0), terms
}

// MockPublisher mocks RabbitMQ publisher behavior for telemetry.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Compile-time assertions
var (
	_ repositories.RelationshipRepository = (*MockRelationshipRepository)(nil)
	_ repositories.ConversationRepository = (*MockConversationRepository)(nil)
	_ repositories.UserRepository         = (*MockUserRepository)(nil)
	_ rabbitmq.Publisher                  = (*MockPublisher)(nil)
)
