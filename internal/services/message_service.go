package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"relation-service/internal/apperr"
	"relation-service/internal/models"
	"relation-service/internal/moderation"
	"relation-service/internal/repositories"
)

const previewRunes = 50

type MessageService struct {
	relations     repositories.RelationshipRepository
	conversations repositories.ConversationRepository
	users         UserDirectory
	policy        moderation.ContentPolicy
}

func NewMessageService(
	relations repositories.RelationshipRepository,
	conversations repositories.ConversationRepository,
	users UserDirectory,
	policy moderation.ContentPolicy,
) *MessageService {
	return &MessageService{
		relations:     relations,
		conversations: conversations,
		users:         users,
		policy:        policy,
	}
}

// ConversationItem is one row of a user's inbox, seen from that user's side.
type ConversationItem struct {
	ID                 int64      `json:"id"`
	OtherUserID        int64      `json:"other_user_id"`
	LastMessagePreview *string    `json:"last_message_content"`
	LastMessageTime    *time.Time `json:"last_message_time"`
	UnreadCount        int64      `json:"unread_count"`
}

func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.PrivateMessage, error) {
	if receiverID == senderID {
		return nil, apperr.ErrSelfTarget
	}

	exists, err := s.users.Exists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrReceiverNotFound
	}

	friends, err := s.relations.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, apperr.ErrNotFriends
	}

	blockedBy, err := s.relations.IsBlockedBy(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if blockedBy {
		return nil, apperr.ErrBlockedByReceiver
	}

	blocked, err := s.relations.HasBlocked(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperr.ErrSenderHasBlocked
	}

	content, err = s.checkContent(content)
	if err != nil {
		return nil, err
	}

	msg, _, err := s.conversations.AppendMessage(ctx, senderID, receiverID, content)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) checkContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.ErrContentRejected.WithDetails(map[string]any{"content": "must not be empty"})
	}
	if utf8.RuneCountInString(content) > models.MaxMessageContentLen {
		return "", apperr.ErrContentRejected.WithDetails(map[string]any{"content": "must be at most 1000 characters"})
	}
	if s.policy != nil {
		if hit, terms := s.policy.CheckSensitive(content); hit {
			return "", apperr.ErrContentRejected.WithDetails(map[string]any{"matched_terms": terms})
		}
	}
	return content, nil
}

func (s *MessageService) ListConversations(ctx context.Context, userID int64, page Page) (*Paged[ConversationItem], error) {
	page = page.Normalize()
	rows, total, err := s.conversations.ListConversations(ctx, userID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}

	items := make([]ConversationItem, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		items = append(items, ConversationItem{
			ID:                 row.ID,
			OtherUserID:        row.OtherParty(userID),
			LastMessagePreview: preview(row.LastMessageContent),
			LastMessageTime:    row.LastMessageTime,
			UnreadCount:        row.UnreadCountFor(userID),
		})
	}
	return &Paged[ConversationItem]{Total: total, Page: page.Number, PageSize: page.Size, Results: items}, nil
}

func (s *MessageService) ListMessages(ctx context.Context, userID, conversationID int64, page Page) (*Paged[models.PrivateMessage], error) {
	if _, err := s.conversations.GetForUser(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	page = page.Normalize()
	msgs, total, err := s.conversations.ListMessages(ctx, conversationID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	return &Paged[models.PrivateMessage]{Total: total, Page: page.Number, PageSize: page.Size, Results: msgs}, nil
}

func (s *MessageService) MarkRead(ctx context.Context, userID, conversationID int64) (int64, error) {
	return s.conversations.MarkRead(ctx, conversationID, userID)
}

func (s *MessageService) TotalUnread(ctx context.Context, userID int64) (int64, error) {
	return s.conversations.TotalUnread(ctx, userID)
}

func (s *MessageService) PollNewMessages(ctx context.Context, userID, sinceID int64) ([]models.PrivateMessage, error) {
	if sinceID < 0 {
		sinceID = 0
	}
	return s.conversations.MessagesSince(ctx, userID, sinceID)
}

func preview(content *string) *string {
	if content == nil {
		return nil
	}
	runes := []rune(*content)
	if len(runes) <= previewRunes {
		return content
	}
	p := string(runes[:previewRunes]) + "..."
	return &p
}
