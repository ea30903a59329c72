package handlers

import (
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"relation-service/internal/metrics"
	"relation-service/internal/models"
	"relation-service/internal/services"
	"relation-service/internal/telemetry"
)

type MessageHandler struct {
	auditor
	messages *services.MessageService
	users    services.UserDirectory
	log      *zap.Logger
}

func NewMessageHandler(messages *services.MessageService, users services.UserDirectory, audit *telemetry.AuditEmitter, log *zap.Logger) *MessageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageHandler{auditor: auditor{audit: audit}, messages: messages, users: users, log: log}
}

type sendMessageBody struct {
	ReceiverID int64  `json:"receiver_id" binding:"required"`
	Content    string `json:"content"`
}

type conversationDTO struct {
	ID                 int64       `json:"id"`
	OtherUser          models.User `json:"other_user"`
	LastMessageContent *string     `json:"last_message_content"`
	LastMessageTime    *time.Time  `json:"last_message_time"`
	UnreadCount        int64       `json:"unread_count"`
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	ctx := c.Request.Context()

	var body sendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.emitAudit(ctx, "message.send", telemetry.LevelError, "invalid request payload", requestID, userID)
		metrics.IncMessageSent(metrics.StatusFailed)
		respondBadRequest(c, "invalid request body")
		return
	}
	if userID == nil {
		metrics.IncMessageSent(metrics.StatusFailed)
		respondUnauthorized(c)
		return
	}

	msg, err := h.messages.SendMessage(ctx, *userID, body.ReceiverID, body.Content)
	if err != nil {
		respondError(c, h.log, err)
		h.emitFailure(ctx, "message.send", err, requestID, userID)
		metrics.IncMessageSent(metrics.StatusFailed)
		return
	}

	h.emitAudit(ctx, "message.send", telemetry.LevelInfo, "Message sent to '"+strconv.FormatInt(body.ReceiverID, 10)+"'", requestID, userID)
	metrics.IncMessageSent(metrics.StatusSuccess)
	respondOK(c, nethttp.StatusCreated, "message sent", msg)
}

func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		respondUnauthorized(c)
		return
	}
	ctx := c.Request.Context()

	page, err := h.messages.ListConversations(ctx, *userID, pageFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ids := make([]int64, 0, len(page.Results))
	for _, item := range page.Results {
		ids = append(ids, item.OtherUserID)
	}
	briefs, err := h.users.Briefs(ctx, ids)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	results := make([]conversationDTO, 0, len(page.Results))
	for _, item := range page.Results {
		results = append(results, conversationDTO{
			ID:                 item.ID,
			OtherUser:          briefs[item.OtherUserID],
			LastMessageContent: item.LastMessagePreview,
			LastMessageTime:    item.LastMessageTime,
			UnreadCount:        item.UnreadCount,
		})
	}

	respondOK(c, nethttp.StatusOK, "success", services.Paged[conversationDTO]{
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Results:  results,
	})
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
	conversationID, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "invalid conversation id")
		return
	}
	userID := userIDFromContext(c)
	if userID == nil {
		respondUnauthorized(c)
		return
	}

	page, err := h.messages.ListMessages(c.Request.Context(), *userID, conversationID, pageFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, nethttp.StatusOK, "success", page)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	conversationID, ok := paramID(c, "id")
	if !ok {
		metrics.IncMarkRead(metrics.StatusFailed)
		respondBadRequest(c, "invalid conversation id")
		return
	}

	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	if userID == nil {
		metrics.IncMarkRead(metrics.StatusFailed)
		respondUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	marked, err := h.messages.MarkRead(ctx, *userID, conversationID)
	if err != nil {
		respondError(c, h.log, err)
		h.emitFailure(ctx, "conversation.read", err, requestID, userID)
		metrics.IncMarkRead(metrics.StatusFailed)
		return
	}

	h.emitAudit(ctx, "conversation.read", telemetry.LevelInfo, "Conversation '"+strconv.FormatInt(conversationID, 10)+"' marked read", requestID, userID)
	metrics.IncMarkRead(metrics.StatusSuccess)
	respondOK(c, nethttp.StatusOK, "conversation marked read", gin.H{"marked_count": marked})
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		respondUnauthorized(c)
		return
	}

	total, err := h.messages.TotalUnread(c.Request.Context(), *userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, nethttp.StatusOK, "success", gin.H{"unread_count": total})
}

func (h *MessageHandler) Updates(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		respondUnauthorized(c)
		return
	}

	var since int64
	if raw := c.Query("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, "invalid since")
			return
		}
		since = parsed
	}

	ctx := c.Request.Context()
	unread, err := h.messages.TotalUnread(ctx, *userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	msgs, err := h.messages.PollNewMessages(ctx, *userID, since)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, nethttp.StatusOK, "success", gin.H{"unread_count": unread, "new_messages": msgs})
}
