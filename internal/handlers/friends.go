package handlers

import (
	"context"
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

type FriendHandler struct {
	auditor
	friends *services.FriendService
	users   services.UserDirectory
	log     *zap.Logger
}

func NewFriendHandler(friends *services.FriendService, users services.UserDirectory, audit *telemetry.AuditEmitter, log *zap.Logger) *FriendHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FriendHandler{auditor: auditor{audit: audit}, friends: friends, users: users, log: log}
}

type sendRequestBody struct {
	ReceiverID int64  `json:"receiver_id" binding:"required"`
	Message    string `json:"message"`
}

type incomingRequestDTO struct {
	ID        int64                `json:"id"`
	Sender    models.User          `json:"sender"`
	Message   string               `json:"message"`
	Status    models.RequestStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

type friendDTO struct {
	ID        int64       `json:"id"`
	Friend    models.User `json:"friend"`
	CreatedAt time.Time   `json:"created_at"`
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	ctx := c.Request.Context()

	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.emitAudit(ctx, "friend.request.send", telemetry.LevelError, "invalid request payload", requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		respondBadRequest(c, "invalid request body")
		return
	}

	if userID == nil {
		metrics.IncFriendRequest(metrics.StatusFailed)
		respondUnauthorized(c)
		return
	}

	req, err := h.friends.SendRequest(ctx, *userID, body.ReceiverID, body.Message)
	if err != nil {
		respondError(c, h.log, err)
		h.emitFailure(ctx, "friend.request.send", err, requestID, userID)
		metrics.IncFriendRequest(metrics.StatusFailed)
		return
	}

	h.emitAudit(ctx, "friend.request.send", telemetry.LevelInfo, "Friend request sent to '"+strconv.FormatInt(body.ReceiverID, 10)+"'", requestID, userID)
	metrics.IncFriendRequest(metrics.StatusSuccess)
	respondOK(c, nethttp.StatusCreated, "friend request sent", req)
}

func (h *FriendHandler) ListIncoming(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		respondUnauthorized(c)
		return
	}
	ctx := c.Request.Context()

	requests, err := h.friends.ListIncoming(ctx, *userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ids := make([]int64, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.SenderID)
	}
	briefs, err := h.users.Briefs(ctx, ids)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := make([]incomingRequestDTO, 0, len(requests))
	for _, req := range requests {
		resp = append(resp, incomingRequestDTO{
			ID:        req.ID,
			Sender:    briefs[req.SenderID],
			Message:   req.Message,
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
		})
	}

	respondOK(c, nethttp.StatusOK, "success", resp)
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	h.handleDecision(c, h.friends.Accept, "friend.request.accept", "accepted", metrics.IncFriendAccept)
}

func (h *FriendHandler) RejectRequest(c *gin.Context) {
	h.handleDecision(c, h.friends.Reject, "friend.request.reject", "rejected", metrics.IncFriendReject)
}

func (h *FriendHandler) handleDecision(
	c *gin.Context,
	action func(ctx context.Context, receiverID, requestID int64) (*models.FriendRequest, error),
	auditAction, status string,
	inc func(string),
) {
	reqID, ok := paramID(c, "id")
	if !ok {
		inc(metrics.StatusFailed)
		respondBadRequest(c, "invalid request id")
		return
	}

	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	if userID == nil {
		inc(metrics.StatusFailed)
		respondUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	req, err := action(ctx, *userID, reqID)
	if err != nil {
		respondError(c, h.log, err)
		h.emitFailure(ctx, auditAction, err, requestID, userID)
		inc(metrics.StatusFailed)
		return
	}

	h.emitAudit(ctx, auditAction, telemetry.LevelInfo, "Friend request "+status, requestID, userID)
	inc(metrics.StatusSuccess)
	respondOK(c, nethttp.StatusOK, "friend request "+status, req)
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		respondUnauthorized(c)
		return
	}
	ctx := c.Request.Context()

	friends, err := h.friends.ListFriends(ctx, *userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ids := make([]int64, 0, len(friends))
	for _, f := range friends {
		ids = append(ids, f.FriendID)
	}
	briefs, err := h.users.Briefs(ctx, ids)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := make([]friendDTO, 0, len(friends))
	for _, f := range friends {
		resp = append(resp, friendDTO{ID: f.ID, Friend: briefs[f.FriendID], CreatedAt: f.CreatedAt})
	}

	respondOK(c, nethttp.StatusOK, "success", resp)
}

func (h *FriendHandler) DeleteFriend(c *gin.Context) {
	friendID, ok := paramID(c, "friend_id")
	if !ok {
		metrics.IncFriendDelete(metrics.StatusFailed)
		respondBadRequest(c, "invalid friend id")
		return
	}

	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	if userID == nil {
		metrics.IncFriendDelete(metrics.StatusFailed)
		respondUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	if err := h.friends.Unfriend(ctx, *userID, friendID); err != nil {
		respondError(c, h.log, err)
		h.emitFailure(ctx, "friend.delete", err, requestID, userID)
		metrics.IncFriendDelete(metrics.StatusFailed)
		return
	}

	h.emitAudit(ctx, "friend.delete", telemetry.LevelInfo, "Friendship with '"+strconv.FormatInt(friendID, 10)+"' removed", requestID, userID)
	metrics.IncFriendDelete(metrics.StatusSuccess)
	respondOK(c, nethttp.StatusOK, "friend removed", nil)
}
