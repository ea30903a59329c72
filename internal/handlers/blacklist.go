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

type BlacklistHandler struct {
	auditor
	blacklist *services.BlacklistService
	users     services.UserDirectory
	log       *zap.Logger
}

func NewBlacklistHandler(blacklist *services.BlacklistService, users services.UserDirectory, audit *telemetry.AuditEmitter, log *zap.Logger) *BlacklistHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BlacklistHandler{auditor: auditor{audit: audit}, blacklist: blacklist, users: users, log: log}
}

type blockBody struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type blacklistEntryDTO struct {
	ID          int64       `json:"id"`
	BlockedUser models.User `json:"blocked_user"`
	CreatedAt   time.Time   `json:"created_at"`
}

type blockResultDTO struct {
	blacklistEntryDTO
	SeveredFriendship bool  `json:"severed_friendship"`
	RejectedRequests  int64 `json:"rejected_requests"`
}

func (h *BlacklistHandler) List(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == nil {
		respondUnauthorized(c)
		return
	}
	ctx := c.Request.Context()

	entries, err := h.blacklist.List(ctx, *userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.BlockedUserID)
	}
	briefs, err := h.users.Briefs(ctx, ids)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := make([]blacklistEntryDTO, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, blacklistEntryDTO{ID: e.ID, BlockedUser: briefs[e.BlockedUserID], CreatedAt: e.CreatedAt})
	}
	respondOK(c, nethttp.StatusOK, "success", resp)
}

func (h *BlacklistHandler) Block(c *gin.Context) {
	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	ctx := c.Request.Context()

	var body blockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.emitAudit(ctx, "blacklist.add", telemetry.LevelError, "invalid request payload", requestID, userID)
		metrics.IncBlock(metrics.StatusFailed)
		respondBadRequest(c, "invalid request body")
		return
	}
	if userID == nil {
		metrics.IncBlock(metrics.StatusFailed)
		respondUnauthorized(c)
		return
	}

	res, err := h.blacklist.Block(ctx, *userID, body.UserID)
	if err != nil {
		respondError(c, h.log, err)
		h.emitFailure(ctx, "blacklist.add", err, requestID, userID)
		metrics.IncBlock(metrics.StatusFailed)
		return
	}

	briefs, err := h.users.Briefs(ctx, []int64{body.UserID})
	if err != nil {
		// the block is committed; answer with the bare id
		h.log.Warn("failed to load blocked user brief", zap.Int64("user_id", body.UserID), zap.Error(err))
		briefs = map[int64]models.User{body.UserID: models.UnknownUser(body.UserID)}
	}

	h.emitAudit(ctx, "blacklist.add", telemetry.LevelInfo, "User '"+strconv.FormatInt(body.UserID, 10)+"' blocked", requestID, userID)
	metrics.IncBlock(metrics.StatusSuccess)
	respondOK(c, nethttp.StatusCreated, "user blocked", blockResultDTO{
		blacklistEntryDTO: blacklistEntryDTO{
			ID:          res.Entry.ID,
			BlockedUser: briefs[body.UserID],
			CreatedAt:   res.Entry.CreatedAt,
		},
		SeveredFriendship: res.SeveredFriendship,
		RejectedRequests:  res.RejectedRequests,
	})
}

func (h *BlacklistHandler) Unblock(c *gin.Context) {
	targetID, ok := paramID(c, "user_id")
	if !ok {
		metrics.IncUnblock(metrics.StatusFailed)
		respondBadRequest(c, "invalid user id")
		return
	}

	requestID := requestIDFromHeader(c)
	userID := userIDFromContext(c)
	if userID == nil {
		metrics.IncUnblock(metrics.StatusFailed)
		respondUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	if err := h.blacklist.Unblock(ctx, *userID, targetID); err != nil {
		respondError(c, h.log, err)
		h.emitFailure(ctx, "blacklist.remove", err, requestID, userID)
		metrics.IncUnblock(metrics.StatusFailed)
		return
	}

	h.emitAudit(ctx, "blacklist.remove", telemetry.LevelInfo, "User '"+strconv.FormatInt(targetID, 10)+"' unblocked", requestID, userID)
	metrics.IncUnblock(metrics.StatusSuccess)
	respondOK(c, nethttp.StatusOK, "user unblocked", nil)
}
