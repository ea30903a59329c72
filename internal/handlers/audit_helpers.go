package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"relation-service/internal/services"
	"relation-service/internal/telemetry"
)

func requestIDFromHeader(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return requestID
}

// userIDFromContext reads the id stored by JWTAuth.
func userIDFromContext(c *gin.Context) *int64 {
	if userIDVal, ok := c.Get("userID"); ok {
		if userID, ok := userIDVal.(int64); ok {
			return &userID
		}
	}

	return nil
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pageFromQuery(c *gin.Context) services.Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return services.Page{Number: number, Size: size}.Normalize()
}

// auditor is embedded by every handler that records audit envelopes.
type auditor struct {
	audit *telemetry.AuditEmitter
}

func (a auditor) emitAudit(ctx context.Context, action, level, text, requestID string, userID *int64) {
	if a.audit == nil {
		return
	}
	a.audit.EmitAudit(ctx, action, level, text, requestID, userID)
}

func (a auditor) emitFailure(ctx context.Context, action string, err error, requestID string, userID *int64) {
	if a.audit == nil {
		return
	}
	a.audit.EmitFailure(ctx, action, err, requestID, userID)
}
