package handlers

import (
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"relation-service/internal/apperr"
)

// respondOK writes the success envelope; code repeats the HTTP status.
func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": data})
}

// respondFailure writes the failure envelope. The stable reason travels in
// errors next to any details the domain error carries.
func respondFailure(c *gin.Context, status int, message, reason string, details map[string]any) {
	errs := gin.H{}
	for k, v := range details {
		errs[k] = v
	}
	errs["reason"] = reason
	c.JSON(status, gin.H{"code": status, "message": message, "errors": errs})
}

// respondError writes the status for a domain error, or 500 for anything else.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		respondFailure(c, apperr.HTTPStatus(appErr.Kind), appErr.Message, appErr.Reason, appErr.Details)
		return
	}

	if log != nil {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	respondFailure(c, nethttp.StatusInternalServerError, "internal error", "internal", nil)
}

func respondBadRequest(c *gin.Context, message string) {
	respondFailure(c, nethttp.StatusBadRequest, message, "invalid_input", nil)
}

func respondUnauthorized(c *gin.Context) {
	respondFailure(c, nethttp.StatusUnauthorized, "unauthorized", "unauthorized", nil)
}
