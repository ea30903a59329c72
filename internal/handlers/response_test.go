package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"relation-service/internal/apperr"
)

func runResponder(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", fn)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestRespondOKWrapsData(t *testing.T) {
	rec := runResponder(func(c *gin.Context) {
		respondOK(c, http.StatusCreated, "created", gin.H{"id": 3})
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"code":201,"message":"created","data":{"id":3}}`, rec.Body.String())
}

func TestRespondOKWithoutData(t *testing.T) {
	rec := runResponder(func(c *gin.Context) {
		respondOK(c, http.StatusOK, "friend removed", nil)
	})

	assert.JSONEq(t, `{"code":200,"message":"friend removed","data":null}`, rec.Body.String())
}

func TestRespondErrorDomainError(t *testing.T) {
	rec := runResponder(func(c *gin.Context) {
		respondError(c, nil, apperr.ErrSelfTarget)
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, apperr.ErrSelfTarget.Message, env.Message)
	assert.Equal(t, "self_target", env.Errors["reason"])
	assert.Nil(t, env.Data)
}

func TestRespondErrorMergesDetails(t *testing.T) {
	rec := runResponder(func(c *gin.Context) {
		respondError(c, nil, apperr.ErrContentRejected.WithDetails(map[string]any{"content": "too long"}))
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "content_rejected", env.Errors["reason"])
	assert.Equal(t, "too long", env.Errors["content"])
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	rec := runResponder(func(c *gin.Context) {
		respondError(c, zap.New(core), errors.New("pq: connection refused"))
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":500,"message":"internal error","errors":{"reason":"internal"}}`, rec.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "request failed", logs.All()[0].Message)
}
