package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"relation-service/internal/mocks"
	"relation-service/internal/services"
)

type testDeps struct {
	relations     *mocks.MockRelationshipRepository
	conversations *mocks.MockConversationRepository
	users         *mocks.MockUserDirectory
	policy        *mocks.MockContentPolicy
}

func newTestRouter(userID int64) (*gin.Engine, *testDeps) {
	gin.SetMode(gin.TestMode)
	deps := &testDeps{
		relations:     new(mocks.MockRelationshipRepository),
		conversations: new(mocks.MockConversationRepository),
		users:         new(mocks.MockUserDirectory),
		policy:        new(mocks.MockContentPolicy),
	}

	friends := NewFriendHandler(services.NewFriendService(deps.relations, deps.users), deps.users, nil, nil)
	blacklist := NewBlacklistHandler(services.NewBlacklistService(deps.relations, deps.users), deps.users, nil, nil)
	messages := NewMessageHandler(
		services.NewMessageService(deps.relations, deps.conversations, deps.users, deps.policy),
		deps.users, nil, nil,
	)

	r := gin.New()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	authed := r.Group("", func(c *gin.Context) {
		if userID != 0 {
			c.Set("userID", userID)
		}
		c.Next()
	})
	Register(authed, func(c *gin.Context) { c.Next() }, friends, blacklist, messages)
	return r, deps
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

type envelopeBody struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  map[string]any  `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var env envelopeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, rec.Code, env.Code)
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, out))
}
