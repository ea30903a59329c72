package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"relation-service/internal/metrics"
)

func fetchMetrics(t *testing.T, router *gin.Engine) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func metricValue(metricsBody, name, status string) (float64, bool) {
	target := name + `{status="` + status + `"}`
	for _, line := range strings.Split(metricsBody, "\n") {
		if strings.HasPrefix(line, target+" ") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return 0, false
			}
			value, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return 0, false
			}
			return value, true
		}
	}
	return 0, false
}

func assertMetricIncrement(t *testing.T, router *gin.Engine, name, status string, call func()) {
	t.Helper()
	before, _ := metricValue(fetchMetrics(t, router), name, status)
	call()
	after, found := metricValue(fetchMetrics(t, router), name, status)
	require.True(t, found)
	require.Greater(t, after, before)
}

func TestFriendRequestMetricsFailed(t *testing.T) {
	metrics.RegisterRelationMetrics()
	router, _ := newTestRouter(1)

	assertMetricIncrement(t, router, "friend_requests_total", "failed", func() {
		rec := doRequest(router, http.MethodPost, "/friends/request", `{"receiver_id":"bad"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFriendAcceptMetricsFailed(t *testing.T) {
	metrics.RegisterRelationMetrics()
	router, _ := newTestRouter(1)

	assertMetricIncrement(t, router, "friend_accepts_total", "failed", func() {
		rec := doRequest(router, http.MethodPost, "/friends/requests/abc/accept", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFriendRejectMetricsFailed(t *testing.T) {
	metrics.RegisterRelationMetrics()
	router, _ := newTestRouter(1)

	assertMetricIncrement(t, router, "friend_rejects_total", "failed", func() {
		rec := doRequest(router, http.MethodPost, "/friends/requests/abc/reject", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUnblockMetricsSuccess(t *testing.T) {
	metrics.RegisterRelationMetrics()
	router, deps := newTestRouter(1)
	deps.relations.On("Unblock", mock.Anything, int64(1), int64(2)).Return(nil)

	assertMetricIncrement(t, router, "blacklist_removes_total", "success", func() {
		rec := doRequest(router, http.MethodDelete, "/blacklist/2", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMessageSendMetricsFailedOnInternalError(t *testing.T) {
	metrics.RegisterRelationMetrics()
	router, deps := newTestRouter(1)
	deps.users.On("Exists", mock.Anything, int64(2)).Return(false, errors.New("db down"))

	assertMetricIncrement(t, router, "messages_sent_total", "failed", func() {
		rec := doRequest(router, http.MethodPost, "/messages/send", `{"receiver_id":2,"content":"hi"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
