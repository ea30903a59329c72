package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

var (
	relationMetricsOnce sync.Once

	friendRequestsTotal = newStatusCounter("friend_requests_total", "Total number of friend request attempts")
	friendAcceptsTotal  = newStatusCounter("friend_accepts_total", "Total number of friend request accept attempts")
	friendRejectsTotal  = newStatusCounter("friend_rejects_total", "Total number of friend request reject attempts")
	friendDeletesTotal  = newStatusCounter("friend_deletes_total", "Total number of unfriend attempts")
	blocksTotal         = newStatusCounter("blacklist_adds_total", "Total number of block attempts")
	unblocksTotal       = newStatusCounter("blacklist_removes_total", "Total number of unblock attempts")
	messagesSentTotal   = newStatusCounter("messages_sent_total", "Total number of private message send attempts")
	markReadTotal       = newStatusCounter("conversation_reads_total", "Total number of mark-read attempts")
)

func newStatusCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: name, Help: help},
		[]string{"status"},
	)
}

func RegisterRelationMetrics() {
	relationMetricsOnce.Do(func() {
		prometheus.MustRegister(
			friendRequestsTotal, friendAcceptsTotal, friendRejectsTotal, friendDeletesTotal,
			blocksTotal, unblocksTotal, messagesSentTotal, markReadTotal,
		)
	})
}

func inc(c *prometheus.CounterVec, status string) {
	RegisterRelationMetrics()
	c.WithLabelValues(status).Inc()
}

func IncFriendRequest(status string) { inc(friendRequestsTotal, status) }

func IncFriendAccept(status string) { inc(friendAcceptsTotal, status) }

func IncFriendReject(status string) { inc(friendRejectsTotal, status) }

func IncFriendDelete(status string) { inc(friendDeletesTotal, status) }

func IncBlock(status string) { inc(blocksTotal, status) }

func IncUnblock(status string) { inc(unblocksTotal, status) }

func IncMessageSent(status string) { inc(messagesSentTotal, status) }

func IncMarkRead(status string) { inc(markReadTotal, status) }
