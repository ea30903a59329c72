// Package observability holds the process-wide Prometheus collectors that are
// not tied to a single relation operation: HTTP traffic and the AMQP outbox.
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const unknownLabel = "unknown"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relation_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relation_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	auditEventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relation_audit_events_published_total",
			Help: "Total number of audit events published, by action.",
		},
		[]string{"action"},
	)
	domainEventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relation_domain_events_published_total",
			Help: "Total number of domain events published after commit, by routing key.",
		},
		[]string{"event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relation_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors, by exchange.",
		},
		[]string{"exchange"},
	)
	metricsOnce sync.Once
)

func InitMetrics(reg prometheus.Registerer) {
	metricsOnce.Do(func() {
		reg.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			auditEventsPublishedTotal,
			domainEventsPublishedTotal,
			amqpPublishErrorsTotal,
		)
	})
}

func orUnknown(v string) string {
	if v == "" {
		return unknownLabel
	}
	return v
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	route = orUnknown(route)
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func IncAuditEventPublished(action string) {
	auditEventsPublishedTotal.WithLabelValues(orUnknown(action)).Inc()
}

func IncDomainEventPublished(event string) {
	domainEventsPublishedTotal.WithLabelValues(orUnknown(event)).Inc()
}

func IncAMQPPublishError(exchange string) {
	amqpPublishErrorsTotal.WithLabelValues(orUnknown(exchange)).Inc()
}
