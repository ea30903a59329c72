package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relation-service/internal/apperr"
	"relation-service/internal/observability"
	"relation-service/internal/rabbitmq"
)

const AuditRoutingKey = "relation-service.audit"

const auditSchemaVersion = 1

const (
	LevelInfo  = "INFO"
	LevelError = "ERROR"
)

// Envelope matches the log-collector audit_log schema.
type Envelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventID       string       `json:"event_id"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *int64       `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

// AuditPayload is the payload for audit_log events.
type AuditPayload struct {
	Action string `json:"action"`
	Level  string `json:"level"`
	Text   string `json:"text"`
	Reason string `json:"reason,omitempty"`
}

type AuditEmitter struct {
	publisher   rabbitmq.Publisher
	service     string
	environment string
	log         *zap.Logger
}

func NewAuditEmitter(publisher rabbitmq.Publisher, service, environment string, log *zap.Logger) *AuditEmitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditEmitter{publisher: publisher, service: service, environment: environment, log: log}
}

func (e *AuditEmitter) EmitAudit(ctx context.Context, action, level, text, requestID string, userID *int64) {
	e.emit(ctx, AuditPayload{Action: action, Level: level, Text: text}, requestID, userID)
}

// EmitFailure records a failed operation. Domain errors contribute their
// stable reason; anything else is reported as an internal error.
func (e *AuditEmitter) EmitFailure(ctx context.Context, action string, err error, requestID string, userID *int64) {
	payload := AuditPayload{Action: action, Level: LevelError, Text: "internal error", Reason: "internal"}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		payload.Text = appErr.Message
		payload.Reason = appErr.Reason
	}
	e.emit(ctx, payload, requestID, userID)
}

func (e *AuditEmitter) emit(ctx context.Context, payload AuditPayload, requestID string, userID *int64) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := Envelope{
		SchemaVersion: auditSchemaVersion,
		EventID:       uuid.NewString(),
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, AuditRoutingKey, envelope); err != nil {
		e.log.Warn("failed to publish audit log", zap.String("action", payload.Action), zap.Error(err))
		return
	}
	observability.IncAuditEventPublished(payload.Action)
}
