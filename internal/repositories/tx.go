package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"relation-service/internal/models"
	"relation-service/internal/observability"
	"relation-service/internal/rabbitmq"
)

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// lockPair takes a transaction-scoped advisory lock on the unordered pair.
// Request creation and blocking both hold it, so neither can commit against
// a stale view of the other.
func lockPair(ctx context.Context, tx *sqlx.Tx, a, b int64) error {
	low, high := models.CanonicalPair(a, b)
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		fmt.Sprintf("relation:%d:%d", low, high))
	if err != nil {
		return fmt.Errorf("lock relation pair: %w", err)
	}
	return nil
}

// eventLog publishes domain events after commit. Failures are logged only.
type eventLog struct {
	publisher rabbitmq.Publisher
	log       *zap.Logger
}

func newEventLog(publisher rabbitmq.Publisher, log *zap.Logger) eventLog {
	if log == nil {
		log = zap.NewNop()
	}
	return eventLog{publisher: publisher, log: log}
}

func (e eventLog) publish(ctx context.Context, eventType string, payload any) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, eventType, payload); err != nil {
		e.log.Warn("failed to publish event", zap.String("event", eventType), zap.Error(err))
		return
	}
	observability.IncDomainEventPublished(eventType)
}
