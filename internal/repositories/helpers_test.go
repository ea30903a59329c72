package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, m, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, m.ExpectationsWereMet())
		raw.Close()
	})
	return sqlx.NewDb(raw, "postgres"), m
}

type recordingPublisher struct {
	mock.Mock
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	args := p.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (p *recordingPublisher) Close() error { return nil }
