package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect opens the pool, pings it and applies migrations.
func Connect(dsn string, opts PoolOptions) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		avatar_url TEXT
		)`,
	`CREATE TABLE IF NOT EXISTS friend_requests (
		id BIGSERIAL PRIMARY KEY,
		sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message VARCHAR(100) NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','accepted','rejected')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMPTZ,
		CHECK (sender_id <> receiver_id)
		)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS friend_requests_unique_pending
		ON friend_requests (sender_id, receiver_id) WHERE status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS friendships (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		friend_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, friend_id),
		CHECK (user_id <> friend_id)
		)`,
	`CREATE TABLE IF NOT EXISTS blacklist (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		blocked_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, blocked_user_id),
		CHECK (user_id <> blocked_user_id)
		)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id BIGSERIAL PRIMARY KEY,
		low_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		high_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		last_message_id BIGINT,
		last_message_time TIMESTAMPTZ,
		unread_count_low BIGINT NOT NULL DEFAULT 0 CHECK (unread_count_low >= 0),
		unread_count_high BIGINT NOT NULL DEFAULT 0 CHECK (unread_count_high >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (low_user_id, high_user_id),
		CHECK (low_user_id < high_user_id)
		)`,
	`CREATE TABLE IF NOT EXISTS private_messages (
		id BIGSERIAL PRIMARY KEY,
		conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content VARCHAR(1000) NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		read_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	`CREATE INDEX IF NOT EXISTS private_messages_conversation_created
		ON private_messages (conversation_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS private_messages_receiver_unread
		ON private_messages (receiver_id, is_read)`,
}

func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	for _, q := range migrations {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a postgres unique constraint
// failure, optionally restricted to the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
