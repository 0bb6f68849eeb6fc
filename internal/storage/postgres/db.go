// Package postgres provides the server-deployment storage backend. It
// implements the same store interfaces as the sqlite package; configuration
// picks one or the other.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_modes (
	user_id      BIGINT PRIMARY KEY,
	current_mode TEXT NOT NULL DEFAULT 'normal',
	mode_data    JSONB,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS training_sessions (
	id                   TEXT PRIMARY KEY,
	user_id              BIGINT NOT NULL,
	topic                TEXT NOT NULL,
	challenges_completed INTEGER NOT NULL DEFAULT 0,
	challenges_correct   INTEGER NOT NULL DEFAULT 0,
	status               TEXT NOT NULL DEFAULT 'active',
	started_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at         TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_training_sessions_user
	ON training_sessions (user_id, started_at DESC);

CREATE TABLE IF NOT EXISTS topic_performance (
	user_id        BIGINT NOT NULL,
	topic          TEXT NOT NULL,
	correct_count  INTEGER NOT NULL DEFAULT 0,
	wrong_count    INTEGER NOT NULL DEFAULT 0,
	last_practiced TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, topic)
);
`

// Open connects a pgx pool and verifies connectivity.
func Open(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate ensures the schema exists.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
