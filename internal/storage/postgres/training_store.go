package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/amirbiron/markdown-trainer/internal/domain"
	"github.com/amirbiron/markdown-trainer/internal/training"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TrainingStore persists training session records and per-topic performance
// in Postgres.
type TrainingStore struct {
	pool *pgxpool.Pool
}

// NewTrainingStore creates a Postgres-backed training store.
func NewTrainingStore(pool *pgxpool.Pool) *TrainingStore {
	return &TrainingStore{pool: pool}
}

// CreateRecord inserts a new session row.
func (s *TrainingStore) CreateRecord(ctx context.Context, sess *training.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO training_sessions
			(id, user_id, topic, challenges_completed, challenges_correct, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sess.ID, sess.UserID, string(sess.Topic),
		sess.Completed, sess.Correct, string(sess.Status), sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert training session: %w", err)
	}
	return nil
}

// UpdateProgress writes the session counters.
func (s *TrainingStore) UpdateProgress(ctx context.Context, sessionID string, completed, correct int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE training_sessions
		SET challenges_completed = $1, challenges_correct = $2
		WHERE id = $3`,
		completed, correct, sessionID)
	if err != nil {
		return fmt.Errorf("update training session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// FinalizeRecord stamps the terminal status and completion time.
func (s *TrainingStore) FinalizeRecord(ctx context.Context, sessionID string, status training.Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE training_sessions
		SET status = $1, completed_at = $2
		WHERE id = $3`,
		string(status), time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("finalize training session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// RecordTopicOutcome upserts the per-topic answer counters.
func (s *TrainingStore) RecordTopicOutcome(ctx context.Context, userID int64, topic domain.Topic, correct bool) error {
	correctDelta, wrongDelta := 0, 1
	if correct {
		correctDelta, wrongDelta = 1, 0
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO topic_performance (user_id, topic, correct_count, wrong_count, last_practiced)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, topic) DO UPDATE SET
			correct_count = topic_performance.correct_count + EXCLUDED.correct_count,
			wrong_count = topic_performance.wrong_count + EXCLUDED.wrong_count,
			last_practiced = EXCLUDED.last_practiced`,
		userID, string(topic), correctDelta, wrongDelta, time.Now())
	if err != nil {
		return fmt.Errorf("upsert topic performance: %w", err)
	}
	return nil
}

// History returns the user's most recent sessions, newest first.
func (s *TrainingStore) History(ctx context.Context, userID int64, limit int) ([]training.Record, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, topic, challenges_completed, challenges_correct,
			status, started_at, completed_at
		FROM training_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query training history: %w", err)
	}
	defer rows.Close()

	var records []training.Record
	for rows.Next() {
		var rec training.Record
		var topic, status string
		var completedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.UserID, &topic, &rec.Completed, &rec.Correct,
			&status, &rec.StartedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan training record: %w", err)
		}
		rec.Topic = domain.Topic(topic)
		rec.Status = training.Status(status)
		if completedAt.Valid {
			t := completedAt.Time
			rec.CompletedAt = &t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats aggregates the user's completed sessions.
func (s *TrainingStore) Stats(ctx context.Context, userID int64) (training.Stats, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(challenges_completed), 0),
			COALESCE(SUM(challenges_correct), 0)
		FROM training_sessions
		WHERE user_id = $1 AND status = $2`,
		userID, string(training.StatusCompleted))

	var stats training.Stats
	if err := row.Scan(&stats.TotalSessions, &stats.TotalCompleted, &stats.TotalCorrect); err != nil {
		return training.Stats{}, fmt.Errorf("query training stats: %w", err)
	}
	return stats, nil
}
