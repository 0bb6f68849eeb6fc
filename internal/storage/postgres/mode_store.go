package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amirbiron/markdown-trainer/internal/training"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ModeStore persists the per-user flow slot in Postgres.
type ModeStore struct {
	pool *pgxpool.Pool
}

// NewModeStore creates a Postgres-backed mode store.
func NewModeStore(pool *pgxpool.Pool) *ModeStore {
	return &ModeStore{pool: pool}
}

// Mode reads the user's flow slot; a missing row means no flow is active.
func (s *ModeStore) Mode(ctx context.Context, userID int64) (training.Mode, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT current_mode, mode_data FROM user_modes WHERE user_id = $1", userID)

	var kind string
	var data []byte
	if err := row.Scan(&kind, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return training.NoMode(), nil
		}
		return training.Mode{}, fmt.Errorf("query user mode: %w", err)
	}

	mode := training.Mode{Kind: training.ModeKind(kind)}
	if mode.Kind == training.ModeTraining {
		if len(data) == 0 {
			return training.Mode{}, fmt.Errorf("training mode for user %d has no session data", userID)
		}
		var sess training.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return training.Mode{}, fmt.Errorf("unmarshal session data: %w", err)
		}
		mode.Session = &sess
	}
	return mode, nil
}

// SetMode upserts the user's flow slot.
func (s *ModeStore) SetMode(ctx context.Context, userID int64, mode training.Mode) error {
	var data []byte
	if mode.Kind == training.ModeTraining {
		if mode.Session == nil {
			return fmt.Errorf("training mode requires a session")
		}
		blob, err := json.Marshal(mode.Session)
		if err != nil {
			return fmt.Errorf("marshal session data: %w", err)
		}
		data = blob
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_modes (user_id, current_mode, mode_data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			current_mode = EXCLUDED.current_mode,
			mode_data = EXCLUDED.mode_data,
			updated_at = EXCLUDED.updated_at`,
		userID, string(mode.Kind), data, time.Now())
	if err != nil {
		return fmt.Errorf("upsert user mode: %w", err)
	}
	return nil
}

// ClearMode resets the user's flow slot to no active flow.
func (s *ModeStore) ClearMode(ctx context.Context, userID int64) error {
	return s.SetMode(ctx, userID, training.NoMode())
}
