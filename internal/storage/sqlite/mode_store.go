package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amirbiron/markdown-trainer/internal/training"
)

// ModeStore persists the per-user flow slot in SQLite. The mode_data column
// holds the serialized training session when current_mode is "training" and
// stays NULL otherwise, so the tagged union round-trips without guessing the
// blob shape from the mode string.
type ModeStore struct {
	db *DB
}

// NewModeStore creates a SQLite-backed mode store.
func NewModeStore(db *DB) *ModeStore {
	return &ModeStore{db: db}
}

// Mode reads the user's flow slot; a missing row means no flow is active.
func (s *ModeStore) Mode(ctx context.Context, userID int64) (training.Mode, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT current_mode, mode_data FROM user_modes WHERE user_id = ?", userID)

	var kind string
	var data sql.NullString
	if err := row.Scan(&kind, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return training.NoMode(), nil
		}
		return training.Mode{}, fmt.Errorf("query user mode: %w", err)
	}

	mode := training.Mode{Kind: training.ModeKind(kind)}
	if mode.Kind == training.ModeTraining {
		if !data.Valid {
			return training.Mode{}, fmt.Errorf("training mode for user %d has no session data", userID)
		}
		var sess training.Session
		if err := json.Unmarshal([]byte(data.String), &sess); err != nil {
			return training.Mode{}, fmt.Errorf("unmarshal session data: %w", err)
		}
		mode.Session = &sess
	}
	return mode, nil
}

// SetMode upserts the user's flow slot.
func (s *ModeStore) SetMode(ctx context.Context, userID int64, mode training.Mode) error {
	var data any
	if mode.Kind == training.ModeTraining {
		if mode.Session == nil {
			return fmt.Errorf("training mode requires a session")
		}
		blob, err := json.Marshal(mode.Session)
		if err != nil {
			return fmt.Errorf("marshal session data: %w", err)
		}
		data = string(blob)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_modes (user_id, current_mode, mode_data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			current_mode=excluded.current_mode,
			mode_data=excluded.mode_data,
			updated_at=excluded.updated_at`,
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
