package training

import (
	"context"

	"github.com/amirbiron/markdown-trainer/internal/domain"
)

// ModeStore persists the per-user flow slot.
type ModeStore interface {
	Mode(ctx context.Context, userID int64) (Mode, error)
	SetMode(ctx context.Context, userID int64, mode Mode) error
	ClearMode(ctx context.Context, userID int64) error
}

// SessionStore persists training session records and per-topic performance.
type SessionStore interface {
	CreateRecord(ctx context.Context, sess *Session) error
	UpdateProgress(ctx context.Context, sessionID string, completed, correct int) error
	FinalizeRecord(ctx context.Context, sessionID string, status Status) error
	RecordTopicOutcome(ctx context.Context, userID int64, topic domain.Topic, correct bool) error
	History(ctx context.Context, userID int64, limit int) ([]Record, error)
	Stats(ctx context.Context, userID int64) (Stats, error)
}

// OutcomePublisher feeds answer outcomes to downstream analytics. Publishing
// is fire-and-forget from the session's perspective: failures are logged,
// never surfaced to the user.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, event OutcomeEvent) error
}
