package training

import (
	"time"

	"github.com/amirbiron/markdown-trainer/internal/domain"
)

// Record is one stored training session row, as read back for history views.
type Record struct {
	ID          string
	UserID      int64
	Topic       domain.Topic
	Completed   int
	Correct     int
	Status      Status
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Stats aggregates a user's finished sessions.
type Stats struct {
	TotalSessions  int
	TotalCompleted int
	TotalCorrect   int
}

// Accuracy returns the overall correct-answer fraction, 0 when nothing was
// attempted.
func (s Stats) Accuracy() float64 {
	if s.TotalCompleted == 0 {
		return 0
	}
	return float64(s.TotalCorrect) / float64(s.TotalCompleted)
}

// OutcomeEvent is the analytics payload published after every consumed
// answer attempt.
type OutcomeEvent struct {
	ID          string       `json:"id"`
	UserID      int64        `json:"user_id"`
	SessionID   string       `json:"session_id"`
	Topic       domain.Topic `json:"topic"`
	ChallengeID string       `json:"challenge_id"`
	Correct     bool         `json:"correct"`
	At          time.Time    `json:"at"`
}
