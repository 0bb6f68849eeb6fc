package training

import (
	"time"

	"github.com/amirbiron/markdown-trainer/internal/domain"
	"github.com/google/uuid"
)

// MaxChallenges caps the number of challenges per session.
const MaxChallenges = 5

// Status represents the session state. It only moves forward:
// active -> completed or active -> cancelled.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Session is one user's attempt at one topic's challenge sequence.
//
// Counter semantics: Completed counts consumed attempts (both outcomes),
// Correct counts passes, and Index advances only on a pass or an explicit
// skip. A wrong answer therefore inflates Completed while leaving the user
// on the same challenge, free to resubmit.
type Session struct {
	ID        string       `json:"id"`
	UserID    int64        `json:"user_id"`
	Topic     domain.Topic `json:"topic"`
	Sequence  []string     `json:"sequence"` // challenge IDs, catalog order
	Index     int          `json:"index"`
	Completed int          `json:"completed"`
	Correct   int          `json:"correct"`
	Status    Status       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewSession creates an active session over the given challenge sequence.
func NewSession(userID int64, topic domain.Topic, sequence []string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Topic:     topic,
		Sequence:  sequence,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Active reports whether the session still accepts events.
func (s *Session) Active() bool {
	return s.Status == StatusActive
}

// Terminal reports whether the session reached a final state.
func (s *Session) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusCancelled
}

// Length returns the number of challenges in the sequence.
func (s *Session) Length() int {
	return len(s.Sequence)
}

// CurrentChallengeID returns the challenge the user is on, or "" when the
// sequence is exhausted.
func (s *Session) CurrentChallengeID() string {
	if s.Index < 0 || s.Index >= len(s.Sequence) {
		return ""
	}
	return s.Sequence[s.Index]
}

// RecordAnswer consumes one attempt. The index advances only on a correct
// answer.
func (s *Session) RecordAnswer(correct bool) {
	s.Completed++
	if correct {
		s.Correct++
		s.Index++
	}
	s.UpdatedAt = time.Now()
}

// RecordSkip consumes one attempt and always advances the index.
func (s *Session) RecordSkip() {
	s.Completed++
	s.Index++
	s.UpdatedAt = time.Now()
}

// Exhausted reports whether every attempt in the sequence was consumed.
func (s *Session) Exhausted() bool {
	return s.Completed >= len(s.Sequence)
}

// Complete marks the session as completed.
func (s *Session) Complete() {
	s.Status = StatusCompleted
	s.UpdatedAt = time.Now()
}

// Cancel marks the session as cancelled.
func (s *Session) Cancel() {
	s.Status = StatusCancelled
	s.UpdatedAt = time.Now()
}

// SuccessRate returns the fraction of correct answers over the sequence
// length.
func (s *Session) SuccessRate() float64 {
	if len(s.Sequence) == 0 {
		return 0
	}
	return float64(s.Correct) / float64(len(s.Sequence))
}
