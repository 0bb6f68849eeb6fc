package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirbiron/markdown-trainer/internal/challenge"
	"github.com/amirbiron/markdown-trainer/internal/domain"
	"github.com/google/uuid"
)

// Service orchestrates training sessions: it bridges inbound chat events to
// state-machine transitions, keeps the persisted session and the user-mode
// slot in sync after every transition, and feeds answer outcomes to
// analytics. Events arrive serially per user, so a plain read-modify-write
// per event is enough.
type Service struct {
	machine   *Machine
	bank      *challenge.Registry
	modes     ModeStore
	store     SessionStore
	analytics OutcomePublisher // may be nil
	logger    *slog.Logger
}

// NewService creates the session orchestrator.
func NewService(bank *challenge.Registry, modes ModeStore, store SessionStore, analytics OutcomePublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		machine:   NewMachine(bank),
		bank:      bank,
		modes:     modes,
		store:     store,
		analytics: analytics,
		logger:    logger,
	}
}

// Start answers the /train command: the topic menu, or a conflict message
// when a session is already running.
func (s *Service) Start(ctx context.Context, userID int64) ([]Message, error) {
	mode, err := s.modes.Mode(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user mode: %w", err)
	}
	if mode.InTraining() {
		return []Message{text("⚠️ אתה כבר באמצע אימון!\n\nסיים את האימון הנוכחי או שלח /cancel_training לביטול.")}, nil
	}

	var rows [][]Button
	for _, topic := range s.bank.Topics() {
		rows = append(rows, []Button{{
			Label: s.bank.DisplayName(topic),
			Data:  CallbackTopic + string(topic),
		}})
	}
	menu := Message{
		Text:     "🎯 *מצב אימון ממוקד*\n\nבחר נושא שתרצה לתרגל:\nתקבל עד 5 אתגרים ברמות קושי הולכות וגדלות עם משוב מיידי.",
		Keyboard: rows,
	}
	return []Message{menu}, nil
}

// ChooseTopic starts a session for the picked topic. At most one session may
// be active per user; a second topic pick is rejected with a conflict
// message and the existing session is left untouched.
func (s *Service) ChooseTopic(ctx context.Context, userID int64, topic domain.Topic) ([]Message, error) {
	mode, err := s.modes.Mode(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user mode: %w", err)
	}
	if mode.InTraining() {
		return []Message{text("⚠️ אתה כבר באמצע אימון!\n\nסיים את האימון הנוכחי או שלח /cancel_training לביטול.")}, nil
	}

	sess, messages, err := s.machine.Start(userID, topic)
	if errors.Is(err, domain.ErrTopicUnknown) {
		s.logger.Warn("topic has no challenges", "topic", topic, "user_id", userID)
		return []Message{text("😕 אין כרגע אתגרים בנושא הזה. נסה נושא אחר עם /train")}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	if err := s.store.CreateRecord(ctx, sess); err != nil {
		return nil, fmt.Errorf("create training record: %w", err)
	}
	if err := s.modes.SetMode(ctx, userID, TrainingMode(sess)); err != nil {
		return nil, fmt.Errorf("set user mode: %w", err)
	}

	s.logger.Info("training session started",
		"session_id", sess.ID, "user_id", userID, "topic", topic, "challenges", sess.Length())
	return messages, nil
}

// SubmitAnswer treats an inbound free-text message as the answer to the
// current challenge. Returns domain.ErrSessionNotFound when the user is not
// in training mode, so the caller can fall through to ordinary chat handling.
func (s *Service) SubmitAnswer(ctx context.Context, userID int64, answer string) ([]Message, error) {
	sess, err := s.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	outcome, messages, err := s.machine.Submit(sess, answer)
	if errors.Is(err, domain.ErrChallengeNotFound) {
		return s.abortStale(ctx, sess)
	}
	if err != nil {
		return nil, fmt.Errorf("submit answer: %w", err)
	}

	s.recordOutcome(ctx, sess, outcome)

	if err := s.persist(ctx, userID, sess); err != nil {
		return nil, err
	}
	return messages, nil
}

// Hint replays the current challenge's hint and example. Side-effect-free.
func (s *Service) Hint(ctx context.Context, userID int64) ([]Message, error) {
	sess, err := s.activeSession(ctx, userID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return s.notInTraining(), nil
	}
	if err != nil {
		return nil, err
	}

	messages, err := s.machine.Hint(sess)
	if errors.Is(err, domain.ErrChallengeNotFound) {
		return s.abortStale(ctx, sess)
	}
	if err != nil {
		return nil, fmt.Errorf("hint: %w", err)
	}
	return messages, nil
}

// Skip consumes the current challenge without an answer.
func (s *Service) Skip(ctx context.Context, userID int64) ([]Message, error) {
	sess, err := s.activeSession(ctx, userID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return s.notInTraining(), nil
	}
	if err != nil {
		return nil, err
	}

	messages, err := s.machine.Skip(sess)
	if err != nil {
		return nil, fmt.Errorf("skip: %w", err)
	}

	if err := s.persist(ctx, userID, sess); err != nil {
		return nil, err
	}
	return messages, nil
}

// Cancel answers /cancel_training and the exit button.
func (s *Service) Cancel(ctx context.Context, userID int64) ([]Message, error) {
	sess, err := s.activeSession(ctx, userID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return []Message{text("אתה לא באימון כרגע.\n\nכדי להתחיל אימון, שלח /train")}, nil
	}
	if err != nil {
		return nil, err
	}

	messages := s.machine.Exit(sess)
	if err := s.persist(ctx, userID, sess); err != nil {
		return nil, err
	}
	return messages, nil
}

// InTraining reports whether the user's next free-text message belongs to a
// training session.
func (s *Service) InTraining(ctx context.Context, userID int64) (bool, error) {
	mode, err := s.modes.Mode(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get user mode: %w", err)
	}
	return mode.InTraining(), nil
}

// History returns the user's most recent training sessions.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]Record, error) {
	return s.store.History(ctx, userID, limit)
}

// Stats returns the user's aggregate training stats.
func (s *Service) Stats(ctx context.Context, userID int64) (Stats, error) {
	return s.store.Stats(ctx, userID)
}

// activeSession loads the user's training session from the mode slot.
// domain.ErrSessionNotFound: not in training mode. domain.ErrSessionNotActive
// never escapes the mode slot because terminal sessions clear it, but a stale
// button press can still race a just-finalized session; callers translate
// ErrSessionNotFound into a neutral reply.
func (s *Service) activeSession(ctx context.Context, userID int64) (*Session, error) {
	mode, err := s.modes.Mode(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user mode: %w", err)
	}
	if !mode.InTraining() {
		return nil, domain.ErrSessionNotFound
	}
	return mode.Session, nil
}

// persist writes the session after a transition: updated mode and counters
// while active, finalization plus a cleared mode on a terminal state. A
// finalization failure is surfaced rather than leaving the stored session
// ambiguously active.
func (s *Service) persist(ctx context.Context, userID int64, sess *Session) error {
	if err := s.store.UpdateProgress(ctx, sess.ID, sess.Completed, sess.Correct); err != nil {
		return fmt.Errorf("update training record: %w", err)
	}

	if sess.Active() {
		if err := s.modes.SetMode(ctx, userID, TrainingMode(sess)); err != nil {
			return fmt.Errorf("set user mode: %w", err)
		}
		return nil
	}

	if err := s.store.FinalizeRecord(ctx, sess.ID, sess.Status); err != nil {
		return fmt.Errorf("finalize training record: %w", err)
	}
	if err := s.modes.ClearMode(ctx, userID); err != nil {
		return fmt.Errorf("clear user mode: %w", err)
	}
	s.logger.Info("training session finished",
		"session_id", sess.ID, "user_id", userID, "status", sess.Status,
		"correct", sess.Correct, "completed", sess.Completed)
	return nil
}

// recordOutcome feeds one consumed attempt to topic analytics. Both sinks are
// fire-and-forget: a failure is logged and the session carries on.
func (s *Service) recordOutcome(ctx context.Context, sess *Session, outcome Outcome) {
	if err := s.store.RecordTopicOutcome(ctx, sess.UserID, sess.Topic, outcome.Correct); err != nil {
		s.logger.Error("record topic outcome", "error", err, "user_id", sess.UserID, "topic", sess.Topic)
	}

	if s.analytics == nil {
		return
	}
	event := OutcomeEvent{
		ID:          uuid.New().String(),
		UserID:      sess.UserID,
		SessionID:   sess.ID,
		Topic:       sess.Topic,
		ChallengeID: outcome.ChallengeID,
		Correct:     outcome.Correct,
		At:          time.Now(),
	}
	if err := s.analytics.PublishOutcome(ctx, event); err != nil {
		s.logger.Error("publish outcome event", "error", err, "event_id", event.ID)
	}
}

// abortStale handles a session pointing at catalog content that no longer
// exists: apologize, finalize as cancelled, clear the mode.
func (s *Service) abortStale(ctx context.Context, sess *Session) ([]Message, error) {
	s.logger.Warn("stale session references missing challenge",
		"session_id", sess.ID, "topic", sess.Topic, "index", sess.Index)

	sess.Cancel()
	if err := s.store.FinalizeRecord(ctx, sess.ID, sess.Status); err != nil {
		return nil, fmt.Errorf("finalize stale session: %w", err)
	}
	if err := s.modes.ClearMode(ctx, sess.UserID); err != nil {
		return nil, fmt.Errorf("clear user mode: %w", err)
	}
	return []Message{text("😕 משהו השתבש באימון והוא הופסק.\n\nאפשר להתחיל אימון חדש עם /train")}, nil
}

func (s *Service) notInTraining() []Message {
	return []Message{text("אין אימון פעיל כרגע. שלח /train כדי להתחיל.")}
}
