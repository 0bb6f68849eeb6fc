package training

import (
	"fmt"

	"github.com/amirbiron/markdown-trainer/internal/challenge"
	"github.com/amirbiron/markdown-trainer/internal/domain"
	"github.com/amirbiron/markdown-trainer/internal/validator"
)

// Machine owns the training session transitions. Every transition is a pure
// function of the current session and the inbound event: it mutates the
// session in memory and returns the outbound message plan, leaving all
// persistence and sending to the caller.
type Machine struct {
	bank *challenge.Registry
}

// NewMachine creates a state machine over the given challenge bank.
func NewMachine(bank *challenge.Registry) *Machine {
	return &Machine{bank: bank}
}

// Outcome describes one consumed answer attempt, for analytics.
type Outcome struct {
	ChallengeID string
	Correct     bool
}

// Start builds a new session for the topic: the first MaxChallenges
// challenges in catalog order, which already encodes the easy-to-hard
// progression. Returns domain.ErrTopicUnknown when the bank has nothing for
// the topic.
func (m *Machine) Start(userID int64, topic domain.Topic) (*Session, []Message, error) {
	challenges := m.bank.ByTopic(topic)
	if len(challenges) == 0 {
		return nil, nil, domain.ErrTopicUnknown
	}

	n := len(challenges)
	if n > MaxChallenges {
		n = MaxChallenges
	}
	sequence := make([]string, n)
	for i := 0; i < n; i++ {
		sequence[i] = challenges[i].ID
	}

	sess := NewSession(userID, topic, sequence)

	opening := fmt.Sprintf(
		"🎯 *אימון: %s*\n\nמתחילים! %d אתגרים בדרגת קושי עולה.\nשלח את התשובה שלך כהודעת טקסט.",
		m.bank.DisplayName(topic), len(sequence))

	prompt, err := m.challengePrompt(sess)
	if err != nil {
		return nil, nil, err
	}
	return sess, []Message{text(opening), prompt}, nil
}

// Submit runs the validator against the current challenge and applies the
// answer transition. The caller decides what to do with the returned outcome
// (topic analytics) and with the mutated session (persist or finalize).
func (m *Machine) Submit(sess *Session, answer string) (Outcome, []Message, error) {
	if !sess.Active() {
		return Outcome{}, nil, domain.ErrSessionNotActive
	}

	ch, err := m.currentChallenge(sess)
	if err != nil {
		return Outcome{}, nil, err
	}

	result := validator.Validate(ch, answer)
	sess.RecordAnswer(result.Pass)
	outcome := Outcome{ChallengeID: ch.ID, Correct: result.Pass}

	var messages []Message
	if result.Pass {
		messages = append(messages, text(fmt.Sprintf(
			"✅ %s\n\n📊 התקדמות: %d/%d", ch.CorrectFeedback, sess.Completed, sess.Length())))
	} else {
		body := fmt.Sprintf("❌ %s", ch.WrongFeedback)
		if result.Reason != "" {
			body += fmt.Sprintf("\n\n🔍 %s", result.Reason)
		}
		body += fmt.Sprintf("\n\n📊 התקדמות: %d/%d\nאפשר לנסות שוב, או:", sess.Completed, sess.Length())
		messages = append(messages, Message{Text: body, Keyboard: controlsKeyboard()})
	}

	more, err := m.advance(sess, result.Pass)
	if err != nil {
		return Outcome{}, nil, err
	}
	return outcome, append(messages, more...), nil
}

// Hint emits the current challenge's hint and example. It never mutates the
// session, so repeated requests are idempotent.
func (m *Machine) Hint(sess *Session) ([]Message, error) {
	if !sess.Active() {
		return nil, domain.ErrSessionNotActive
	}

	ch, err := m.currentChallenge(sess)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("💡 *רמז:*\n%s", ch.Hint)
	if ch.Example != "" {
		body += fmt.Sprintf("\n\n📝 דוגמת פתרון:\n%s", ch.Example)
	}
	return []Message{{Text: body, Keyboard: controlsKeyboard()}}, nil
}

// Skip consumes the current challenge without an answer and always advances.
func (m *Machine) Skip(sess *Session) ([]Message, error) {
	if !sess.Active() {
		return nil, domain.ErrSessionNotActive
	}

	sess.RecordSkip()
	messages := []Message{text(fmt.Sprintf(
		"⏭️ דילגת על האתגר.\n\n📊 התקדמות: %d/%d", sess.Completed, sess.Length()))}

	more, err := m.advance(sess, true)
	if err != nil {
		return nil, err
	}
	return append(messages, more...), nil
}

// Exit cancels the session.
func (m *Machine) Exit(sess *Session) []Message {
	sess.Cancel()
	return []Message{text("✅ האימון בוטל בהצלחה.\n\nאפשר להתחיל אימון חדש עם /train")}
}

// advance applies the completion check after counters were updated and, when
// the session stays active and the pointer moved, emits the next prompt.
func (m *Machine) advance(sess *Session, moved bool) ([]Message, error) {
	if sess.Exhausted() {
		sess.Complete()
		return []Message{m.summary(sess)}, nil
	}
	if !moved {
		return nil, nil
	}
	prompt, err := m.challengePrompt(sess)
	if err != nil {
		return nil, err
	}
	return []Message{prompt}, nil
}

// summary builds the tiered completion message.
func (m *Machine) summary(sess *Session) Message {
	rate := sess.SuccessRate()

	var headline string
	switch {
	case rate >= 0.8:
		headline = "🏆 מדהים! שלטת בנושא הזה."
	case rate >= 0.6:
		headline = "🎉 כל הכבוד! רוב התשובות נכונות."
	case rate >= 0.4:
		headline = "👍 עבודה טובה! עוד קצת תרגול וזה שלך."
	default:
		headline = "💪 המשך להתאמן! כל ניסיון מקרב אותך."
	}

	body := fmt.Sprintf(
		"%s\n\n🏁 *סיכום האימון: %s*\nענית נכון על %d מתוך %d אתגרים (%d%%).\n\nאפשר להתחיל אימון חדש עם /train",
		headline, m.bank.DisplayName(sess.Topic), sess.Correct, sess.Length(), int(rate*100))
	return text(body)
}

func (m *Machine) challengePrompt(sess *Session) (Message, error) {
	ch, err := m.currentChallenge(sess)
	if err != nil {
		return Message{}, err
	}

	body := fmt.Sprintf("🎯 *אתגר %d מתוך %d* (רמה: %s)\n\n%s",
		sess.Index+1, sess.Length(), ch.Difficulty.Label(), ch.Prompt)
	return Message{Text: body, Keyboard: controlsKeyboard()}, nil
}

// currentChallenge resolves the session pointer against the bank. A stale
// session referencing content that no longer exists yields
// domain.ErrChallengeNotFound so the caller can abort gracefully.
func (m *Machine) currentChallenge(sess *Session) (*domain.Challenge, error) {
	id := sess.CurrentChallengeID()
	if id == "" {
		return nil, domain.ErrChallengeNotFound
	}
	ch, ok := m.bank.ByID(id)
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	return ch, nil
}
