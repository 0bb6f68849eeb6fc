package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/amirbiron/markdown-trainer/internal/domain"
	"github.com/amirbiron/markdown-trainer/internal/training"
)

// Telegram update payload, reduced to the fields the engine consumes.
type update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *incomingMsg   `json:"message,omitempty"`
	CallbackQuery *callbackQuery `json:"callback_query,omitempty"`
}

type incomingMsg struct {
	MessageID int64  `json:"message_id"`
	From      *peer  `json:"from,omitempty"`
	Chat      peer   `json:"chat"`
	Text      string `json:"text"`
}

type callbackQuery struct {
	ID      string       `json:"id"`
	From    peer         `json:"from"`
	Message *incomingMsg `json:"message,omitempty"`
	Data    string       `json:"data"`
}

type peer struct {
	ID int64 `json:"id"`
}

const defaultReply = "לא הבנתי את הבקשה. 🤔\n\nשלח /train כדי להתחיל אימון ממוקד."

// handleWebhook accepts one Telegram update. The transport delivers updates
// serially per chat, so each is handled to completion before replying 200.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var upd update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.logger.Warn("malformed webhook payload", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch {
	case upd.Message != nil && upd.Message.From != nil:
		s.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		s.handleCallback(ctx, upd.CallbackQuery)
	}

	// Always 200: Telegram redelivers on non-2xx, and a failed transition
	// should not be replayed against mutated session state.
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMessage(ctx context.Context, msg *incomingMsg) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	var (
		messages []training.Message
		err      error
	)
	switch {
	case text == "/train":
		messages, err = s.service.Start(ctx, userID)
	case text == "/cancel_training":
		messages, err = s.service.Cancel(ctx, userID)
	case text == "/training_stats":
		messages, err = s.statsMessages(ctx, userID)
	case strings.HasPrefix(text, "/"):
		messages = []training.Message{{Text: defaultReply}}
	default:
		messages, err = s.answerOrFallback(ctx, userID, msg.Text)
	}

	s.deliver(ctx, chatID, userID, messages, err)
}

// answerOrFallback routes free text to the training session when the user's
// mode says training owns it, and to the default reply otherwise.
func (s *Server) answerOrFallback(ctx context.Context, userID int64, text string) ([]training.Message, error) {
	inTraining, err := s.service.InTraining(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !inTraining {
		return []training.Message{{Text: defaultReply}}, nil
	}
	return s.service.SubmitAnswer(ctx, userID, text)
}

func (s *Server) handleCallback(ctx context.Context, query *callbackQuery) {
	if err := s.sender.AnswerCallback(ctx, query.ID); err != nil {
		s.logger.Warn("answer callback", "error", err)
	}
	if query.Message == nil {
		return
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID

	var (
		messages []training.Message
		err      error
	)
	switch {
	case strings.HasPrefix(query.Data, training.CallbackTopic):
		topic := domain.Topic(strings.TrimPrefix(query.Data, training.CallbackTopic))
		messages, err = s.service.ChooseTopic(ctx, userID, topic)
	case query.Data == training.CallbackHint:
		messages, err = s.service.Hint(ctx, userID)
	case query.Data == training.CallbackSkip:
		messages, err = s.service.Skip(ctx, userID)
	case query.Data == training.CallbackExit:
		messages, err = s.service.Cancel(ctx, userID)
	default:
		return
	}

	s.deliver(ctx, chatID, userID, messages, err)
}

// statsMessages formats the user's aggregate stats and recent history.
func (s *Server) statsMessages(ctx context.Context, userID int64) ([]training.Message, error) {
	stats, err := s.service.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats.TotalSessions == 0 {
		return []training.Message{{Text: "עוד לא סיימת אף אימון.\n\nשלח /train כדי להתחיל!"}}, nil
	}

	history, err := s.service.History(ctx, userID, 5)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *סטטיסטיקת אימונים*\n\n")
	fmt.Fprintf(&b, "אימונים שהושלמו: %d\n", stats.TotalSessions)
	fmt.Fprintf(&b, "תשובות נכונות: %d מתוך %d (%d%%)\n",
		stats.TotalCorrect, stats.TotalCompleted, int(stats.Accuracy()*100))

	if len(history) > 0 {
		b.WriteString("\n*אימונים אחרונים:*\n")
		for _, rec := range history {
			fmt.Fprintf(&b, "• %s — %d/%d (%s)\n", rec.Topic, rec.Correct, rec.Completed, rec.Status)
		}
	}
	return []training.Message{{Text: b.String()}}, nil
}

// deliver sends the message plan in order, translating a service error into
// a generic apology.
func (s *Server) deliver(ctx context.Context, chatID, userID int64, messages []training.Message, err error) {
	if err != nil {
		s.logger.Error("handle update", "error", err, "user_id", userID)
		messages = []training.Message{{Text: "😕 אופס! משהו השתבש. נסה שוב מאוחר יותר."}}
	}

	for _, msg := range messages {
		if sendErr := s.sender.SendMessage(ctx, chatID, msg); sendErr != nil {
			s.logger.Error("send message", "error", sendErr, "chat_id", chatID)
			return
		}
	}
}
