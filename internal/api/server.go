// Package api bridges the chat transport to the training service: it
// receives Telegram webhook updates, routes them to service calls, and sends
// the resulting message plan back through the Bot API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/amirbiron/markdown-trainer/internal/domain"
	"github.com/amirbiron/markdown-trainer/internal/training"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// TrainingService is the slice of the training orchestrator the transport
// needs.
type TrainingService interface {
	Start(ctx context.Context, userID int64) ([]training.Message, error)
	ChooseTopic(ctx context.Context, userID int64, topic domain.Topic) ([]training.Message, error)
	SubmitAnswer(ctx context.Context, userID int64, answer string) ([]training.Message, error)
	Hint(ctx context.Context, userID int64) ([]training.Message, error)
	Skip(ctx context.Context, userID int64) ([]training.Message, error)
	Cancel(ctx context.Context, userID int64) ([]training.Message, error)
	InTraining(ctx context.Context, userID int64) (bool, error)
	Stats(ctx context.Context, userID int64) (training.Stats, error)
	History(ctx context.Context, userID int64, limit int) ([]training.Record, error)
}

// Server is the webhook HTTP server.
type Server struct {
	router  *chi.Mux
	service TrainingService
	sender  Sender
	logger  *slog.Logger
}

// NewServer creates the webhook server.
func NewServer(service TrainingService, sender Sender, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service: service,
		sender:  sender,
		logger:  logger,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Post("/webhook", s.handleWebhook)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
