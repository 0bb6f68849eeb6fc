package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirbiron/markdown-trainer/internal/training"
	"github.com/felixgeelhaar/fortify/retry"
)

// jsonPublisher is the seam between the outcome publisher and the broker
// connection, so retry behavior is testable without RabbitMQ.
type jsonPublisher interface {
	PublishJSON(ctx context.Context, queue string, data any) error
}

// OutcomePublisher publishes training outcome events with retry. Transient
// broker hiccups (a reconnect in flight) are absorbed by the retrier; a
// publish that still fails is the caller's to log.
type OutcomePublisher struct {
	conn    jsonPublisher
	retrier retry.Retry[struct{}]
	logger  *slog.Logger
}

// NewOutcomePublisher creates a publisher over the given connection.
func NewOutcomePublisher(conn jsonPublisher, logger *slog.Logger) *OutcomePublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutcomePublisher{
		conn:   conn,
		logger: logger,
		retrier: retry.New[struct{}](retry.Config{
			MaxAttempts:   3,
			InitialDelay:  200 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
		}),
	}
}

// PublishOutcome sends one outcome event to the analytics queue.
func (p *OutcomePublisher) PublishOutcome(ctx context.Context, event training.OutcomeEvent) error {
	_, err := p.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.conn.PublishJSON(ctx, OutcomeQueueName, event)
	})
	if err != nil {
		return fmt.Errorf("publish outcome event: %w", err)
	}

	p.logger.Debug("published outcome event",
		"event_id", event.ID,
		"user_id", event.UserID,
		"topic", event.Topic,
		"correct", event.Correct,
	)
	return nil
}
