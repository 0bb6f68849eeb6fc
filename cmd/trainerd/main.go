package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/amirbiron/markdown-trainer/internal/api"
	"github.com/amirbiron/markdown-trainer/internal/challenge"
	"github.com/amirbiron/markdown-trainer/internal/challenge/catalog"
	"github.com/amirbiron/markdown-trainer/internal/config"
	"github.com/amirbiron/markdown-trainer/internal/queue"
	"github.com/amirbiron/markdown-trainer/internal/storage/postgres"
	"github.com/amirbiron/markdown-trainer/internal/storage/sqlite"
	"github.com/amirbiron/markdown-trainer/internal/training"
)

func main() {
	if err := run(); err != nil {
		slog.Error("trainerd error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithFile()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := setupLogging(cfg.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Challenge bank: embedded catalog unless an override path is set.
	bank := challenge.NewRegistry(challenge.NewLoader(catalogFS(cfg)))
	if err := bank.Load(); err != nil {
		return fmt.Errorf("load challenge catalog: %w", err)
	}
	logger.Info("challenge bank loaded", "topics", len(bank.Topics()))

	modes, store, closeStore, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Outcome analytics are optional; the bot runs without a broker.
	var analytics training.OutcomePublisher
	if cfg.RabbitMQURL != "" {
		conn, err := queue.NewConnection(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer conn.Close()
		analytics = queue.NewOutcomePublisher(conn, logger)
		logger.Info("outcome publisher enabled")
	}

	service := training.NewService(bank, modes, store, analytics, logger)

	sender := api.NewTelegramClient(api.TelegramConfig{Token: cfg.TelegramToken})
	server := api.NewServer(service, sender, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received signal, shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	logger.Info("trainerd listening", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("trainerd stopped")
	return nil
}

// openStorage selects the backend from the database URL: postgres for a
// postgres:// URL, SQLite for a plain file path.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (training.ModeStore, training.SessionStore, func(), error) {
	if strings.HasPrefix(cfg.DatabaseURL, "postgres://") || strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info("storage ready", "backend", "postgres")
		return postgres.NewModeStore(pool), postgres.NewTrainingStore(pool), pool.Close, nil
	}

	db, err := sqlite.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	logger.Info("storage ready", "backend", "sqlite", "path", cfg.DatabaseURL)
	return sqlite.NewModeStore(db), sqlite.NewTrainingStore(db), func() { db.Close() }, nil
}

func catalogFS(cfg *config.Config) fs.FS {
	if cfg.ChallengesPath != "" {
		return os.DirFS(cfg.ChallengesPath)
	}
	return catalog.FS
}

func setupLogging(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
