package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/dank-times-bot/internal/bot"
	"github.com/xaenox/dank-times-bot/internal/chat"
	"github.com/xaenox/dank-times-bot/internal/metrics"
	"github.com/xaenox/dank-times-bot/internal/scheduler"
	"github.com/xaenox/dank-times-bot/internal/storage"
	"github.com/xaenox/dank-times-bot/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Restore the chat collection
	registry := chat.NewRegistry(logger)
	snapshots, err := store.LoadChats()
	if err != nil {
		logger.Fatal("Failed to load chats", zap.Error(err))
	}
	if err := registry.Restore(snapshots); err != nil {
		logger.Fatal("Failed to restore chats", zap.Error(err))
	}
	logger.Info("Restored chats", zap.Int("count", len(snapshots)))

	// Initialize bot and scheduler; the bot is the scheduler's notifier
	b, err := bot.New(cfg.Telegram.Token, registry, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}
	sched := scheduler.New(b, logger)
	b.SetScheduler(sched)

	// Random dank times are never persisted: regenerate and schedule
	for _, c := range registry.All() {
		c.GenerateRandomDankTimes()
		if c.Settings().Running() {
			sched.ScheduleAllOfChat(c)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Daily rollover at process-local midnight
	go sched.RunDailyUpdates(ctx, registry)

	// Periodic persistence
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Persistence.RateMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := store.SaveChats(registry.Snapshots()); err != nil {
					logger.Error("Failed to persist chats", zap.Error(err))
					continue
				}
				metrics.SnapshotsSaved.Inc()
				logger.Info("Persisted chats to storage")
			}
		}
	}()

	// Metrics endpoint
	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Error("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	// Stop the update stream on shutdown signals
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		b.Stop()
	}()

	// Start the bot
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}

	// Persist one final time before exiting
	if err := store.SaveChats(registry.Snapshots()); err != nil {
		logger.Error("Failed to persist chats on shutdown", zap.Error(err))
	} else {
		logger.Info("Persisted chats before exiting")
	}
}
