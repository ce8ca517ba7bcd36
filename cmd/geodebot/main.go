package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/geode-sdk/GeodeDiscord/internal/bot"
	"github.com/geode-sdk/GeodeDiscord/internal/config"
	"github.com/geode-sdk/GeodeDiscord/internal/game"
	"github.com/geode-sdk/GeodeDiscord/internal/quotes"
	"github.com/geode-sdk/GeodeDiscord/internal/roles"
	"github.com/geode-sdk/GeodeDiscord/internal/storage"
	"github.com/geode-sdk/GeodeDiscord/internal/users"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Configure slog with debug level
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handler := slog.NewTextHandler(os.Stderr, opts)
	slog.SetDefault(slog.New(handler))

	// Load configuration
	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return runBot(cfg)
}

func runBot(cfg *config.Config) error {
	slog.Info("starting geode bot", "environment", cfg.Environment)

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	// Initialize database
	db, err := storage.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(
		&quotes.Quote{},
		&game.Guess{},
		&game.GuessStats{},
		&roles.StickyRole{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize display-name cache
	cache := users.NewCache(users.Config{
		MaxEntries: cfg.UserCache.MaxEntries,
		TTL:        cfg.UserCache.TTL,
	})

	// Initialize the bot
	b, err := bot.New(cfg, db, cache, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// Create errgroup for concurrent component management
	g, ctx := errgroup.WithContext(ctx)

	// Component 1: Discord gateway
	g.Go(func() error {
		if err := b.Start(); err != nil {
			return err
		}
		slog.Info("bot started, waiting for shutdown signal")
		<-ctx.Done()
		if err := b.Stop(); err != nil {
			slog.Error("failed to close Discord session", "error", err)
		}
		return ctx.Err()
	})

	// Component 2: Cache sweeper
	sweeper := users.NewSweeper(cache, cfg.UserCache.SweepInterval, slog.Default())
	g.Go(func() error {
		return sweeper.Start(ctx)
	})

	// Wait for all components to complete
	if err := g.Wait(); err != nil {
		if err == context.Canceled {
			slog.Info("graceful shutdown completed")
			return nil
		}
		return fmt.Errorf("component error: %w", err)
	}

	slog.Info("application stopped")
	return nil
}
