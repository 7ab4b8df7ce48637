package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tunequiz/tunequiz/internal/config"
	"github.com/tunequiz/tunequiz/internal/database"
	"github.com/tunequiz/tunequiz/internal/game"
	"github.com/tunequiz/tunequiz/internal/itunes"
	"github.com/tunequiz/tunequiz/internal/migrations"
	"github.com/tunequiz/tunequiz/internal/powerup"
	"github.com/tunequiz/tunequiz/internal/score"
	"github.com/tunequiz/tunequiz/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Game engine ---
	// The chat/voice transports are attached by the platform shell once its
	// gateway connection is up; until then only the HTTP surface is live.
	broker := server.NewBroker()
	scores := score.NewLedger(db)
	engine := game.NewEngine(
		logger,
		cfg.Game,
		game.NewRegistry(),
		powerup.NewLedger(),
		scores,
		itunes.New(logger),
		broker,
	)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, server.Options{
		Logger:            logger,
		DB:                db,
		Scores:            scores,
		Game:              engine,
		Broker:            broker,
		AdminPasswordHash: cfg.AdminPasswordHash,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
