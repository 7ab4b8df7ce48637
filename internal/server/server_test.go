package server

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tunequiz/tunequiz/internal/database"
	"github.com/tunequiz/tunequiz/internal/game"
	"github.com/tunequiz/tunequiz/internal/migrations"
	"github.com/tunequiz/tunequiz/internal/score"
)

const testAdminPassword = "changeme"

type fakeGame struct {
	registry *game.Registry

	mu         sync.Mutex
	terminated []string
	err        error
}

func (f *fakeGame) Terminate(guildID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.terminated = append(f.terminated, guildID)
	return nil
}

func (f *fakeGame) Registry() *game.Registry { return f.registry }

func (f *fakeGame) terminatedGuilds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.terminated...)
}

type testEnv struct {
	router *chi.Mux
	scores *score.Ledger
	game   *fakeGame
	broker *Broker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	env := &testEnv{
		scores: score.NewLedger(db),
		game:   &fakeGame{registry: game.NewRegistry()},
		broker: NewBroker(),
	}

	r := chi.NewRouter()
	addRoutes(r, Options{
		Logger:            slog.New(slog.DiscardHandler),
		DB:                db,
		Scores:            env.scores,
		Game:              env.game,
		Broker:            env.broker,
		AdminPasswordHash: string(hash),
	})
	env.router = r
	return env
}
