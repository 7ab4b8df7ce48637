package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/tunequiz/tunequiz/internal/game"
)

func TestHandleSpectate(t *testing.T) {
	broker := NewBroker()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/spectate", handleSpectate(slog.New(slog.DiscardHandler), broker))

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/ws/spectate?guild=g1"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	// Give the handler a moment to register the subscription.
	deadline := time.Now().Add(time.Second)
	for {
		broker.mu.RLock()
		n := len(broker.subs["g1"])
		broker.mu.RUnlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("spectator never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	want := game.Event{Type: game.EventRoundWon, Round: 2, UserID: "u7", Points: 3}
	broker.Publish("g1", want)

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got game.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != want {
		t.Errorf("event = %+v, want %+v", got, want)
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}

func TestHandleSpectateRequiresGuild(t *testing.T) {
	broker := NewBroker()
	h := handleSpectate(slog.New(slog.DiscardHandler), broker)

	req := httptest.NewRequest(http.MethodGet, "/ws/spectate", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
