package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

// handleSpectate upgrades to a websocket and streams the guild's game
// events as JSON messages until the client disconnects.
func handleSpectate(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := r.URL.Query().Get("guild")
		if guildID == "" {
			writeError(w, http.StatusBadRequest, "guild query parameter is required")
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 4*time.Hour)
		defer cancel()

		events := broker.Subscribe(guildID)
		defer broker.Unsubscribe(guildID, events)

		// Reads are discarded but keep close/ping handling alive.
		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				if _, _, err := conn.Read(ctx); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case data := <-events:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("spectator write failed", "guild_id", guildID, "error", err)
					return
				}
			case <-readDone:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}
