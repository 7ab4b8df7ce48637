package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tunequiz/tunequiz/internal/game"
)

func handleTerminate(logger *slog.Logger, svc GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")

		err := svc.Terminate(guildID)
		switch {
		case errors.Is(err, game.ErrNoSession):
			// Nothing to terminate; the desired state already holds.
			w.WriteHeader(http.StatusNoContent)
		case err != nil:
			logger.Error("terminate failed", "guild_id", guildID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		default:
			logger.Info("match terminated via admin api", "guild_id", guildID)
			w.WriteHeader(http.StatusNoContent)
		}
	}
}
