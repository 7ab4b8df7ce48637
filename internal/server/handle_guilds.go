package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tunequiz/tunequiz/internal/score"
)

// ScoreEntry is one row of the session scoreboard.
type ScoreEntry struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
}

// ScoreboardResponse is the body of GET /api/guilds/{guildID}/scores.
type ScoreboardResponse struct {
	GuildID string       `json:"guildId"`
	Scores  []ScoreEntry `json:"scores"`
}

func handleSessionScores(scores *score.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")

		entries := scores.SessionScores(guildID)
		resp := ScoreboardResponse{GuildID: guildID, Scores: make([]ScoreEntry, 0, len(entries))}
		for _, e := range entries {
			resp.Scores = append(resp.Scores, ScoreEntry{UserID: e.UserID, Points: e.Points})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// AllTimeResponse is the body of GET /api/guilds/{guildID}/users/{userID}/alltime.
type AllTimeResponse struct {
	GuildID string `json:"guildId"`
	UserID  string `json:"userId"`
	Points  int    `json:"points"`
}

func handleAllTimePoints(scores *score.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		userID := chi.URLParam(r, "userID")

		points, err := scores.AllTimePoints(r.Context(), guildID, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, AllTimeResponse{GuildID: guildID, UserID: userID, Points: points})
	}
}

// PlayStatsResponse is the body of GET /api/guilds/{guildID}/users/{userID}/stats.
type PlayStatsResponse struct {
	GuildID      string `json:"guildId"`
	UserID       string `json:"userId"`
	RoundsPlayed int    `json:"roundsPlayed"`
	RoundsWon    int    `json:"roundsWon"`
	GamesPlayed  int    `json:"gamesPlayed"`
	GamesWon     int    `json:"gamesWon"`
}

func handlePlayStats(scores *score.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		userID := chi.URLParam(r, "userID")

		stats, err := scores.PlayStats(r.Context(), guildID, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, PlayStatsResponse{
			GuildID:      guildID,
			UserID:       userID,
			RoundsPlayed: stats.RoundsPlayed,
			RoundsWon:    stats.RoundsWon,
			GamesPlayed:  stats.GamesPlayed,
			GamesWon:     stats.GamesWon,
		})
	}
}

// SessionStatusResponse is the body of GET /api/guilds/{guildID}/session.
type SessionStatusResponse struct {
	GuildID     string `json:"guildId"`
	InitiatorID string `json:"initiatorId"`
	Difficulty  string `json:"difficulty"`
	Genre       string `json:"genre"`
	Round       int    `json:"round"`
	Active      bool   `json:"active"`
	Terminated  bool   `json:"terminated"`
}

func handleSessionStatus(svc GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")

		st, ok := svc.Registry().Status(guildID)
		if !ok {
			writeError(w, http.StatusNotFound, "no active session")
			return
		}
		writeJSON(w, http.StatusOK, SessionStatusResponse{
			GuildID:     st.GuildID,
			InitiatorID: st.InitiatorID,
			Difficulty:  string(st.Difficulty),
			Genre:       svc.Registry().Genre(guildID),
			Round:       st.Round,
			Active:      st.Active,
			Terminated:  st.Terminated,
		})
	}
}

// GenreResponse is the body of the genre read and update endpoints.
type GenreResponse struct {
	GuildID string `json:"guildId"`
	Genre   string `json:"genre"`
}

func handleGenre(svc GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")
		writeJSON(w, http.StatusOK, GenreResponse{GuildID: guildID, Genre: svc.Registry().Genre(guildID)})
	}
}

// GenreUpdateRequest is the body of PUT /api/admin/guilds/{guildID}/genre.
type GenreUpdateRequest struct {
	Genre string `json:"genre"`
}

func handleSetGenre(svc GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := chi.URLParam(r, "guildID")

		var req GenreUpdateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		genre := strings.TrimSpace(strings.ToLower(req.Genre))
		if genre == "" {
			writeError(w, http.StatusBadRequest, "genre is required")
			return
		}
		svc.Registry().SetGenre(guildID, genre)
		writeJSON(w, http.StatusOK, GenreResponse{GuildID: guildID, Genre: genre})
	}
}
