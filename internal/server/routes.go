package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, opts Options) {
	tokens := newTokenStore(adminTokenTTL)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("TuneQuiz API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(opts.Logger, opts.DB))
	r.Get("/ws/spectate", handleSpectate(opts.Logger, opts.Broker))

	// Read-only guild queries.
	r.Route("/api/guilds/{guildID}", func(r chi.Router) {
		r.Get("/scores", handleSessionScores(opts.Scores))
		r.Get("/session", handleSessionStatus(opts.Game))
		r.Get("/genre", handleGenre(opts.Game))
		r.Get("/users/{userID}/alltime", handleAllTimePoints(opts.Scores))
		r.Get("/users/{userID}/stats", handlePlayStats(opts.Scores))
	})

	r.Post("/api/admin/login", handleAdminLogin(opts.AdminPasswordHash, tokens))

	r.Route("/api/admin/guilds/{guildID}", func(r chi.Router) {
		r.Use(adminAuthMiddleware(tokens))
		r.Post("/terminate", handleTerminate(opts.Logger, opts.Game))
		r.Put("/genre", handleSetGenre(opts.Game))
	})
}
