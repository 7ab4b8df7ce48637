package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "TuneQuiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Operational API for the TuneQuiz music trivia bot.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/guilds/{guildID}/scores
	getScores, _ := r.NewOperationContext(http.MethodGet, "/api/guilds/{guildID}/scores")
	getScores.SetSummary("Session scoreboard")
	getScores.SetDescription("Returns the current match's scoreboard, highest points first.")
	getScores.AddRespStructure(ScoreboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getScores)

	// GET /api/guilds/{guildID}/session
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/guilds/{guildID}/session")
	getSession.SetSummary("Session status")
	getSession.SetDescription("Returns the guild's live match status.")
	getSession.AddRespStructure(SessionStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// GET /api/guilds/{guildID}/genre
	getGenre, _ := r.NewOperationContext(http.MethodGet, "/api/guilds/{guildID}/genre")
	getGenre.SetSummary("Genre preference")
	getGenre.SetDescription("Returns the guild's preferred genre for track selection.")
	getGenre.AddRespStructure(GenreResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getGenre)

	// GET /api/guilds/{guildID}/users/{userID}/alltime
	getAllTime, _ := r.NewOperationContext(http.MethodGet, "/api/guilds/{guildID}/users/{userID}/alltime")
	getAllTime.SetSummary("All-time points")
	getAllTime.SetDescription("Returns a user's accumulated points across all matches in the guild.")
	getAllTime.AddRespStructure(AllTimeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getAllTime)

	// GET /api/guilds/{guildID}/users/{userID}/stats
	getStats, _ := r.NewOperationContext(http.MethodGet, "/api/guilds/{guildID}/users/{userID}/stats")
	getStats.SetSummary("Play statistics")
	getStats.SetDescription("Returns a user's rounds and games played and won in the guild.")
	getStats.AddRespStructure(PlayStatsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getStats)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with the admin password. Returns a bearer token.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminLoginResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/guilds/{guildID}/terminate
	postTerminate, _ := r.NewOperationContext(http.MethodPost, "/api/admin/guilds/{guildID}/terminate")
	postTerminate.SetSummary("Terminate match")
	postTerminate.SetDescription("Stops the guild's running match and releases its resources. Idempotent. Requires Bearer token.")
	postTerminate.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	postTerminate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postTerminate)

	// PUT /api/admin/guilds/{guildID}/genre
	putGenre, _ := r.NewOperationContext(http.MethodPut, "/api/admin/guilds/{guildID}/genre")
	putGenre.SetSummary("Set genre preference")
	putGenre.SetDescription("Sets the guild's preferred genre for future matches. Requires Bearer token.")
	putGenre.AddReqStructure(GenreUpdateRequest{})
	putGenre.AddRespStructure(GenreResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putGenre.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(putGenre)

	// GET /ws/spectate
	getSpectate, _ := r.NewOperationContext(http.MethodGet, "/ws/spectate")
	getSpectate.SetSummary("Spectator feed")
	getSpectate.SetDescription("Upgrades to a WebSocket that streams the guild's game events. Pass the guild id as a query parameter.")
	getSpectate.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getSpectate)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
