package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/league", h.handleGetLeague)
		r.Get("/ranking", h.handleGetRanking)

		r.Get("/nations", h.handleGetNations)
		r.Post("/nations", h.handleCreateNation)

		r.Get("/players", h.handleGetPlayers)
		r.Post("/players", h.handleCreatePlayer)

		r.Get("/gamblers", h.handleGetGamblers)
		r.Post("/gamblers", h.handleCreateGambler)
		r.Delete("/gamblers/{nickname}", h.handleDeleteGambler)

		r.Get("/tournaments", h.handleGetTournaments)
		r.Post("/tournaments", h.handleCreateTournament)

		r.Route("/tournaments/{name}/{year}", func(r chi.Router) {
			r.Get("/", h.handleGetTournament)
			r.Delete("/", h.handleDeleteTournament)
			r.Post("/close", h.handleCloseTournament)
			r.Post("/open", h.handleOpenTournament)

			r.Get("/players", h.handleGetTournamentPlayers)
			r.Put("/players", h.handleSetTournamentPlayer)

			r.Get("/matches", h.handleGetMatches)
			r.Put("/matches/{matchID}/players", h.handleAssignMatchPlayers)
			r.Put("/matches/{matchID}/result", h.handleSetResult)

			r.Get("/bets/{nickname}", h.handleGetBets)
			r.Put("/bets/{nickname}/{matchID}", h.handleSetBet)

			r.Get("/scores", h.handleGetScores)
			r.Get("/previous-year-scores", h.handleGetPreviousYearScores)
		})
	})

	return r
}
