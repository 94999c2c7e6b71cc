package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vglabs/grapple-league/handlers"
)

// SetupRoutes mounts the full HTTP surface on the router.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	tournamentHandler *handlers.TournamentHandler,
	rankingHandler *handlers.RankingHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Route("/brackets", func(r chi.Router) {
			r.Post("/", tournamentHandler.CreateBracketHandler)
			r.Route("/{bracketID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetBracketHandler)
				r.Delete("/", tournamentHandler.DeleteBracketHandler)
				r.Post("/generate", tournamentHandler.GenerateBracketHandler)
				r.Get("/rounds", tournamentHandler.BracketRoundsHandler)
				r.Get("/matches", tournamentHandler.BracketMatchesHandler)
				r.Get("/upcoming", tournamentHandler.UpcomingMatchesHandler)
			})
		})

		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/brackets", tournamentHandler.ListEventBracketsHandler)
			r.Post("/matches", tournamentHandler.CreateManualMatchHandler)
			r.Delete("/matches/clear-all", tournamentHandler.ClearManualMatchesHandler)
			r.Get("/format-recommendations", tournamentHandler.FormatRecommendationsHandler)
			r.Get("/pairing-stats", tournamentHandler.PairingStatsHandler)
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Put("/result", tournamentHandler.UpdateMatchResultHandler)
			r.Delete("/result", tournamentHandler.UndoMatchResultHandler)
			r.Delete("/", tournamentHandler.DeleteMatchHandler)
			r.Get("/elo-preview", tournamentHandler.EloPreviewHandler)
			r.Get("/tale-of-the-tape", tournamentHandler.TaleOfTheTapeHandler)
		})
	})

	router.Route("/rankings", func(r chi.Router) {
		r.Post("/recalculate-elo", rankingHandler.RecalculateHandler)
		r.Get("/head-to-head", rankingHandler.HeadToHeadHandler)
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeWs)
}
