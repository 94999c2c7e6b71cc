package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/vglabs/grapple-league/config"
	"github.com/vglabs/grapple-league/db"
	"github.com/vglabs/grapple-league/handlers"
	"github.com/vglabs/grapple-league/live"
	"github.com/vglabs/grapple-league/repositories"
	api "github.com/vglabs/grapple-league/routes"
	"github.com/vglabs/grapple-league/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	hub := live.NewHub(logger)
	go hub.Run()

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	entryRepo := repositories.NewPostgresEntryRepository(dbConn)
	weightClassRepo := repositories.NewPostgresWeightClassRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)

	txRunner := services.NewSQLTxRunner(dbConn)

	ratingService := services.NewRatingService(playerRepo, matchRepo, weightClassRepo, txRunner, logger)
	tournamentService := services.NewTournamentService(services.TournamentServiceDeps{
		Brackets: bracketRepo,
		Rounds:   roundRepo,
		Matches:  matchRepo,
		Entries:  entryRepo,
		Players:  playerRepo,
		Events:   eventRepo,
		Tx:       txRunner,
		Ratings:  ratingService,
		Notifier: hub,
		Logger:   logger,
	})
	logger.Info("services initialized")

	tournamentHandler := handlers.NewTournamentHandler(tournamentService, ratingService)
	rankingHandler := handlers.NewRankingHandler(ratingService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, cfg.AllowedOrigins, tournamentHandler, rankingHandler, webSocketHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
