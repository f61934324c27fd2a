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

	"github.com/dastin1501/PPL-Referee/brackets"
	"github.com/dastin1501/PPL-Referee/config"
	"github.com/dastin1501/PPL-Referee/db"
	"github.com/dastin1501/PPL-Referee/handlers"
	"github.com/dastin1501/PPL-Referee/repositories"
	api "github.com/dastin1501/PPL-Referee/routes"
	"github.com/dastin1501/PPL-Referee/schedule"
	"github.com/dastin1501/PPL-Referee/services"
	"github.com/dastin1501/PPL-Referee/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Int("default_court_count", cfg.Engine.CourtCount),
		slog.Bool("archive_enabled", cfg.ArchiveEnabled()),
	)

	dbConn, err := db.Connect(cfg.DatabaseURL, db.Options{StartupTimeout: 5 * time.Second})
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	var archiver storage.ScheduleArchiver
	if cfg.ArchiveEnabled() {
		archiver, err = storage.NewCloudflareR2Archiver(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize schedule archive", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("schedule archive initialized", slog.String("bucket", cfg.R2BucketName))
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	scheduleRepo := repositories.NewPostgresScheduleRepository(dbConn)

	tx := services.NewSQLTransactor(dbConn, logger)
	bracketService := services.NewBracketService(
		tx,
		tournamentRepo,
		categoryRepo,
		registrationRepo,
		groupRepo,
		wsHub,
		logger,
		cfg.Engine.BracketSize,
	)
	scheduleService := services.NewScheduleService(
		tx,
		bracketService,
		scheduleRepo,
		archiver,
		wsHub,
		logger,
		services.ScheduleOptions{
			Defaults: schedule.Defaults{
				CourtCount: cfg.Engine.CourtCount,
				VenueName:  cfg.Engine.VenueName,
			},
			SlotMinutes: cfg.Engine.SlotMinutes,
		},
	)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecret: cfg.JWTSecretKey, AllowedOrigins: cfg.CORSAllowedOrigins},
		handlers.NewBracketHandler(bracketService),
		handlers.NewScheduleHandler(scheduleService),
		handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
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
		logger.Info("server stopped gracefully")
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
	logger.Info("application exited")
}
