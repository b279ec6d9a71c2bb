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

	"github.com/valkyria/equestrian-club/config"
	"github.com/valkyria/equestrian-club/db"
	"github.com/valkyria/equestrian-club/handlers"
	"github.com/valkyria/equestrian-club/live"
	"github.com/valkyria/equestrian-club/middleware"
	"github.com/valkyria/equestrian-club/repositories"
	api "github.com/valkyria/equestrian-club/routes"
	"github.com/valkyria/equestrian-club/services"
	"github.com/valkyria/equestrian-club/storage"
)

const sessionPurgeInterval = 1 * time.Hour // как часто вычищаются истёкшие сессии

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
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

	// Хранилище фотографий (Cloudflare R2) — опционально.
	var uploader storage.FileUploader
	if cfg.PhotoStorageConfigured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("photo storage is not configured, horse photo uploads disabled")
	}

	// Публичная лента событий
	feedHub := live.NewHub()
	go feedHub.Run()
	logger.Info("live feed hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	horseRepo := repositories.NewPostgresHorseRepository(dbConn)
	competitionRepo := repositories.NewPostgresCompetitionRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	sessionService := services.NewSessionService(sessionRepo, cfg.JWTSecretKey, time.Duration(cfg.SessionTTLHours)*time.Hour)
	userService := services.NewUserService(userRepo)
	competitionService := services.NewCompetitionService(competitionRepo, feedHub)
	horseService := services.NewHorseService(horseRepo, uploader)
	resultService := services.NewResultService(resultRepo, feedHub)
	dashboardService := services.NewDashboardService(userRepo, horseRepo, competitionRepo, resultRepo, logger)
	logger.Info("services initialized")

	// Периодическая чистка истёкших сессий; останавливается вместе с сервером.
	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	go sessionService.PurgeLoop(purgeCtx, sessionPurgeInterval)

	// Инициализация обработчиков HTTP
	authenticator := middleware.NewAuthenticator(sessionService)
	authHandler := handlers.NewAuthHandler(authService, sessionService)
	userHandler := handlers.NewUserHandler(userService)
	competitionHandler := handlers.NewCompetitionHandler(competitionService)
	horseHandler := handlers.NewHorseHandler(horseService)
	resultHandler := handlers.NewResultHandler(resultService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	webSocketHandler := handlers.NewWebSocketHandler(feedHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		userHandler,
		competitionHandler,
		horseHandler,
		resultHandler,
		dashboardHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
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

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
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
