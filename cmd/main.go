package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sakshamaitools/clash-point-forge/brackets"
	"github.com/sakshamaitools/clash-point-forge/config"
	"github.com/sakshamaitools/clash-point-forge/db"
	"github.com/sakshamaitools/clash-point-forge/events"
	"github.com/sakshamaitools/clash-point-forge/handlers"
	"github.com/sakshamaitools/clash-point-forge/middleware"
	api "github.com/sakshamaitools/clash-point-forge/routes"
	"github.com/sakshamaitools/clash-point-forge/services"
	"github.com/sakshamaitools/clash-point-forge/storage"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Загрузка конфигурации
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

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
	if err := db.Migrate(dbConn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Инициализация WebSocket Hub и шины событий
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	bus := events.NewBus(logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error("failed to close event bus", slog.Any("error", err))
		}
	}()
	if err := events.NewRelay(bus, wsHub, logger).Run(ctx); err != nil {
		logger.Error("failed to start websocket relay", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация сервисов
	deps := services.NewDeps(dbConn, logger)
	deps.Events = bus
	deps.Metrics = services.NewMetrics(registry)
	deps.Tracer = otel.Tracer("clash-point-forge")

	tournamentService := services.NewTournamentService(deps)
	participantService := services.NewParticipantService(deps)
	bracketService := services.NewBracketService(deps)
	matchService := services.NewMatchService(deps)
	standingsService := services.NewStandingsService(deps)
	logger.Info("Services initialized")

	// Архив итоговых таблиц в Cloudflare R2, если он настроен
	r2cfg := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
		Endpoint:        cfg.R2.Endpoint,
	}
	if r2cfg.Configured() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2cfg, logger)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		if err := events.NewArchiver(bus, standingsService, uploader, logger).Run(ctx); err != nil {
			logger.Error("failed to start standings archiver", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("standings archiver started", slog.String("bucket", r2cfg.BucketName))
	} else {
		logger.Info("R2 is not configured, standings archive disabled")
	}

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament:  handlers.NewTournamentHandler(tournamentService),
		Participant: handlers.NewParticipantHandler(participantService),
		Bracket:     handlers.NewBracketHandler(bracketService, standingsService),
		Match:       handlers.NewMatchHandler(matchService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.AllowedOrigins, logger),
	}, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimiter:    rateLimiter(cfg.RateLimit),
		Gatherer:       registry,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
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
			stop()
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
		} else {
			logger.Info("server shutdown complete")
		}
	}
	// Останавливаем hub и подписчиков шины
	stop()
	logger.Info("application exited")
}

func rateLimiter(cfg config.RateLimitConfig) *middleware.IPRateLimiter {
	if cfg.RPS == 0 {
		return nil
	}
	return middleware.NewIPRateLimiter(rate.Limit(cfg.RPS), cfg.Burst)
}
