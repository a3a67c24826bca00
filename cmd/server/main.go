package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/examtrail/examtrail-backend/internal/config"
	"github.com/examtrail/examtrail-backend/internal/database"
	"github.com/examtrail/examtrail-backend/internal/handler"
	"github.com/examtrail/examtrail-backend/internal/logger"
	"github.com/examtrail/examtrail-backend/internal/middleware"
	"github.com/examtrail/examtrail-backend/internal/repository"
	"github.com/examtrail/examtrail-backend/internal/router"
	"github.com/examtrail/examtrail-backend/internal/service"
	"github.com/examtrail/examtrail-backend/internal/validator"
	"github.com/examtrail/examtrail-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExamTrail Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	assignmentRepo := repository.NewAssignmentRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	presentationService := service.NewPresentationService(assignmentRepo, questionRepo, attemptRepo, rdb)
	telemetryService := service.NewTelemetryService(rdb, log)
	proctorService := service.NewProctorService(eventRepo, attemptRepo, rdb)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		StudentPortal: handler.NewStudentPortalHandler(presentationService, assignmentRepo),
		Telemetry:     handler.NewTelemetryHandler(telemetryService),
		Proctor:       handler.NewProctorHandler(proctorService, log),
		Audit:         handler.NewAuditHandler(presentationService),
		WS:            handler.NewWSHandler(telemetryService, log, cfg.AllowedOrigins),
		System:        handler.NewSystemHandler(rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	telemetryWorker := worker.NewTelemetryWorker(eventRepo, rdb, log)
	attemptWorker := worker.NewAttemptWorker(attemptRepo, rdb, log)

	go telemetryWorker.Start(workerCtx)
	go attemptWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	verifier := middleware.NewTokenVerifier(cfg.JWTSecret)
	r := router.SetupRouter(verifier, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
