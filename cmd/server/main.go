package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/edusync/edusync-portal/internal/config"
	"github.com/edusync/edusync-portal/internal/database"
	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/handler"
	"github.com/edusync/edusync-portal/internal/logger"
	"github.com/edusync/edusync-portal/internal/metrics"
	"github.com/edusync/edusync-portal/internal/quiz"
	"github.com/edusync/edusync-portal/internal/repository"
	"github.com/edusync/edusync-portal/internal/router"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/edusync/edusync-portal/internal/session"
	"github.com/edusync/edusync-portal/internal/validator"
	"github.com/edusync/edusync-portal/internal/worker"
	"github.com/rs/zerolog"
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
		Str("edusync_api", cfg.EduSyncBaseURL).
		Msg("Starting EduSync Portal")

	// ─── Initialize Validator & Metrics ───────────────────────────────
	validator.Setup()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

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

	// ─── EduSync API Client ────────────────────────────────────────────
	client := edusync.NewClient(cfg.EduSyncBaseURL, cfg.EduSyncTimeout, log)
	upstream := service.NewUpstream(client)

	// ─── Initialize Repositories ───────────────────────────────────────
	draftRepo := repository.NewDraftRepository(rdb, cfg.DraftTTL)
	attemptRepo := repository.NewAttemptRepository(rdb, cfg.AttemptTTL)
	submissionRepo := repository.NewSubmissionRepository(pool)
	feedRepo := repository.NewResultFeedRepository(rdb)
	sessionStore := session.NewRedisStore(rdb, cfg.JWTExpiry)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, upstream, sessionStore, log)
	courseService := service.NewCourseService(upstream, log)
	authoringService := service.NewAuthoringService(upstream, draftRepo, quiz.UUIDGenerator{}, log)
	attemptService := service.NewAttemptService(upstream, attemptRepo, feedRepo, log)
	resultService := service.NewResultService(upstream, submissionRepo, feedRepo)
	fileService := service.NewFileService(upstream)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, log),
		Course:  handler.NewCourseHandler(courseService, cfg.MaxUploadBytes, log),
		Draft:   handler.NewDraftHandler(authoringService, log),
		Attempt: handler.NewAttemptHandler(attemptService, log),
		Result:  handler.NewResultHandler(resultService, log),
		File:    handler.NewFileHandler(fileService, cfg.MaxUploadBytes, log),
		WS:      handler.NewWSHandler(attemptService, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(rdb, pool, cfg.EduSyncBaseURL, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	ledgerWorker := worker.NewLedgerWorker(submissionRepo, rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		ledgerWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	// 2. Stop the ledger worker once its last batch is flushed.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
