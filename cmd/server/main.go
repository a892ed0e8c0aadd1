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

	"technews/internal/config"
	"technews/internal/db"
	"technews/internal/handlers"
	"technews/internal/middleware"
	"technews/internal/repository"
	"technews/internal/router"
	"technews/internal/services"
	"technews/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.OTELServiceName, cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Warn("database close failed", "error", err)
		}
	}()

	repo := repository.New(gdb)
	validate := services.NewValidator()

	users, err := services.NewUserService(repo, validate, cfg.BcryptCost, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize user service: %w", err)
	}
	posts := services.NewPostService(repo, validate, logger)
	comments := services.NewCommentService(repo, validate, logger)
	votes := services.NewVoteService(repo, logger)

	h := &handlers.Handlers{
		Users:    handlers.NewUserHandler(cfg, logger, users),
		Posts:    handlers.NewPostHandler(logger, posts, votes),
		Comments: handlers.NewCommentHandler(logger, comments),
		Pages:    handlers.NewPageHandler(logger, posts, votes),
		Health:   handlers.NewHealthHandler(logger, gdb),
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	loginLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.LoginRateLimit), cfg.LoginRateBurst, logger)
	loginLimiter.StartCleanup(workerCtx, 10*time.Minute)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := router.New(cfg, logger, h, loginLimiter)
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, cfg.OTELServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exiting")
	return nil
}
