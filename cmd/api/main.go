package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nikhilbhutani/videotranscriber/internal/api"
	"github.com/nikhilbhutani/videotranscriber/internal/config"
	"github.com/nikhilbhutani/videotranscriber/internal/fetch"
	"github.com/nikhilbhutani/videotranscriber/internal/metrics"
	"github.com/nikhilbhutani/videotranscriber/internal/retry"
	"github.com/nikhilbhutani/videotranscriber/internal/stt"
	"github.com/nikhilbhutani/videotranscriber/internal/transcriber"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	// The engine is created once and shared by every request.
	slog.Info("loading transcription engine", "backend", cfg.STT.Backend, "serialized", cfg.STT.Serialize)
	engine, err := stt.New(cfg.STT)
	if err != nil {
		slog.Error("failed to create transcription engine", "error", err)
		os.Exit(1)
	}
	slog.Info("transcription engine ready", "engine", engine.Name())

	fetcher, err := fetch.New(cfg.Fetch)
	if err != nil {
		slog.Error("failed to create audio fetcher", "error", err)
		os.Exit(1)
	}

	m := metrics.NewMetrics()
	rc := retry.NewController(retry.Policy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
	}).WithObserver(m)

	svc := transcriber.NewService(fetcher, engine, rc, transcriber.Options{
		TempDir:  cfg.Fetch.TempDir,
		Language: cfg.STT.Language,
		Prompt:   cfg.STT.Prompt,
		Recorder: m,
	})

	router := api.NewRouter(cfg, svc, m, map[string]string{
		"engine":  engine.Name(),
		"fetcher": fetcher.Name(),
	})
	handler := router.Setup()
	defer router.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"fetcher", fetcher.Name(),
			"retry_max_attempts", cfg.Retry.MaxAttempts,
			"retry_initial_delay", cfg.Retry.InitialDelay,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
