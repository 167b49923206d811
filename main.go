package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gesa962/Campus-Connect/internal/config"
	"github.com/gesa962/Campus-Connect/internal/handler"
	"github.com/gesa962/Campus-Connect/internal/repository/sqlite"
	"github.com/gesa962/Campus-Connect/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, logOpts)
	if cfg.LogFormat == "json" {
		logHandler = slog.NewJSONHandler(os.Stdout, logOpts)
	}
	slog.SetDefault(slog.New(logHandler))

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	authService := service.NewAuthService(db.Users(), cfg.JWTSecret, cfg.BcryptCost, cfg.TokenTTL)
	userService := service.NewUserService(db.Users(), db.Events(), cfg.BcryptCost)
	eventService := service.NewEventService(db.Events(), db.Users())
	queryService := service.NewEventQueryService(db.Events())

	// Throttle login/registration: one attempt per 2 seconds sustained,
	// bursts of 10.
	limiter := service.NewTokenBucket(0.5, 10)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, userService, eventService, queryService, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
