package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/RichardoC/parentpal/internal/api"
	"github.com/RichardoC/parentpal/internal/auth"
	"github.com/RichardoC/parentpal/internal/config"
	"github.com/RichardoC/parentpal/internal/db"
	"github.com/RichardoC/parentpal/internal/llm"
	"github.com/RichardoC/parentpal/internal/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireSessionSecret(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize database",
			zap.Error(err),
			zap.String("db_path", cfg.DatabasePath))
		return err
	}
	defer func() { err = multierr.Append(err, database.Close()) }()

	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize model", zap.Error(err), zap.String("provider", cfg.LLMProvider))
		return err
	}

	sessions := auth.NewManager(cfg.SessionSecret, cfg.SessionCookie, cfg.SessionTTL)
	handler := api.NewHandler(database, llm.New(model, cfg.GenerationTimeout), logger)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(handler, sessions, logger, cfg.StaticDir),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("provider", cfg.LLMProvider),
			zap.String("model", cfg.Model))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutting down due to signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
