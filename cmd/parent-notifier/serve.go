package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hydazz/parent-notifier/internal/analytics"
	"github.com/hydazz/parent-notifier/internal/diagnostic"
	"github.com/hydazz/parent-notifier/internal/exporter"
	"github.com/hydazz/parent-notifier/internal/feed"
	"github.com/hydazz/parent-notifier/internal/firebase"
	"github.com/hydazz/parent-notifier/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the feed API and metrics (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}

	db := firebase.New(cfg.Firebase)

	exp, err := exporter.New(cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	presenter := feed.NewPresenter(db, feed.WithRecorder(exp))
	exp.Attach(presenter)

	checker := diagnostic.NewChecker(analytics.New(cfg.Analytics), db)

	if !cfg.IsDebugEnabled() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := server.NewHandler(presenter, checker, promhttp.Handler(), cfg.Server.MetricsPath)

	srv := &http.Server{
		Addr:    cfg.Server.ListenAddress,
		Handler: handler.Router(),
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Starting parent notifier", "address", cfg.Server.ListenAddress, "database", cfg.Firebase.DatabaseURL)
		slog.Info("Metrics available", "path", cfg.Server.MetricsPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Initial load, like opening the feed screen
	go func() {
		state := presenter.Refresh(context.Background())
		slog.Info("Initial feed loaded", "events", len(state.Events), "error", state.ErrorMessage)
	}()

	<-stop
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server exited")
	return nil
}
