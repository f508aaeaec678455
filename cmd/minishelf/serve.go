package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	httphandler "github.com/wackyweasel/minishelf/internal/adapter/driving/http"
	"github.com/wackyweasel/minishelf/internal/adapter/driving/web"
	"github.com/wackyweasel/minishelf/internal/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gallery and JSON API server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// 1. Load configuration and route logs to a rotating file when configured.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := serverLogger(cfg.LogFile)
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"data_dir", cfg.DataDir,
		"sync_timeout", cfg.SyncTimeout,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open storage and wire the application.
	e, err := openEnvWith(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	// 4. Wire services and handlers.
	syncSvc := e.syncService()

	apiHandler := httphandler.NewHandler(e.lib, syncSvc, logger)
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := web.NewHandler(e.feed, logger)
	web.RegisterRoutes(mux, webHandler)

	handler := httphandler.ApplyMiddleware(mux, logger)

	// No WriteTimeout: /events holds its connection open indefinitely.
	srv := &http.Server{
		Addr:              e.cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", e.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("minishelf started", "listen_addr", e.cfg.ListenAddr, "version", version)

	// 5. Wait for shutdown signal.
	<-ctx.Done()
	logger.Info("shutting down")

	// 6. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// serverLogger builds the server's slog logger. With a log file
// configured, output rotates there; otherwise it goes to stderr.
func serverLogger(logFile string) *slog.Logger {
	var w io.Writer = os.Stderr
	if logFile != "" {
		w = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	return slog.New(slog.NewTextHandler(w, nil))
}
