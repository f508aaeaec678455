package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/wackyweasel/minishelf/internal/adapter/driven/bolt"
	"github.com/wackyweasel/minishelf/internal/adapter/driven/remote"
	"github.com/wackyweasel/minishelf/internal/adapter/driven/sqlite"
	"github.com/wackyweasel/minishelf/internal/application"
	"github.com/wackyweasel/minishelf/internal/config"
)

// env holds the fully wired application for a single CLI invocation:
// the durable bolt file, the working sqlite store rebuilt from its
// snapshot, and the services on top.
type env struct {
	cfg    *config.Config
	bolt   *bolt.DB
	store  *sqlite.Store
	flags  *bolt.FlagRepo
	feed   *application.ChangeFeed
	lib    *application.LibraryService
	logger *slog.Logger
}

// openEnv loads configuration, opens the durable storage file, and
// rebuilds the working store from the last saved snapshot.
func openEnv(ctx context.Context, logger *slog.Logger) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return openEnvWith(ctx, cfg, logger)
}

// openEnvWith wires the application on an already loaded configuration.
func openEnvWith(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*env, error) {
	db, err := bolt.Open(cfg.StoragePath())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	snapshots := bolt.NewSnapshotRepo(db)
	flags := bolt.NewFlagRepo(db)

	store, err := sqlite.Open(ctx, cfg.WorkDir(), snapshots, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	feed := application.NewChangeFeed()
	records := sqlite.NewMiniatureRepo(store)
	lib := application.NewLibraryService(records, store, flags, feed, logger)

	return &env{
		cfg:    cfg,
		bolt:   db,
		store:  store,
		flags:  flags,
		feed:   feed,
		lib:    lib,
		logger: logger,
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing working store", "error", err)
	}
	if err := e.bolt.Close(); err != nil {
		e.logger.Error("error closing storage file", "error", err)
	}
}

// syncService builds the synchronization engine with an HTTP fetcher
// bound to the configured timeout.
func (e *env) syncService() *application.SyncService {
	fetcher := remote.NewFetcher(e.cfg.SyncTimeout)
	factory := func(ctx context.Context) (application.Sandbox, error) {
		return sqlite.NewSandbox(ctx, e.logger)
	}
	return application.NewSyncService(fetcher, e.store, e.flags, factory, e.feed, e.logger)
}

// cliLogger keeps interactive commands quiet: only warnings and errors
// reach stderr.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}
