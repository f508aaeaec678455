package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/wackyweasel/minishelf/internal/domain/port/driven"
)

// Sandbox is a throwaway store in a private temp directory with no
// snapshot store attached. Used to validate remote sync documents in
// isolation from the live store; Close discards everything.
type Sandbox struct {
	store *Store
	repo  *MiniatureRepo
	dir   string
}

// NewSandbox creates a fresh, schema-initialized sandbox.
func NewSandbox(ctx context.Context, logger *slog.Logger) (*Sandbox, error) {
	dir, err := os.MkdirTemp("", "minishelf-sandbox-*")
	if err != nil {
		return nil, fmt.Errorf("create sandbox dir: %w", err)
	}

	store, err := Open(ctx, dir, nil, logger)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	return &Sandbox{
		store: store,
		repo:  NewMiniatureRepo(store),
		dir:   dir,
	}, nil
}

// Records returns the sandbox's record store.
func (sb *Sandbox) Records() driven.MiniatureStore {
	return sb.repo
}

// Snapshot returns the sandbox database's binary serialization.
func (sb *Sandbox) Snapshot(ctx context.Context) ([]byte, error) {
	return sb.store.Snapshot(ctx)
}

// Close discards the sandbox and its working files.
func (sb *Sandbox) Close() error {
	err := sb.store.Close()
	if rmErr := os.RemoveAll(sb.dir); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}
