package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wackyweasel/minishelf/internal/domain/model"
	"github.com/wackyweasel/minishelf/internal/domain/port/driven"
)

// ErrNotLinked is returned by Synchronize when no sync source is linked.
var ErrNotLinked = errors.New("no sync source linked")

// ErrUnsyncedChanges is returned when local modifications exist and the
// caller has not confirmed the destructive replacement.
var ErrUnsyncedChanges = errors.New("local changes have not been synchronized; confirm to overwrite them")

// LinkState is the synchronization engine's externally visible state.
type LinkState string

const (
	StateUnlinked LinkState = "unlinked"
	StateLinked   LinkState = "linked"
)

// SyncStatus describes the current link state, the linked URL, and
// whether unsynchronized local modifications exist.
type SyncStatus struct {
	State LinkState
	URL   string
	Dirty bool
}

// Sandbox is a throwaway, schema-initialized store instance used to
// validate a remote document in isolation. It is never persisted.
type Sandbox interface {
	Records() driven.MiniatureStore
	Snapshot(ctx context.Context) ([]byte, error)
	Close() error
}

// SandboxFactory creates a fresh Sandbox per validation pass.
type SandboxFactory func(ctx context.Context) (Sandbox, error)

// SyncService pulls a remote collection document and atomically replaces
// the local store. The live store is never touched until the entire
// document has validated end-to-end in a sandbox; a failed attempt
// leaves the prior record set fully intact.
type SyncService struct {
	fetcher driven.DocumentFetcher
	engine  driven.Engine
	flags   driven.FlagStore
	sandbox SandboxFactory
	feed    *ChangeFeed
	logger  *slog.Logger
}

// NewSyncService creates a SyncService with all required dependencies.
func NewSyncService(
	fetcher driven.DocumentFetcher,
	engine driven.Engine,
	flags driven.FlagStore,
	sandbox SandboxFactory,
	feed *ChangeFeed,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		fetcher: fetcher,
		engine:  engine,
		flags:   flags,
		sandbox: sandbox,
		feed:    feed,
		logger:  logger,
	}
}

// Status reports the current link state and dirty marker.
func (s *SyncService) Status(ctx context.Context) (SyncStatus, error) {
	url, err := s.flags.SyncURL(ctx)
	if err != nil {
		return SyncStatus{}, err
	}

	dirty, err := s.flags.Dirty(ctx)
	if err != nil {
		return SyncStatus{}, err
	}

	state := StateUnlinked
	if url != "" {
		state = StateLinked
	}

	return SyncStatus{State: state, URL: url, Dirty: dirty}, nil
}

// Link validates url by fetching its document and trial-inserting every
// entry into a throwaway store. On full success the URL is persisted and
// the engine is linked; any failure leaves the engine unlinked.
func (s *SyncService) Link(ctx context.Context, url string) error {
	if _, err := s.validate(ctx, url); err != nil {
		return err
	}

	if err := s.flags.SetSyncURL(ctx, url); err != nil {
		return fmt.Errorf("persist sync url: %w", err)
	}

	s.logger.Info("sync source linked", "url", url)
	return nil
}

// Unlink forgets the linked URL. Local records are untouched.
func (s *SyncService) Unlink(ctx context.Context) error {
	if err := s.flags.ClearSyncURL(ctx); err != nil {
		return fmt.Errorf("clear sync url: %w", err)
	}

	s.logger.Info("sync source unlinked")
	return nil
}

// Synchronize re-fetches the linked document, re-validates it in a fresh
// sandbox, and on full success replaces the live store wholesale with
// the sandbox's snapshot, persists it, and clears the dirty marker. The
// replacement is destructive and unconditional, so when local
// modifications exist force must be set.
func (s *SyncService) Synchronize(ctx context.Context, force bool) error {
	url, err := s.flags.SyncURL(ctx)
	if err != nil {
		return err
	}
	if url == "" {
		return ErrNotLinked
	}

	dirty, err := s.flags.Dirty(ctx)
	if err != nil {
		return err
	}
	if dirty && !force {
		return ErrUnsyncedChanges
	}

	blob, err := s.validate(ctx, url)
	if err != nil {
		return err
	}

	if err := s.engine.Replace(ctx, blob); err != nil {
		return fmt.Errorf("replace live store: %w", err)
	}

	if err := s.engine.Persist(ctx); err != nil {
		s.logger.Error("failed to persist synchronized snapshot", "error", err)
	}

	if err := s.flags.SetDirty(ctx, false); err != nil {
		s.logger.Error("failed to clear dirty flag", "error", err)
	}

	s.feed.Publish()
	s.logger.Info("synchronized from remote source", "url", url)
	return nil
}

// validate fetches the document at url and inserts every entry into a
// fresh sandbox. Any single entry failing aborts the whole validation.
// Returns the sandbox's binary snapshot.
func (s *SyncService) validate(ctx context.Context, url string) ([]byte, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch sync document: %w", err)
	}

	entries, err := model.DecodeSyncDocument(body)
	if err != nil {
		return nil, err
	}

	sandbox, err := s.sandbox(ctx)
	if err != nil {
		return nil, fmt.Errorf("create validation sandbox: %w", err)
	}
	defer func() {
		if err := sandbox.Close(); err != nil {
			s.logger.Error("failed to close validation sandbox", "error", err)
		}
	}()

	for i, entry := range entries {
		if _, err := sandbox.Records().Create(ctx, entry.Miniature()); err != nil {
			return nil, fmt.Errorf("entry %d failed validation: %w", i, err)
		}
	}

	blob, err := sandbox.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("serialize validated document: %w", err)
	}
	return blob, nil
}
