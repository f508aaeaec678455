package application

import (
	"context"
	"log/slog"
	"testing"

	"github.com/wackyweasel/minishelf/internal/adapter/driven/sqlite"
	"github.com/wackyweasel/minishelf/internal/domain/port/driven"
)

// memFlags is an in-memory FlagStore.
type memFlags struct {
	url   string
	dirty bool
}

func (f *memFlags) SyncURL(context.Context) (string, error)     { return f.url, nil }
func (f *memFlags) SetSyncURL(_ context.Context, u string) error { f.url = u; return nil }
func (f *memFlags) ClearSyncURL(context.Context) error          { f.url = ""; return nil }
func (f *memFlags) Dirty(context.Context) (bool, error)         { return f.dirty, nil }
func (f *memFlags) SetDirty(_ context.Context, d bool) error    { f.dirty = d; return nil }

// memSnapshots is an in-memory SnapshotStore.
type memSnapshots struct {
	blob []byte
}

func (m *memSnapshots) Save(_ context.Context, blob []byte) error {
	m.blob = append([]byte(nil), blob...)
	return nil
}

func (m *memSnapshots) Load(context.Context) ([]byte, error) {
	if m.blob == nil {
		return nil, nil
	}
	return append([]byte(nil), m.blob...), nil
}

func (m *memSnapshots) Clear(context.Context) error {
	m.blob = nil
	return nil
}

// fakeFetcher serves a canned document or error.
type fakeFetcher struct {
	body []byte
	err  error
}

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

// testEnv wires a real sqlite store with in-memory flag and snapshot
// stores, matching the production composition.
type testEnv struct {
	store   *sqlite.Store
	records driven.MiniatureStore
	flags   *memFlags
	snaps   *memSnapshots
	feed    *ChangeFeed
	lib     *LibraryService
	logger  *slog.Logger
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	snaps := &memSnapshots{}

	store, err := sqlite.Open(context.Background(), t.TempDir(), snaps, logger)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	flags := &memFlags{}
	feed := NewChangeFeed()
	records := sqlite.NewMiniatureRepo(store)

	return &testEnv{
		store:   store,
		records: records,
		flags:   flags,
		snaps:   snaps,
		feed:    feed,
		lib:     NewLibraryService(records, store, flags, feed, logger),
		logger:  logger,
	}
}

func (e *testEnv) syncService(fetcher driven.DocumentFetcher) *SyncService {
	factory := func(ctx context.Context) (Sandbox, error) {
		return sqlite.NewSandbox(ctx, e.logger)
	}
	return NewSyncService(fetcher, e.store, e.flags, factory, e.feed, e.logger)
}
