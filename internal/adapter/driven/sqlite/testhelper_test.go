package sqlite

import (
	"context"
	"log/slog"
	"testing"
)

// setupTestStore opens a throwaway store in a temp dir with no snapshot
// store attached. Each test gets its own working copy for isolation.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), t.TempDir(), nil, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

// memSnapshotStore is an in-memory SnapshotStore for exercising the
// load/save/clear paths without a real durable area.
type memSnapshotStore struct {
	blob []byte
}

func (m *memSnapshotStore) Save(_ context.Context, blob []byte) error {
	m.blob = append([]byte(nil), blob...)
	return nil
}

func (m *memSnapshotStore) Load(_ context.Context) ([]byte, error) {
	if m.blob == nil {
		return nil, nil
	}
	return append([]byte(nil), m.blob...), nil
}

func (m *memSnapshotStore) Clear(_ context.Context) error {
	m.blob = nil
	return nil
}
