package driven

import "context"

// SnapshotStore persists the store's full binary snapshot under a fixed
// key in durable local storage. Load returns nil, nil when no snapshot
// has ever been saved; read failures are returned as errors.
type SnapshotStore interface {
	Save(ctx context.Context, blob []byte) error
	Load(ctx context.Context) ([]byte, error)
	Clear(ctx context.Context) error
}

// FlagStore holds the small string flags kept outside the snapshot:
// the linked sync URL and the local-modifications "dirty" marker.
type FlagStore interface {
	SyncURL(ctx context.Context) (string, error)
	SetSyncURL(ctx context.Context, url string) error
	ClearSyncURL(ctx context.Context) error
	Dirty(ctx context.Context) (bool, error)
	SetDirty(ctx context.Context, dirty bool) error
}
