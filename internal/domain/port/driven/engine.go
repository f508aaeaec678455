package driven

import "context"

// Engine exposes whole-database operations on the live relational store:
// serializing it, replacing it wholesale from a validated snapshot, and
// persisting it to the snapshot store.
type Engine interface {
	Snapshot(ctx context.Context) ([]byte, error)
	Replace(ctx context.Context, blob []byte) error
	Persist(ctx context.Context) error
}
