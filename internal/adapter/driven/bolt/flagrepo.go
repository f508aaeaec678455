package bolt

import (
	"context"
	"fmt"

	bbolt "go.etcd.io/bbolt"

	"github.com/wackyweasel/minishelf/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.FlagStore = (*FlagRepo)(nil)

// FlagRepo stores the sync URL and dirty marker as plain strings in a
// bucket separate from the snapshot.
type FlagRepo struct {
	db *DB
}

// NewFlagRepo creates a FlagRepo backed by the given DB.
func NewFlagRepo(db *DB) *FlagRepo {
	return &FlagRepo{db: db}
}

// SyncURL returns the linked sync URL, or "" when unlinked.
func (r *FlagRepo) SyncURL(_ context.Context) (string, error) {
	var url string
	err := r.db.db.View(func(tx *bbolt.Tx) error {
		url = string(tx.Bucket(bucketFlags).Get(keySyncURL))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read sync url: %w", err)
	}
	return url, nil
}

// SetSyncURL stores the linked sync URL.
func (r *FlagRepo) SetSyncURL(_ context.Context, url string) error {
	err := r.db.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFlags).Put(keySyncURL, []byte(url))
	})
	if err != nil {
		return fmt.Errorf("set sync url: %w", err)
	}
	return nil
}

// ClearSyncURL forgets the linked sync URL.
func (r *FlagRepo) ClearSyncURL(_ context.Context) error {
	err := r.db.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFlags).Delete(keySyncURL)
	})
	if err != nil {
		return fmt.Errorf("clear sync url: %w", err)
	}
	return nil
}

// Dirty reports whether local modifications exist that have not been
// reconciled against the linked remote source.
func (r *FlagRepo) Dirty(_ context.Context) (bool, error) {
	var dirty bool
	err := r.db.db.View(func(tx *bbolt.Tx) error {
		dirty = string(tx.Bucket(bucketFlags).Get(keyDirty)) == "true"
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("read dirty flag: %w", err)
	}
	return dirty, nil
}

// SetDirty records the dirty marker.
func (r *FlagRepo) SetDirty(_ context.Context, dirty bool) error {
	value := "false"
	if dirty {
		value = "true"
	}
	err := r.db.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFlags).Put(keyDirty, []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set dirty flag: %w", err)
	}
	return nil
}
