package bolt

import (
	"context"
	"fmt"

	bbolt "go.etcd.io/bbolt"

	"github.com/wackyweasel/minishelf/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SnapshotStore = (*SnapshotRepo)(nil)

// SnapshotRepo stores the database snapshot blob under a fixed key.
type SnapshotRepo struct {
	db *DB
}

// NewSnapshotRepo creates a SnapshotRepo backed by the given DB.
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save writes the snapshot blob, overwriting any prior value.
func (r *SnapshotRepo) Save(_ context.Context, blob []byte) error {
	err := r.db.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshot).Put(keySnapshot, blob)
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot blob, or nil, nil if none was ever saved.
func (r *SnapshotRepo) Load(_ context.Context) ([]byte, error) {
	var blob []byte
	err := r.db.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketSnapshot).Get(keySnapshot)
		if v != nil {
			blob = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return blob, nil
}

// Clear deletes the stored snapshot.
func (r *SnapshotRepo) Clear(_ context.Context) error {
	err := r.db.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshot).Delete(keySnapshot)
	})
	if err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
