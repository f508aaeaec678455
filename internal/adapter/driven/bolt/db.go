// Package bolt implements the durable local key-value storage: the
// store's binary snapshot under a fixed key, plus the small string flags
// kept outside the snapshot (linked sync URL, dirty marker).
package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
)

var (
	bucketSnapshot = []byte("snapshot")
	bucketFlags    = []byte("flags")

	keySnapshot = []byte("library")
	keySyncURL  = []byte("sync_url")
	keyDirty    = []byte("dirty")
)

// DB wraps the bbolt database holding both buckets.
type DB struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the key-value database at path and
// ensures both buckets exist.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open key-value store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSnapshot); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketFlags)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}
