// Package sqlite implements the embedded relational store. The live
// database is a working copy rebuilt from the durable snapshot at every
// startup; durability comes from the snapshot store, not the working file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wackyweasel/minishelf/internal/domain/port/driven"
)

// DB provides dual reader/writer database connections with WAL mode enabled.
// The writer connection is limited to a single connection to avoid
// "database is locked" errors. The reader pool allows up to 4 concurrent readers.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

func openDB(dbPath string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		dbPath,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.Ping(); err != nil {
		writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.Ping(); err != nil {
		reader.Close()
		writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	return &DB{
		Writer: writer,
		Reader: reader,
		path:   dbPath,
	}, nil
}

// Close closes both reader and writer connections. Returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}

// Store owns the live database instance. It loads the prior snapshot on
// open, degrades to a fresh empty database when the snapshot is corrupt,
// and supports wholesale replacement from a validated snapshot blob.
type Store struct {
	mu        sync.RWMutex
	db        *DB
	dir       string
	snapshots driven.SnapshotStore
	logger    *slog.Logger
}

// Open initializes the store in dir. When snapshots is non-nil, a prior
// snapshot is loaded into the working copy; a snapshot that fails to open
// or verify is cleared and replaced by a fresh empty database. snapshots
// may be nil for a throwaway instance that is never persisted.
func Open(ctx context.Context, dir string, snapshots driven.SnapshotStore, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	// The dir holds only working copies; prior sessions may have left a
	// renamed live copy (replace-*.db) or serialization scratch behind.
	sweepWorkDir(dir)
	workPath := filepath.Join(dir, "live.db")

	var blob []byte
	if snapshots != nil {
		var err error
		blob, err = snapshots.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
	}

	if blob != nil {
		if err := os.WriteFile(workPath, blob, 0o600); err != nil {
			return nil, fmt.Errorf("write working copy: %w", err)
		}
	}

	db, err := openVerified(ctx, workPath)
	if err != nil && blob != nil {
		// Self-healing degrade: discard the unusable snapshot and start
		// empty rather than blocking startup.
		logger.Warn("stored snapshot is unusable, starting with an empty database", "error", err)
		if clearErr := snapshots.Clear(ctx); clearErr != nil {
			logger.Error("failed to clear corrupt snapshot", "error", clearErr)
		}
		removeDBFiles(workPath)
		db, err = openVerified(ctx, workPath)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	return &Store{
		db:        db,
		dir:       dir,
		snapshots: snapshots,
		logger:    logger,
	}, nil
}

// openVerified opens the database, checks integrity, and applies schema
// migrations. Any failure closes the connections and returns an error.
func openVerified(ctx context.Context, path string) (*DB, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	var result string
	if err := db.Writer.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		db.Close()
		return nil, fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		db.Close()
		return nil, fmt.Errorf("integrity check failed: %s", result)
	}

	if err := RunMigrations(db.Writer); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Reader returns the read connection pool of the live database.
func (s *Store) Reader() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Reader
}

// Writer returns the single write connection of the live database.
func (s *Store) Writer() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Writer
}

// Snapshot returns the full binary serialization of the live database.
func (s *Store) Snapshot(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmp := filepath.Join(s.dir, fmt.Sprintf("snapshot-%d.db", time.Now().UnixNano()))
	defer os.Remove(tmp)

	// VACUUM INTO refuses to overwrite an existing file; the timestamped
	// name keeps the target fresh.
	quoted := strings.ReplaceAll(tmp, "'", "''")
	if _, err := s.db.Writer.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", quoted)); err != nil {
		return nil, fmt.Errorf("serialize database: %w", err)
	}

	blob, err := os.ReadFile(tmp)
	if err != nil {
		return nil, fmt.Errorf("read serialized database: %w", err)
	}
	return blob, nil
}

// Persist serializes the live database and saves it to the snapshot
// store. It is a no-op for throwaway instances.
func (s *Store) Persist(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}

	blob, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}

	if err := s.snapshots.Save(ctx, blob); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Replace swaps the live database wholesale with the given snapshot blob.
// The blob is opened and verified on a staging copy first; on any failure
// the live database is left untouched.
func (s *Store) Replace(ctx context.Context, blob []byte) error {
	staging := filepath.Join(s.dir, fmt.Sprintf("replace-%d.db", time.Now().UnixNano()))
	if err := os.WriteFile(staging, blob, 0o600); err != nil {
		return fmt.Errorf("write staging copy: %w", err)
	}

	candidate, err := openVerified(ctx, staging)
	if err != nil {
		removeDBFiles(staging)
		return fmt.Errorf("verify replacement: %w", err)
	}

	s.mu.Lock()
	old := s.db
	s.db = candidate
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Error("failed to close replaced database", "error", err)
	}
	removeDBFiles(old.path)

	return nil
}

// Close closes the live database connections.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func removeDBFiles(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}

// sweepWorkDir removes every database file from a work dir, whatever
// name it carries.
func sweepWorkDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".db") || strings.HasSuffix(name, ".db-wal") || strings.HasSuffix(name, ".db-shm") {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}
