// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DataDir     string
	ListenAddr  string
	SyncTimeout time.Duration
	LogFile     string
}

// StoragePath returns the path of the durable key-value database holding
// the snapshot and flags.
func (c *Config) StoragePath() string {
	return filepath.Join(c.DataDir, "storage.db")
}

// WorkDir returns the directory for the store's scratch working copies.
func (c *Config) WorkDir() string {
	return filepath.Join(c.DataDir, "work")
}

// Load reads configuration from environment variables and returns a
// validated Config. All variables are optional: MINISHELF_DATA_DIR
// (defaults to the XDG data home), MINISHELF_LISTEN_ADDR (127.0.0.1:8323),
// MINISHELF_SYNC_TIMEOUT (30s), and MINISHELF_LOG_FILE (stderr only when
// unset).
func Load() (*Config, error) {
	dataDir := filepath.Join(xdg.DataHome, "minishelf")
	if v, ok := os.LookupEnv("MINISHELF_DATA_DIR"); ok && v != "" {
		dataDir = v
	}

	listenAddr := "127.0.0.1:8323"
	if v, ok := os.LookupEnv("MINISHELF_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	syncTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("MINISHELF_SYNC_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("MINISHELF_SYNC_TIMEOUT has invalid duration %q: %w", v, err)
		}
		syncTimeout = parsed
	}

	return &Config{
		DataDir:     dataDir,
		ListenAddr:  listenAddr,
		SyncTimeout: syncTimeout,
		LogFile:     os.Getenv("MINISHELF_LOG_FILE"),
	}, nil
}
