package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every MINISHELF_ env var that Load() reads.
var allConfigKeys = []string{
	"MINISHELF_DATA_DIR",
	"MINISHELF_LISTEN_ADDR",
	"MINISHELF_SYNC_TIMEOUT",
	"MINISHELF_LOG_FILE",
}

// isolateConfigEnv saves and unsets all MINISHELF_ env vars so tests
// don't inherit values from the host environment. t.Cleanup restores
// original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "127.0.0.1:8323", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.SyncTimeout)
	assert.Empty(t, cfg.LogFile)
}

func TestLoad_Overrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MINISHELF_DATA_DIR", "/tmp/minishelf-test")
	t.Setenv("MINISHELF_LISTEN_ADDR", "0.0.0.0:9000")
	t.Setenv("MINISHELF_SYNC_TIMEOUT", "5s")
	t.Setenv("MINISHELF_LOG_FILE", "/tmp/minishelf.log")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/minishelf-test", cfg.DataDir)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.SyncTimeout)
	assert.Equal(t, "/tmp/minishelf.log", cfg.LogFile)
}

func TestLoad_InvalidSyncTimeout(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MINISHELF_SYNC_TIMEOUT", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_Paths(t *testing.T) {
	cfg := &Config{DataDir: "/data/minishelf"}

	assert.Equal(t, filepath.Join("/data/minishelf", "storage.db"), cfg.StoragePath())
	assert.Equal(t, filepath.Join("/data/minishelf", "work"), cfg.WorkDir())
}
