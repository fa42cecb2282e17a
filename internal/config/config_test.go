package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-session-service/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: \"9090\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "default", cfg.Interview.Workspace)
	assert.Equal(t, StoreMemory, cfg.Interview.Store)
	assert.Equal(t, domain.ReferenceCatalogID, cfg.Interview.Catalog.ID)
	assert.Empty(t, cfg.Interview.Catalog.Questions)
	assert.Empty(t, cfg.Interview.SnapshotTTL)
}

func TestLoadInlineCatalog(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
interview:
  tick_interval: 500ms
  catalog:
    id: backend
    questions:
      - difficulty: Easy
        seconds: 30
        prompt: What is a goroutine?
      - difficulty: Hard
        seconds: 90
        prompt: Design a rate limiter.
`))
	require.NoError(t, err)

	catalog := cfg.InlineCatalog()
	assert.Equal(t, "backend", catalog.ID)
	require.Len(t, catalog.Questions, 2)
	assert.Equal(t, domain.DifficultyHard, catalog.Questions[1].Difficulty)
	assert.Equal(t, 90, catalog.Questions[1].AllottedSeconds)
	assert.Equal(t, 500*time.Millisecond, TTLDuration(cfg.Interview.TickInterval, time.Second))
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	_, err := Load(writeConfig(t, "interview:\n  store: redis\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "interview:\n  store: etcd\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `
interview:
  catalog:
    questions:
      - difficulty: Impossible
        seconds: 10
        prompt: Divide by zero.
`))
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)

	for _, body := range []string{
		"interview:\n  tick_interval: 1sec\n",
		"interview:\n  catalog:\n    ttl: \"10\"\n",
		"interview:\n  snapshot_ttl: forever\n",
		"redis:\n  ttl: -5m\n",
	} {
		_, err = Load(writeConfig(t, body))
		assert.Error(t, err, body)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, 5*time.Second, TTLDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, time.Duration(0), TTLDuration("0s", time.Minute))
}
