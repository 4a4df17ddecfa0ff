package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TASKFLOW_BACKEND_URL", "TASKFLOW_ANON_KEY", "TASKFLOW_SESSION_SECRET", "TASKFLOW_LISTEN_ADDR",
		"TASKFLOW_PUBLIC_BASE_URL", "TASKFLOW_LOG_LEVEL", "TASKFLOW_LOG_FORMAT",
		"TASKFLOW_COOKIE_NAME", "TASKFLOW_SESSION_TTL", "TASKFLOW_SESSION_CACHE_SIZE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend_url: tasks.db\nanon_key: from-file\nsession_ttl: 1h\n"), 0o600))
	t.Setenv("TASKFLOW_ANON_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tasks.db", cfg.BackendURL)
	assert.Equal(t, "from-env", cfg.AnonKey)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "taskflow_session", cfg.CookieName)
}

func TestLoadRejectsBadEnvDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKFLOW_SESSION_TTL", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	assert.Error(t, err)
}

func TestValidateRequiresSecrets(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSecret)

	cfg.BackendURL = "tasks.db"
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSecret)

	cfg.AnonKey = "key"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsSessionSecretEqualToAnonKey(t *testing.T) {
	cfg := Default()
	cfg.BackendURL = "tasks.db"
	cfg.AnonKey = "shared"
	cfg.SessionSecret = "shared"
	assert.Error(t, cfg.Validate())

	cfg.SessionSecret = "server-only"
	assert.NoError(t, cfg.Validate())
}

func TestLoadSessionSecretFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKFLOW_SESSION_SECRET", "from-env")
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.SessionSecret)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.BackendURL = "postgres://localhost/taskflow"
	cfg.AnonKey = "secret"
	cfg.SessionSecret = "signing"

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
