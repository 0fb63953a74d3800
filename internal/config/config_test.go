package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeys(t *testing.T) {
	t.Helper()
	for _, k := range Keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearKeys(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendMemory, cfg.SessionBackend)
	assert.Equal(t, BackendMemory, cfg.TicketBackend)
	assert.Equal(t, 10, cfg.PhoneMinDigits)
	assert.Equal(t, 5, cfg.ListLimit)
	assert.Equal(t, 5*time.Second, cfg.StorageTimeout)
	assert.Equal(t, time.Duration(0), cfg.SessionTTL)
	assert.Equal(t, "ticketflow:", cfg.RedisPrefix)
	assert.Empty(t, cfg.AdminIDs)
	assert.False(t, cfg.DistributedLock)
	assert.False(t, cfg.UsesRedis())
}

func TestLoad_EnvVarOverride(t *testing.T) {
	clearKeys(t)
	t.Chdir(t.TempDir())
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ADMIN_IDS", "1, 2,,3")
	t.Setenv("PHONE_MIN_DIGITS", "7")
	t.Setenv("DISTRIBUTED_LOCK", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.SessionBackend)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.AdminIDs)
	assert.Equal(t, 7, cfg.PhoneMinDigits)
	assert.True(t, cfg.DistributedLock)
	assert.True(t, cfg.UsesRedis())
}

func TestLoad_DotEnvFromParent(t *testing.T) {
	clearKeys(t)
	root := t.TempDir()
	child := filepath.Join(root, "bin")
	require.NoError(t, os.Mkdir(child, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("HTTP_ADDR=:9191\nLIST_LIMIT=3\n"), 0o644))
	t.Chdir(child)
	t.Cleanup(func() {
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("LIST_LIMIT")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.HTTPAddr)
	assert.Equal(t, 3, cfg.ListLimit)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearKeys(t)
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("desk.yaml", []byte("TICKET_BACKEND: postgres\nDATABASE_URL: postgres://localhost/desk\n"), 0o644))

	cfg, err := Load("desk.yaml")
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.TicketBackend)
	assert.Equal(t, "postgres://localhost/desk", cfg.DatabaseURL)

	_, err = Load("missing.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown session backend", map[string]string{"SESSION_BACKEND": "etcd"}},
		{"unknown ticket backend", map[string]string{"TICKET_BACKEND": "sqlite"}},
		{"postgres without dsn", map[string]string{"TICKET_BACKEND": "postgres"}},
		{"phone digits", map[string]string{"PHONE_MIN_DIGITS": "0"}},
		{"list limit", map[string]string{"LIST_LIMIT": "0"}},
		{"negative timeout", map[string]string{"STORAGE_TIMEOUT": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearKeys(t)
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
