package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setEnv(t, map[string]string{"DB_URL": ""})
	os.Unsetenv("DB_URL")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"DB_URL": "sqlite://file::memory:"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(100<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 10*time.Second, cfg.BlobTimeout)
	assert.Equal(t, 256, cfg.MaxTreeDepth)
	assert.Equal(t, "auto", cfg.R2.Region)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Prefixes(t *testing.T) {
	setEnv(t, map[string]string{
		"DB_URL":               "postgres://localhost/vault",
		"ENV":                  "production",
		"CORS_ORIGINS":         "https://a.test,https://b.test",
		"R2_BUCKET_NAME":       "vault",
		"R2_PUBLIC_BASE_URL":   "https://cdn.test",
		"GOOGLE_CLIENT_ID":     "client",
		"RECONCILE_INTERVAL":   "0s",
		"GOOGLE_CLIENT_SECRET": "shh",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "vault", cfg.R2.BucketName)
	assert.Equal(t, "https://cdn.test", cfg.R2.PublicBaseURL)
	assert.Equal(t, "client", cfg.Google.ClientID)
	assert.Equal(t, "shh", cfg.Google.ClientSecret)
	assert.Zero(t, cfg.ReconcileInterval)
	assert.Equal(t, cfg.CORSOrigins, cfg.CorsConfig().AllowedOrigins)
}

func TestLoad_EnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("DB_URL=sqlite://from-file\nPORT=9999\n"), 0o600))
	t.Setenv("ENV_FILE", file)
	// Registered so the values godotenv sets are restored afterwards.
	t.Setenv("DB_URL", "")
	t.Setenv("PORT", "")
	os.Unsetenv("DB_URL")
	os.Unsetenv("PORT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite://from-file", cfg.DB_URL)
	assert.Equal(t, "9999", cfg.Port)
}

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, Config{LogLevel: in}.Level(), in)
	}
}
