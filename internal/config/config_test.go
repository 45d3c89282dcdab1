package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "gpt-4-turbo-preview", cfg.LLM.Model)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  driver: postgres
  dsn: host=localhost dbname=exitprep sslmode=disable
auth:
  jwt_secret: filesecret
`), 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "envsecret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "environment wins over file")
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "envsecret", cfg.Auth.JWTSecret)
	assert.Equal(t, 9090, cfg.Server.MetricsPort, "unset values keep defaults")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
