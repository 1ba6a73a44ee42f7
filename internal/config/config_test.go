package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavshah/housekeeping-api-go/pkg/allocator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "api_keys.db", cfg.Database.Path)
	assert.Equal(t, 24, cfg.Engine.Attempts)
	assert.Equal(t, 10*time.Second, cfg.SearchTimeout())
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
}

func TestParse_Prefixes(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://hk@localhost/hk")
	t.Setenv("AUTH_MASTER_SECRET", "s3cret")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ENGINE_ATTEMPTS", "50")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres://hk@localhost/hk", cfg.Database.URL)
	assert.Equal(t, "s3cret", cfg.Auth.MasterSecret)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 50, cfg.Engine.Attempts)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestParse_BadNumber(t *testing.T) {
	t.Setenv("ENGINE_ATTEMPTS", "many")
	_, err := Parse()
	assert.Error(t, err)
}

func TestLoadPolicy_Defaults(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, allocator.DefaultPolicy(), p)
}

func TestLoadPolicy_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
strict: false
bath_floor_ceiling: 3
finish_time_target: 15
weights:
  twin_spread: 250
`), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)

	def := allocator.DefaultPolicy()
	assert.False(t, p.Strict)
	assert.Equal(t, 3, p.BathFloorCeiling)
	assert.Equal(t, 15.0, p.FinishTimeTarget)
	assert.Equal(t, 250.0, p.Weights.TwinSpread)
	// untouched keys keep their defaults
	assert.Equal(t, def.TwinSpreadLimit, p.TwinSpreadLimit)
	assert.Equal(t, def.Weights.Quota, p.Weights.Quota)
}

func TestLoadPolicy_Rejects(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("bath_floor_ceiling: 0\n"), 0o600))
	_, err := LoadPolicy(bad)
	assert.ErrorContains(t, err, "bath_floor_ceiling")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("strict: [\n"), 0o600))
	_, err = LoadPolicy(broken)
	assert.Error(t, err)

	_, err = LoadPolicy(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
