package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "env"), 0o755))
	yaml := []byte(`
application:
  env: development
  port: 9090
  secret_key: secret
mirror:
  driver: redis
  key_prefix: carts
backend:
  base_url: http://backend:2424
  timeout: 5s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env", "cart-service.yaml"), yaml, 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("cart-service")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 9090, cfg.Application.Port)
	assert.Equal(t, "secret", cfg.Application.SecretKey)
	assert.Equal(t, MirrorDriverRedis, cfg.Mirror.Driver)
	assert.Equal(t, "http://backend:2424", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Backend.ListCacheTTL, "unset keys fall back to defaults")
}

func TestLoadMissingFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = Load("does-not-exist")
	assert.Error(t, err)
}
