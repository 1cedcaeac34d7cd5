package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retries)
	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetNoColor())
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".reqflow.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"timeout": 10,
		"retries": 5,
		"validateSSL": false,
		"headers": {"X-Env": "test"}
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retries)
	assert.False(t, cfg.GetValidateSSL())
	assert.Equal(t, "test", cfg.Headers["X-Env"])
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".reqflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: 15\nproxy: http://proxy.local:8080\nfollowRedirects: false\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Timeout)
	assert.Equal(t, "http://proxy.local:8080", cfg.Proxy)
	assert.False(t, cfg.GetFollowRedirects())
}

func TestFindAndLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := FindAndLoad(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Timeout, cfg.Timeout)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1", "B": "1"}

	merged := base.Merge(&Config{
		Timeout:     99,
		ValidateSSL: boolPtr(false),
		Headers:     map[string]string{"B": "2", "C": "2"},
	})

	assert.Equal(t, 99, merged.Timeout)
	assert.Equal(t, base.Retries, merged.Retries)
	assert.False(t, merged.GetValidateSSL())
	assert.Equal(t, "1", merged.Headers["A"])
	assert.Equal(t, "2", merged.Headers["B"])
	assert.Equal(t, "2", merged.Headers["C"])
}

func TestClientConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 42
	cfg.Proxy = "http://p:1"

	cc := cfg.ClientConfig()

	assert.Equal(t, 42, cc.TimeoutSeconds)
	assert.Equal(t, "http://p:1", cc.ProxyURL)
	assert.True(t, cc.VerifySSL)
	assert.True(t, cc.AllowRedirects)
}
