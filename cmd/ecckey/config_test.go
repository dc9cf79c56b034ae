package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, "keys", cfg.Keystore)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad network", func(c *Config) { c.Network = "devnet" }},
		{"empty keystore", func(c *Config) { c.Keystore = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecckey.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"network":"testnet","keystore":"/tmp/ks"}`), 0600))

	cfg, err := loadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "/tmp/ks", cfg.Keystore)
	// 未设置的字段保留默认值
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecckey.yaml")
	data := "network: testnet\nlog_level: debug\nlog_file: /tmp/ecckey.log\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := loadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/ecckey.log", cfg.LogFile)
	assert.Equal(t, "keys", cfg.Keystore)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadConfigFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0600))
	_, err = loadConfigFile(bad)
	assert.Error(t, err)

	badYAML := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(badYAML, []byte("network: ["), 0600))
	_, err = loadConfigFile(badYAML)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	applyEnvOverrides(cfg, envMap(map[string]string{
		"ECCKEY_NETWORK":   "testnet",
		"ECCKEY_KEYSTORE":  "/var/keys",
		"ECCKEY_LOG_LEVEL": "error",
		"ECCKEY_LOG_FILE":  "/var/log/ecckey.log",
	}))

	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "/var/keys", cfg.Keystore)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "/var/log/ecckey.log", cfg.LogFile)
}

func TestApplyEnvOverrides_EmptyKeepsValue(t *testing.T) {
	cfg := DefaultConfig()
	applyEnvOverrides(cfg, envMap(nil))
	assert.Equal(t, DefaultConfig(), cfg)
}
