package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
templates:
  code_base_path: /site
  base_url: https://cdn.example.com

fetch:
  timeout: 10s
  retries: 2
  retry_delay: 200ms
  auth:
    type: bearer
    token: secret

render:
  concurrency: 4
  max_include_depth: 16

logging:
  level: DEBUG
`

func TestParseConfig_Success(t *testing.T) {
	cfg, err := parseConfig(fullConfig)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/site", cfg.Templates.CodeBasePath)
	assert.Equal(t, "https://cdn.example.com", cfg.Templates.BaseURL)
	assert.Equal(t, "10s", cfg.Fetch.Timeout)
	assert.Equal(t, 2, cfg.Fetch.Retries)
	assert.Equal(t, "200ms", cfg.Fetch.RetryDelay)
	require.NotNil(t, cfg.Fetch.Auth)
	assert.Equal(t, "bearer", cfg.Fetch.Auth.Type)
	assert.Equal(t, "secret", cfg.Fetch.Auth.Token)
	assert.Equal(t, 4, cfg.Render.Concurrency)
	assert.Equal(t, 16, cfg.Render.MaxIncludeDepth)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestParseConfig_EmptyString(t *testing.T) {
	cfg, err := parseConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config YAML is empty")
}

func TestParseConfig_InvalidYAML(t *testing.T) {
	yamlConfig := `
templates:
  directory: ./site
  invalid_indentation
`

	cfg, err := parseConfig(yamlConfig)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to unmarshal YAML")
}

func TestParseConfig_UnknownField(t *testing.T) {
	yamlConfig := `
templates:
  directory: ./site
  base_path: /typo
`

	cfg, err := parseConfig(yamlConfig)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "base_path")
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig("templates:\n  directory: ./site\n")
	require.NoError(t, err)

	assert.Equal(t, "./site", cfg.Templates.Directory)
	assert.Equal(t, DefaultMaxIncludeDepth, cfg.Render.MaxIncludeDepth)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultFetchTimeout, cfg.Fetch.GetTimeout())
	assert.Nil(t, cfg.Fetch.Auth)
	assert.NoError(t, ValidateStructure(cfg))
}

func TestLoadConfig_KeepsConfiguredValues(t *testing.T) {
	cfg, err := LoadConfig(fullConfig)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Render.MaxIncludeDepth)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.NoError(t, ValidateStructure(cfg))
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/site", cfg.Templates.CodeBasePath)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
