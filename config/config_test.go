package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plotdeck/plotdeck/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 1000, cfg.Usage.MaxRecords)
	assert.Equal(t, 10, cfg.Usage.RecentLimit)
	assert.Empty(t, cfg.NATS.URL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"missing provider", func(c *config.Config) { c.Model.Provider = "" }, "model.provider"},
		{"missing model name", func(c *config.Config) { c.Model.Name = "" }, "model.name"},
		{"temperature too high", func(c *config.Config) { c.Model.Temperature = 1.5 }, "temperature"},
		{"temperature negative", func(c *config.Config) { c.Model.Temperature = -0.1 }, "temperature"},
		{"zero attempts", func(c *config.Config) { c.Retry.MaxAttempts = 0 }, "max_attempts"},
		{"missing listen", func(c *config.Config) { c.Server.Listen = "" }, "server.listen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plotdeck.yaml")
	content := `
model:
  provider: ollama
  name: llama3
  temperature: 0.3
server:
  listen: ":9090"
nats:
  url: nats://localhost:4222
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ollama", cfg.Model.Provider)
	assert.Equal(t, "llama3", cfg.Model.Name)
	assert.Equal(t, 0.3, cfg.Model.Temperature)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)

	// Unset sections keep their defaults.
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
	assert.Equal(t, 1000, cfg.Usage.MaxRecords)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := config.LoadFromFile("/nonexistent/plotdeck.yaml")
	assert.Error(t, err)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [not, a, map]"), 0644))

	_, err := config.LoadFromFile(path)
	assert.Error(t, err)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "plotdeck.yaml")

	cfg := config.DefaultConfig()
	cfg.Model.Name = "gpt-4o"
	cfg.Model.Timeout = 30 * time.Second
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", loaded.Model.Name)
	assert.Equal(t, 30*time.Second, loaded.Model.Timeout)
}

func TestMerge(t *testing.T) {
	base := config.DefaultConfig()
	base.Merge(&config.Config{
		Model:  config.ModelConfig{Name: "claude-sonnet", Provider: "anthropic"},
		Server: config.ServerConfig{Listen: ":7070"},
	})

	assert.Equal(t, "anthropic", base.Model.Provider)
	assert.Equal(t, "claude-sonnet", base.Model.Name)
	assert.Equal(t, ":7070", base.Server.Listen)

	// Zero values in the overlay never clobber.
	assert.Equal(t, 0.1, base.Model.Temperature)
	assert.Equal(t, 2, base.Retry.MaxAttempts)

	base.Merge(nil)
	assert.Equal(t, "claude-sonnet", base.Model.Name)
}
