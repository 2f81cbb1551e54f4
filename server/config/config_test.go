package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yml")

	err := os.WriteFile(file, []byte(`
server:
  port: 8081
paths:
  download_path: /srv/media
extractor:
  metadata_backend: ytdlp
`), 0644)
	require.NoError(t, err)

	t.Setenv("APP_LOGGING_LEVEL", "debug")

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "/srv/media", cfg.Paths.DownloadPath)
	assert.Equal(t, "ytdlp", cfg.Extractor.MetadataBackend)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, dir, cfg.Dir())
}

func TestValidate(t *testing.T) {
	c := Config{}
	c.Server.Port = 5000
	c.Paths.DownloadPath = "downloads"
	c.Extractor.MetadataBackend = "native"
	assert.NoError(t, c.validate())

	c.Extractor.MetadataBackend = "scraper"
	assert.Error(t, c.validate())

	c.Extractor.MetadataBackend = "native"
	c.Server.Port = 0
	assert.Error(t, c.validate())
}

func TestYAML(t *testing.T) {
	c := Config{}
	c.Server.Port = 5000
	c.Paths.DownloadPath = "downloads"

	out, err := c.YAML()
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Contains(t, back, "server")
	assert.Contains(t, back, "paths")
}
