package config

import (
	"path/filepath"
	"sync"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Extractor ExtractorConfig `yaml:"extractor" mapstructure:"extractor"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	path      string
}

type ServerConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Host    string `yaml:"host" mapstructure:"host"`
	Port    int    `yaml:"port" mapstructure:"port"`
}

type LoggingConfig struct {
	Level             string `yaml:"level" mapstructure:"level"`
	LogPath           string `yaml:"log_path" mapstructure:"log_path"`
	EnableFileLogging bool   `yaml:"enable_file_logging" mapstructure:"enable_file_logging"`
}

type PathsConfig struct {
	DownloadPath   string `yaml:"download_path" mapstructure:"download_path"`
	DownloaderPath string `yaml:"downloader_path" mapstructure:"downloader_path"`
	FrontendPath   string `yaml:"frontend_path" mapstructure:"frontend_path"`
	AutoInstall    bool   `yaml:"auto_install" mapstructure:"auto_install"`
}

type ExtractorConfig struct {
	// "native" resolves metadata in-process, "ytdlp" shells out to yt-dlp -J.
	MetadataBackend string `yaml:"metadata_backend" mapstructure:"metadata_backend"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

var (
	instance     *Config
	instanceOnce sync.Once
)

func Instance() *Config {
	if instance == nil {
		instanceOnce.Do(func() {
			instance = &Config{}
			instance.Server.Port = 5000
			instance.Paths.DownloadPath = "downloads"
			instance.Paths.DownloaderPath = "yt-dlp"
			instance.Extractor.MetadataBackend = "native"
		})
	}
	return instance
}

// Path of the directory containing the config file
func (c *Config) Dir() string { return filepath.Dir(c.path) }

// Absolute path of the config file
func (c *Config) Path() string { return c.path }

func (c *Config) SetPath(p string) {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	c.path = p
}
