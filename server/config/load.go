package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load fills the shared instance from the optional YAML file, an optional
// .env file and APP_ prefixed environment variables.
func Load(configFile string) (*Config, error) {
	// a missing .env is the common case
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.base_url", "")
	v.SetDefault("paths.download_path", "downloads")
	v.SetDefault("paths.downloader_path", "yt-dlp")
	v.SetDefault("paths.frontend_path", "")
	v.SetDefault("paths.auto_install", false)
	v.SetDefault("extractor.metadata_backend", "native")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_path", "tubedrop.log")
	v.SetDefault("logging.enable_file_logging", false)
	v.SetDefault("metrics.enabled", true)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		slog.Debug("using defaults", slog.String("config", configFile), slog.Any("err", err))
	}

	cfg := Instance()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.SetPath(configFile)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Paths.DownloadPath == "" {
		return fmt.Errorf("paths.download_path must not be empty")
	}
	switch c.Extractor.MetadataBackend {
	case "native", "ytdlp":
	default:
		return fmt.Errorf("unknown metadata backend %q", c.Extractor.MetadataBackend)
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
