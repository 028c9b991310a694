// Package config loads application configuration from config.yaml and
// MAPVIEW_-prefixed environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Provider  ProviderConfig  `yaml:"provider" mapstructure:"provider"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Preload   PreloadConfig   `yaml:"preload" mapstructure:"preload"`
	Selection SelectionConfig `yaml:"selection" mapstructure:"selection"`
	Zones     ZonesConfig     `yaml:"zones" mapstructure:"zones"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ProviderConfig selects and configures the record backend.
type ProviderConfig struct {
	// Kind is one of "http", "postgres", or "sqlite". The HTTP and
	// Postgres backends fall back to the SQLite snapshot when one is
	// configured alongside them.
	Kind        string `yaml:"kind" mapstructure:"kind"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CacheConfig tunes the viewport cache.
type CacheConfig struct {
	ExpirationMinutes int     `yaml:"expiration_minutes" mapstructure:"expiration_minutes"`
	PadFraction       float64 `yaml:"pad_fraction" mapstructure:"pad_fraction"`
	DebounceMs        int     `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// PreloadConfig tunes detail warming.
type PreloadConfig struct {
	Limit int `yaml:"limit" mapstructure:"limit"`
}

// SelectionConfig tunes click resolution.
type SelectionConfig struct {
	ClickThresholdDeg float64 `yaml:"click_threshold_deg" mapstructure:"click_threshold_deg"`
}

// ZonesConfig points at the overlay layer manifest.
type ZonesConfig struct {
	ManifestPath string `yaml:"manifest_path" mapstructure:"manifest_path"`
	DataDir      string `yaml:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MAPVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("provider.kind", "http")
	v.SetDefault("provider.sqlite_path", "mapview.db")
	v.SetDefault("provider.timeout_secs", 15)
	v.SetDefault("cache.expiration_minutes", 5)
	v.SetDefault("cache.pad_fraction", 0.2)
	v.SetDefault("cache.debounce_ms", 200)
	v.SetDefault("preload.limit", 100)
	v.SetDefault("selection.click_threshold_deg", 0.02)
	v.SetDefault("zones.manifest_path", "zones.yaml")
	v.SetDefault("zones.data_dir", "zones")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
