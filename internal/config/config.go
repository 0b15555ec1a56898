package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the root configuration structure for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Reaper  ReaperConfig  `mapstructure:"reaper"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds the network settings
type ServerConfig struct {
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	MaxClients int64  `mapstructure:"max_clients"` // connections above this are closed on accept
}

// ReaperConfig defines the parameters for the background expired-key sweep
type ReaperConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"` // how often to sweep the keyspace
}

// MetricsConfig controls the optional Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LogConfig defines logging verbosity and output style
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// Load reads the configuration from a file and overrides it with environment variables
func Load(path string) (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("EMBER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults populates viper with fallback values if they are not provided via file or ENV
func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "6379")
	viper.SetDefault("server.max_clients", 1000)

	// Reaper
	viper.SetDefault("reaper.enabled", true)
	viper.SetDefault("reaper.interval", "1s")

	// Metrics
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.addr", ":9121")

	// Logger
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}
