package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. UNDERCOVER_PORT
const EnvPrefix = "UNDERCOVER"

// Config is the server configuration
type Config struct {
	Env         string `mapstructure:"env"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	StorageType string `mapstructure:"storage_type"`
	RedisURL    string `mapstructure:"redis_url"`
	WordsPath   string `mapstructure:"words_path"`

	SessionDuration time.Duration `mapstructure:"session_duration"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Load reads config/config.<env>.yaml if present, then applies
// UNDERCOVER_* environment overrides on top of the defaults
func Load() (*Config, error) {
	return load(viper.New(), "config")
}

func load(v *viper.Viper, dir string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	env := v.GetString("env")
	v.SetConfigType("yaml")
	v.SetConfigFile(fmt.Sprintf("%s/config.%s.yaml", dir, env))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("host", "")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("storage_type", "memory")
	v.SetDefault("redis_url", "")
	v.SetDefault("words_path", "data/words.txt")
	v.SetDefault("session_duration", "168h")
	v.SetDefault("read_timeout", "15s")
	v.SetDefault("write_timeout", "60s")
	v.SetDefault("shutdown_timeout", "30s")
	v.SetDefault("cleanup_interval", "1m")
}

// Validate checks values that have no usable fallback
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.StorageType {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("redis_url required when storage_type is redis")
		}
	default:
		return fmt.Errorf("invalid storage_type %q: must be 'memory' or 'redis'", c.StorageType)
	}
	if c.SessionDuration <= 0 {
		return errors.New("session_duration must be positive")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
