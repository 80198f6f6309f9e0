// Package config loads server configuration from a YAML file with
// SUMMIT_-prefixed environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/summitfall/summit-server/internal/game/board"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
}

// ServerConfig configures the websocket gateway.
type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	LeasePeriod time.Duration `mapstructure:"lease_period"`
}

// DatabaseConfig configures the postgres pool. An empty host disables
// persistence; games then live only in memory.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN renders the pool connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// GameConfig tunes match setup.
type GameConfig struct {
	MountainLevels   int `mapstructure:"mountain_levels"`
	StartingHealth   int `mapstructure:"starting_health"`
	StartingHandSize int `mapstructure:"starting_hand_size"`
}

// Load reads configuration from the given path. A missing file is not an
// error; defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.lease_period", 5*time.Minute)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "summit")
	v.SetDefault("database.name", "summit")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")
	v.SetDefault("game.mountain_levels", 7)
	v.SetDefault("game.starting_health", 30)
	v.SetDefault("game.starting_hand_size", 4)

	v.SetEnvPrefix("SUMMIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine would panic on later.
func (c *Config) Validate() error {
	if c.Game.MountainLevels <= 0 || c.Game.MountainLevels > board.MaxLevels {
		return fmt.Errorf("game.mountain_levels must be in [1, %d], got %d",
			board.MaxLevels, c.Game.MountainLevels)
	}
	if c.Game.StartingHealth <= 0 {
		return fmt.Errorf("game.starting_health must be positive, got %d", c.Game.StartingHealth)
	}
	if c.Game.StartingHandSize < 0 {
		return fmt.Errorf("game.starting_hand_size must not be negative, got %d", c.Game.StartingHandSize)
	}
	if c.Server.LeasePeriod <= 0 {
		return fmt.Errorf("server.lease_period must be positive, got %s", c.Server.LeasePeriod)
	}
	return nil
}
