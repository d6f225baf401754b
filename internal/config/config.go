// Package config loads runtime settings from an optional YAML file,
// CROWNWORKS_* environment variables, and defaults, in that precedence
// order (env over file over defaults).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every runtime knob for the economy engine.
type Config struct {
	Seed          int64   `mapstructure:"seed"`
	DBPath        string  `mapstructure:"db_path"`
	CatalogPath   string  `mapstructure:"catalog_path"`
	APIPort       int     `mapstructure:"api_port"`
	DaysPerSeason int     `mapstructure:"days_per_season"`
	TickSeconds   float64 `mapstructure:"tick_seconds"`
	AdminKey      string  `mapstructure:"admin_key"`
	LogLevel      string  `mapstructure:"log_level"`
}

// Load reads configuration. An empty path skips the file and uses env
// and defaults only; a named file that does not exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("seed", 42)
	v.SetDefault("db_path", "data/crownworks.db")
	v.SetDefault("catalog_path", "data/buildings.yaml")
	v.SetDefault("api_port", 8080)
	v.SetDefault("days_per_season", 90)
	v.SetDefault("tick_seconds", 1.0)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("CROWNWORKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.APIPort < 0 || c.APIPort > 65535 {
		return fmt.Errorf("api_port %d out of range", c.APIPort)
	}
	if c.DaysPerSeason <= 0 {
		return fmt.Errorf("days_per_season must be positive")
	}
	if c.TickSeconds <= 0 {
		return fmt.Errorf("tick_seconds must be positive")
	}
	return nil
}
