// Package config loads the dashboard host's settings with viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"traceper/internal/guard"
)

const envPrefix = "TRACEPER"

// Config is the resolved configuration.
type Config struct {
	Port     string
	Origin   string
	DBPath   string
	LogLevel string

	API struct {
		BaseURL string
		Timeout time.Duration
	}

	Routes guard.Routes

	Tabs struct {
		IdleTTL       time.Duration
		SweepInterval time.Duration
	}
}

func setDefaults(v *viper.Viper) {
	def := guard.DefaultRoutes()

	v.SetDefault("port", "8080")
	v.SetDefault("origin", "http://localhost:8080")
	v.SetDefault("db.path", "traceper.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("routes.landing", def.Landing)
	v.SetDefault("routes.default", def.Default)
	v.SetDefault("routes.public", def.Public)
	v.SetDefault("routes.protected", def.Protected)
	v.SetDefault("tabs.idle_ttl", "30m")
	v.SetDefault("tabs.sweep_interval", "1m")
}

// Load reads config.yml from the given directories (default "configs"),
// applies TRACEPER_* environment overrides and validates the result.
// A missing config file is not an error.
func Load(dirs ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(dirs) == 0 {
		dirs = []string{"configs"}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:     v.GetString("port"),
		Origin:   v.GetString("origin"),
		DBPath:   v.GetString("db.path"),
		LogLevel: v.GetString("log.level"),
	}
	cfg.API.BaseURL = v.GetString("api.base_url")
	cfg.API.Timeout = v.GetDuration("api.timeout")
	cfg.Routes = guard.Routes{
		Landing:   v.GetString("routes.landing"),
		Default:   v.GetString("routes.default"),
		Public:    v.GetStringSlice("routes.public"),
		Protected: v.GetStringSlice("routes.protected"),
	}
	cfg.Tabs.IdleTTL = v.GetDuration("tabs.idle_ttl")
	cfg.Tabs.SweepInterval = v.GetDuration("tabs.sweep_interval")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.Tabs.IdleTTL <= 0 || c.Tabs.SweepInterval <= 0 {
		return errors.New("config: tabs.idle_ttl and tabs.sweep_interval must be positive")
	}
	if err := c.Routes.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
