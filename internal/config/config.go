package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all pacing configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Load     LoadConfig     `yaml:"load"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LoadConfig struct {
	// Timezone is an IANA name used to decide where a day starts.
	// Empty means the system local zone.
	Timezone        string `yaml:"timezone"`
	LookbackDays    int    `yaml:"lookback_days"`
	MaxCacheEntries int    `yaml:"max_cache_entries"`
	PruneAgeDays    int    `yaml:"prune_age_days"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Load: LoadConfig{
			LookbackDays:    30,
			MaxCacheEntries: 500,
			PruneAgeDays:    30,
		},
	}
}

// DefaultPath returns ~/.pacing/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".pacing", "config.yaml"), nil
}

// Load resolves configuration in priority order: defaults, then the YAML
// file at path (a missing file is not an error), then environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			var f Config
			if err := yaml.Unmarshal(raw, &f); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
			cfg.merge(f)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.Database.Path = envOrDefault("PACING_DB", cfg.Database.Path)
	cfg.Server.Bind = envOrDefault("PACING_BIND", cfg.Server.Bind)
	cfg.Server.Port = envInt("PACING_PORT", cfg.Server.Port)
	cfg.Load.Timezone = envOrDefault("PACING_TZ", cfg.Load.Timezone)
	cfg.Load.LookbackDays = envInt("PACING_LOOKBACK_DAYS", cfg.Load.LookbackDays)

	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(f Config) {
	if f.Server.Bind != "" {
		c.Server.Bind = f.Server.Bind
	}
	if f.Server.Port > 0 {
		c.Server.Port = f.Server.Port
	}
	if f.Database.Path != "" {
		c.Database.Path = f.Database.Path
	}
	if f.Load.Timezone != "" {
		c.Load.Timezone = f.Load.Timezone
	}
	if f.Load.LookbackDays > 0 {
		c.Load.LookbackDays = f.Load.LookbackDays
	}
	if f.Load.MaxCacheEntries > 0 {
		c.Load.MaxCacheEntries = f.Load.MaxCacheEntries
	}
	if f.Load.PruneAgeDays > 0 {
		c.Load.PruneAgeDays = f.Load.PruneAgeDays
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Load.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Load.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Load.Timezone, err)
	}
	return loc, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
