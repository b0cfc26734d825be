package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	DB       DBConfig       `yaml:"db"`
	Fallback FallbackConfig `yaml:"fallback"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type FallbackConfig struct {
	Dir string `yaml:"dir"`
}

type SessionConfig struct {
	AutoSaveInterval Duration `yaml:"auto_save_interval"`
	Retain           int      `yaml:"retain"`
}

// Duration wraps time.Duration so config files take duration strings
// like "90s", the same format FASTTRACK_AUTO_SAVE_INTERVAL accepts.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		DB: DBConfig{
			Path: "fasttrack.db",
		},
		Fallback: FallbackConfig{
			Dir: ".fasttrack-fallback",
		},
		Session: SessionConfig{
			AutoSaveInterval: Duration(30 * time.Second),
			Retain:           20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("FASTTRACK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv("FASTTRACK_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if dir := os.Getenv("FASTTRACK_FALLBACK_DIR"); dir != "" {
		cfg.Fallback.Dir = dir
	}
	if interval := os.Getenv("FASTTRACK_AUTO_SAVE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FASTTRACK_AUTO_SAVE_INTERVAL: %w", err)
		}
		cfg.Session.AutoSaveInterval = Duration(d)
	}
	if retainStr := os.Getenv("FASTTRACK_SESSION_RETAIN"); retainStr != "" {
		retain, err := strconv.Atoi(retainStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FASTTRACK_SESSION_RETAIN: %w", err)
		}
		cfg.Session.Retain = retain
	}
	if level := os.Getenv("FASTTRACK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
