// Package config loads console settings from an optional YAML file with
// environment overrides. Precedence: defaults, then file, then environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API   APIConfig   `yaml:"api"`
	State StateConfig `yaml:"state"`
	Log   LogConfig   `yaml:"log"`
}

type APIConfig struct {
	// BaseURL is the console API root, e.g. https://api.example.com/api.
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// RatePerSecond caps outgoing requests; zero disables the limiter.
	RatePerSecond float64 `yaml:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst"`
}

type StateConfig struct {
	// DBPath locates the local session database.
	DBPath string `yaml:"db_path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		API: APIConfig{
			BaseURL:       "http://localhost:8000/api",
			Timeout:       10 * time.Second,
			RatePerSecond: 0,
			RateBurst:     1,
		},
		State: StateConfig{
			DBPath: filepath.Join(home, ".opsdeck", "state.db"),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is fine; a present but malformed one is not.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPSDECK_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("OPSDECK_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv("OPSDECK_API_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.API.RatePerSecond = f
		}
	}
	if v := os.Getenv("OPSDECK_API_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.RateBurst = n
		}
	}
	if v := os.Getenv("OPSDECK_STATE_DB_PATH"); v != "" {
		cfg.State.DBPath = v
	}
	if v := os.Getenv("OPSDECK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.State.DBPath == "" {
		return fmt.Errorf("state.db_path is required")
	}
	return nil
}
