package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel   string `yaml:"log_level"`
	OnConflict string `yaml:"on_conflict"`
	StatusPort int    `yaml:"status_port"`
	NatsURL    string `yaml:"nats_url"`
	NatsToken  string `yaml:"nats_token"`
}

func defaults() Config {
	return Config{
		LogLevel:   "info",
		OnConflict: "update-name",
	}
}

// Load reads the optional YAML file named by DPE_CONFIG, then applies
// environment overrides.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("DPE_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.LogLevel = envStr("DPE_LOG_LEVEL", cfg.LogLevel)
	cfg.OnConflict = envStr("DPE_ON_CONFLICT", cfg.OnConflict)
	cfg.StatusPort = envInt("DPE_STATUS_PORT", cfg.StatusPort)
	cfg.NatsURL = envStr("NATS_URL", cfg.NatsURL)
	cfg.NatsToken = envStr("NATS_TOKEN", cfg.NatsToken)
	return cfg, nil
}

// loadFile overlays non-empty values from a YAML file onto cfg.
func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.OnConflict != "" {
		cfg.OnConflict = file.OnConflict
	}
	if file.StatusPort != 0 {
		cfg.StatusPort = file.StatusPort
	}
	if file.NatsURL != "" {
		cfg.NatsURL = file.NatsURL
	}
	if file.NatsToken != "" {
		cfg.NatsToken = file.NatsToken
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
