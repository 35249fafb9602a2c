package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds driver settings. Values come from an optional YAML file named
// by MANKAI_CONFIG; environment variables override the file.
type Config struct {
	Sock     string   `yaml:"sock"`
	DB       string   `yaml:"db"`
	History  string   `yaml:"history"`
	Prompt   string   `yaml:"prompt"`
	MaxDepth int      `yaml:"max_depth"`
	Prelude  []string `yaml:"prelude"`
}

func defaultConfig() Config {
	return Config{
		Sock:   "/tmp/mankai.sock",
		Prompt: "mankai> ",
	}
}

func loadConfig(getenv func(string) string) (Config, error) {
	cfg := defaultConfig()

	if path := getenv("MANKAI_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := getenv("MANKAI_SOCK"); v != "" {
		cfg.Sock = v
	}
	if v := getenv("MANKAI_DB"); v != "" {
		cfg.DB = v
	}
	if v := getenv("MANKAI_HISTORY"); v != "" {
		cfg.History = v
	}
	if v := getenv("MANKAI_MAX_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("MANKAI_MAX_DEPTH: %w", err)
		}
		cfg.MaxDepth = n
	}

	if cfg.MaxDepth < 0 {
		return Config{}, fmt.Errorf("max_depth must not be negative, got %d", cfg.MaxDepth)
	}
	return cfg, nil
}
