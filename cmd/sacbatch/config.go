package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the sacbatch settings read from a TOML file.
type Config struct {
	// Workers bounds the encode pool; 0 uses all available CPUs.
	Workers int `toml:"workers"`

	// OutputDir receives the encoded .sac files.
	OutputDir string `toml:"output_dir"`
}

func defaultConfig() Config {
	return Config{
		Workers:   0,
		OutputDir: ".",
	}
}

// loadConfig reads a TOML config file. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Workers < 0 {
		return cfg, fmt.Errorf("%s: workers must not be negative", path)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return cfg, nil
}
