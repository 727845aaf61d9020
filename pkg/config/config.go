package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	// ConfigFile is the configuration file name looked up by the CLI.
	ConfigFile = "writebench.toml"

	// v0 is the alpha version of the config.
	v0 = 0

	// CurrentV is the currently supported version, points to v0.
	CurrentV = v0
)

// Load reads the config file at path. A missing file yields the defaults so
// callers always receive a fully-populated Config; fields explicitly set in
// the file override defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// ParseConfigTOML parses raw TOML bytes into a Config. Returns an error when
// the version field is present and unsupported.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Run.Episodes == 0 {
		cfg.Run.Episodes = defaults.Run.Episodes
	}
	if cfg.Run.Steps == 0 {
		cfg.Run.Steps = defaults.Run.Steps
	}
	if len(cfg.Run.Modes) == 0 {
		cfg.Run.Modes = defaults.Run.Modes
	}
	if len(cfg.Run.Tracks) == 0 {
		cfg.Run.Tracks = defaults.Run.Tracks
	}
	if len(cfg.Run.Budgets) == 0 {
		cfg.Run.Budgets = defaults.Run.Budgets
	}

	if cfg.Data.EpisodesDir == "" {
		cfg.Data.EpisodesDir = defaults.Data.EpisodesDir
	}

	if cfg.Results.Sink == "" {
		cfg.Results.Sink = defaults.Results.Sink
	}
	if cfg.Results.CSVPath == "" {
		cfg.Results.CSVPath = defaults.Results.CSVPath
	}
	if cfg.Results.SQLitePath == "" {
		cfg.Results.SQLitePath = defaults.Results.SQLitePath
	}

	if cfg.Stream.Topic == "" {
		cfg.Stream.Topic = defaults.Stream.Topic
	}

	if cfg.API.Listen == "" {
		cfg.API.Listen = defaults.API.Listen
	}
}
