package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads writebench.toml from the
// given directory (cwd when empty), and binds environment variables with the
// WRITEBENCH_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound by a command)
//  2. Environment variables (WRITEBENCH_RUN_SEED, WRITEBENCH_API_LISTEN, ...)
//  3. writebench.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("writebench")
	v.SetConfigType("toml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	} else {
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("WRITEBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() using
// dotted-key notation. Keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Run grid
	v.SetDefault("run.episodes", d.Run.Episodes)
	v.SetDefault("run.steps", d.Run.Steps)
	v.SetDefault("run.seed", d.Run.Seed)
	v.SetDefault("run.modes", d.Run.Modes)
	v.SetDefault("run.tracks", d.Run.Tracks)
	v.SetDefault("run.budgets", d.Run.Budgets)
	v.SetDefault("run.workers", d.Run.Workers)

	// Episode data
	v.SetDefault("data.episodes_dir", d.Data.EpisodesDir)

	// Result sinks
	v.SetDefault("results.sink", d.Results.Sink)
	v.SetDefault("results.csv_path", d.Results.CSVPath)
	v.SetDefault("results.sqlite_path", d.Results.SQLitePath)
	v.SetDefault("results.postgres_dsn", d.Results.PostgresDSN)

	// Event stream
	v.SetDefault("stream.enabled", d.Stream.Enabled)
	v.SetDefault("stream.brokers", d.Stream.Brokers)
	v.SetDefault("stream.topic", d.Stream.Topic)

	// Results API
	v.SetDefault("api.listen", d.API.Listen)
}

// FromViper materializes a Config from a viper instance.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Run: RunConfig{
			Episodes: v.GetInt("run.episodes"),
			Steps:    v.GetInt("run.steps"),
			Seed:     v.GetInt64("run.seed"),
			Modes:    v.GetStringSlice("run.modes"),
			Tracks:   v.GetStringSlice("run.tracks"),
			Budgets:  v.GetIntSlice("run.budgets"),
			Workers:  v.GetInt("run.workers"),
		},
		Data: DataConfig{
			EpisodesDir: v.GetString("data.episodes_dir"),
		},
		Results: ResultsConfig{
			Sink:        v.GetString("results.sink"),
			CSVPath:     v.GetString("results.csv_path"),
			SQLitePath:  v.GetString("results.sqlite_path"),
			PostgresDSN: v.GetString("results.postgres_dsn"),
		},
		Stream: StreamConfig{
			Enabled: v.GetBool("stream.enabled"),
			Brokers: v.GetStringSlice("stream.brokers"),
			Topic:   v.GetString("stream.topic"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
	}
	applyDefaults(cfg)
	return cfg
}
