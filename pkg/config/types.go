// Package config holds the persistent writebench configuration, stored as
// writebench.toml. TOML sections group the run grid, episode data, result
// sinks, the event stream, and the results API server.
package config

// Config is the full benchmark configuration.
type Config struct {
	Version int           `toml:"version"`
	Run     RunConfig     `toml:"run"`
	Data    DataConfig    `toml:"data"`
	Results ResultsConfig `toml:"results"`
	Stream  StreamConfig  `toml:"stream"`
	API     APIConfig     `toml:"api"`
}

// RunConfig describes the benchmark grid.
type RunConfig struct {
	Episodes int      `toml:"episodes,omitempty"`
	Steps    int      `toml:"steps,omitempty"`
	Seed     int64    `toml:"seed"`
	Modes    []string `toml:"modes,omitempty"`
	Tracks   []string `toml:"tracks,omitempty"`
	Budgets  []int    `toml:"budgets,omitempty"`
	Workers  int      `toml:"workers,omitempty"`
}

// DataConfig locates frozen episode fixtures.
type DataConfig struct {
	EpisodesDir string `toml:"episodes_dir,omitempty"`
}

// ResultsConfig selects where result records go.
type ResultsConfig struct {
	// Sink is one of "csv", "sqlite", "postgres".
	Sink string `toml:"sink,omitempty"`
	// CSVPath is the output file for the csv sink.
	CSVPath string `toml:"csv_path,omitempty"`
	// SQLitePath is the database file for the sqlite sink (and the serve
	// command's reader).
	SQLitePath string `toml:"sqlite_path,omitempty"`
	// PostgresDSN is the connection string for the postgres sink.
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// StreamConfig configures result event publishing.
type StreamConfig struct {
	Enabled bool     `toml:"enabled,omitempty"`
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// APIConfig holds results API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}
