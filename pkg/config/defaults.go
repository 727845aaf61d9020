package config

const (
	defaultEpisodes = 10
	defaultSteps    = 200

	defaultEpisodesDir = "data/episodes"

	defaultSink       = "csv"
	defaultCSVPath    = "artifacts/results.csv"
	defaultSQLitePath = "artifacts/results.db"

	defaultStreamTopic = "writebench.results"

	defaultAPIListen = ":8081"
)

// defaultBudgets is the standard byte-budget sweep.
var defaultBudgets = []int{
	1024, 2048, 4096, 8192, 10_240, 16_384,
	32_768, 65_536, 102_400, 262_144, 1_048_576,
}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Run: RunConfig{
			Episodes: defaultEpisodes,
			Steps:    defaultSteps,
			Seed:     0,
			Modes:    []string{"default", "burst_drift", "redundancy", "burst_redundancy"},
			Tracks:   []string{"unprivileged", "privileged"},
			Budgets:  append([]int(nil), defaultBudgets...),
		},
		Data: DataConfig{
			EpisodesDir: defaultEpisodesDir,
		},
		Results: ResultsConfig{
			Sink:       defaultSink,
			CSVPath:    defaultCSVPath,
			SQLitePath: defaultSQLitePath,
		},
		Stream: StreamConfig{
			Topic: defaultStreamTopic,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
