// Package evalcmder provides the eval command for running the full
// policy x budget x mode benchmark grid.
package evalcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/writebench/pkg/cliui"
	"github.com/papercomputeco/writebench/pkg/config"
	"github.com/papercomputeco/writebench/pkg/episode"
	"github.com/papercomputeco/writebench/pkg/eval"
	"github.com/papercomputeco/writebench/pkg/eventstream"
	"github.com/papercomputeco/writebench/pkg/eventstream/kafka"
	"github.com/papercomputeco/writebench/pkg/logger"
	"github.com/papercomputeco/writebench/pkg/policy"
	"github.com/papercomputeco/writebench/pkg/results"
	"github.com/papercomputeco/writebench/pkg/results/csvfile"
	"github.com/papercomputeco/writebench/pkg/results/postgres"
	"github.com/papercomputeco/writebench/pkg/results/sqlite"
	"github.com/papercomputeco/writebench/pkg/synthetic"
)

type evalCommander struct {
	cfg    *config.Config
	debug  bool
	logger *slog.Logger
}

const evalLongDesc string = `Run the benchmark grid: every policy on every episode, under every byte
budget, trace mode, and track.

Episodes are loaded from frozen JSONL fixtures when present in the configured
episodes directory, otherwise regenerated from the configured seed. Results
go to the configured sink (csv, sqlite, or postgres) and, when the event
stream is enabled, to Kafka.

Examples:
  writebench eval
  writebench eval --config writebench.toml --debug`

const evalShortDesc string = "Run the benchmark grid"

func NewEvalCmd() *cobra.Command {
	cmder := &evalCommander{}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: evalShortDesc,
		Long:  evalLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			cmder.cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			return cmder.run()
		},
	}

	return cmd
}

func (c *evalCommander) run() error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	episodesByMode := make(map[string][]episode.Episode, len(c.cfg.Run.Modes))
	err := cliui.Step(os.Stdout, "Loading episodes", func() error {
		for _, mode := range c.cfg.Run.Modes {
			eps, err := c.loadEpisodes(mode)
			if err != nil {
				return err
			}
			episodesByMode[mode] = eps
		}
		return nil
	})
	if err != nil {
		return err
	}

	tracks, err := parseTracks(c.cfg.Run.Tracks)
	if err != nil {
		return err
	}

	grid := &eval.Grid{
		Modes:           c.cfg.Run.Modes,
		EpisodesByMode:  episodesByMode,
		Budgets:         c.cfg.Run.Budgets,
		PoliciesByTrack: policiesByTrack(),
		Tracks:          tracks,
		Workers:         c.cfg.Run.Workers,
		Logger:          c.logger,
	}

	var records []eval.Result
	err = cliui.Step(os.Stdout, "Running benchmark grid", func() error {
		var err error
		records, err = grid.Run(ctx)
		return err
	})
	if err != nil {
		return err
	}

	err = cliui.Step(os.Stdout, fmt.Sprintf("Writing %d results (%s)", len(records), c.cfg.Results.Sink), func() error {
		return c.writeResults(ctx, records)
	})
	if err != nil {
		return err
	}

	if c.cfg.Stream.Enabled {
		err = cliui.Step(os.Stdout, "Publishing result events", func() error {
			return c.publishResults(ctx, records)
		})
		if err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Print(recapTable(records))
	return nil
}

// loadEpisodes reads the frozen fixture for a mode when one exists, otherwise
// regenerates episodes from the configured seed. Both paths are
// deterministic, so eval runs agree whether or not fixtures are frozen.
func (c *evalCommander) loadEpisodes(mode string) ([]episode.Episode, error) {
	name := synthetic.FixtureName(mode, c.cfg.Run.Seed, c.cfg.Run.Steps, c.cfg.Run.Episodes)
	path := filepath.Join(c.cfg.Data.EpisodesDir, name)

	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("loading frozen episodes", "mode", mode, "path", path)
		return episode.ReadFile(path)
	}

	c.logger.Debug("generating episodes", "mode", mode, "seed", c.cfg.Run.Seed)
	cfg := synthetic.DefaultDriftConfig(mode)
	cfg.Seed = c.cfg.Run.Seed
	cfg.Steps = c.cfg.Run.Steps
	return synthetic.GenerateEpisodes(c.cfg.Run.Episodes, cfg), nil
}

// policiesByTrack returns the standard benchmark policy roster. Priority
// policies only run on the privileged track; they read the priority field
// the unprivileged view redacts.
func policiesByTrack() map[eval.Track][]eval.NamedPolicy {
	base := []eval.NamedPolicy{
		{Name: "no_mem", Policy: policy.NoMem{}},
		{Name: "fifo_store_all", Policy: policy.FIFOStoreAll{}},
		{Name: "uniform_sample", Policy: policy.UniformSample{EveryN: 10}},
		{Name: "last_kb", Policy: policy.LastKB{}},
		{Name: "merge_aggressive", Policy: policy.MergeAggressive{}},
	}

	privileged := make([]eval.NamedPolicy, len(base), len(base)+2)
	copy(privileged, base)
	privileged = append(privileged,
		eval.NamedPolicy{Name: "priority_threshold", Policy: policy.PriorityThreshold{Threshold: 0.5}},
		eval.NamedPolicy{Name: "priority_greedy", Policy: policy.PriorityGreedy{}},
	)

	return map[eval.Track][]eval.NamedPolicy{
		eval.TrackUnprivileged: base,
		eval.TrackPrivileged:   privileged,
	}
}

func parseTracks(names []string) ([]eval.Track, error) {
	tracks := make([]eval.Track, len(names))
	for i, name := range names {
		track, err := eval.ParseTrack(name)
		if err != nil {
			return nil, err
		}
		tracks[i] = track
	}
	return tracks, nil
}

func (c *evalCommander) writeResults(ctx context.Context, records []eval.Result) error {
	sink, err := c.newSink(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	return sink.WriteResults(ctx, records)
}

func (c *evalCommander) newSink(ctx context.Context) (results.Sink, error) {
	switch c.cfg.Results.Sink {
	case "csv":
		return csvfile.NewSink(c.cfg.Results.CSVPath)
	case "sqlite":
		return sqlite.New(c.cfg.Results.SQLitePath)
	case "postgres":
		return postgres.New(ctx, c.cfg.Results.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q (want csv, sqlite, or postgres)", results.ErrUnsupportedSink, c.cfg.Results.Sink)
	}
}

func (c *evalCommander) publishResults(ctx context.Context, records []eval.Result) error {
	pub, err := kafka.NewPublisher(c.cfg.Stream.Brokers, c.cfg.Stream.Topic)
	if err != nil {
		return err
	}
	defer pub.Close()

	for i := range records {
		event := &eventstream.ResultRecordedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeResultRecorded,
			EventID:       uuid.NewString(),
			EmittedAt:     time.Now().UTC(),
			Result:        records[i],
		}
		if err := pub.PublishResult(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// recapTable renders mean F1 and regret per policy across the whole run.
func recapTable(records []eval.Result) string {
	type agg struct {
		count  int
		f1     float64
		regret float64
	}
	totals := make(map[string]*agg)
	var order []string
	for _, r := range records {
		a, ok := totals[r.Policy]
		if !ok {
			a = &agg{}
			totals[r.Policy] = a
			order = append(order, r.Policy)
		}
		a.count++
		a.f1 += r.F1
		a.regret += r.RegretWriteOnly
	}

	rows := make([][]string, 0, len(order))
	for _, p := range order {
		a := totals[p]
		n := float64(a.count)
		rows = append(rows, []string{
			p,
			fmt.Sprintf("%.3f", a.f1/n),
			fmt.Sprintf("%.3f", a.regret/n),
			fmt.Sprintf("%d", a.count),
		})
	}
	return cliui.Table([]string{"POLICY", "MEAN F1", "MEAN REGRET", "RUNS"}, rows)
}
