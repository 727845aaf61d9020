// Package configcmder provides the config command for inspecting the
// effective writebench configuration.
package configcmder

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/writebench/pkg/config"
)

const configLongDesc string = `Print the effective configuration.

Values are resolved in precedence order: environment variables with the
WRITEBENCH_ prefix, then writebench.toml in the current directory, then
built-in defaults. Keys use dotted notation matching the TOML section
structure:
  run.episodes, run.steps, run.seed, run.modes, run.tracks, run.budgets,
  run.workers, data.episodes_dir, results.sink, results.csv_path,
  results.sqlite_path, results.postgres_dsn, stream.enabled,
  stream.brokers, stream.topic, api.listen

Examples:
  writebench config
  WRITEBENCH_RUN_SEED=7 writebench config`

const configShortDesc string = "Print the effective configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfig()
		},
	}

	return cmd
}

func runConfig() error {
	v, err := config.InitViper("")
	if err != nil {
		return err
	}

	cfg := config.FromViper(v)

	if used := v.ConfigFileUsed(); used != "" {
		fmt.Printf("# config file: %s\n", used)
	} else {
		fmt.Println("# no config file found, showing defaults")
	}

	return toml.NewEncoder(os.Stdout).Encode(cfg)
}
