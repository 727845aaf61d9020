// Package writebenchcmder
package writebenchcmder

import (
	"github.com/spf13/cobra"

	versioncmder "github.com/papercomputeco/writebench/cmd/version"
	configcmder "github.com/papercomputeco/writebench/cmd/writebench/config"
	evalcmder "github.com/papercomputeco/writebench/cmd/writebench/eval"
	gencmder "github.com/papercomputeco/writebench/cmd/writebench/gen"
	sanitycmder "github.com/papercomputeco/writebench/cmd/writebench/sanity"
	servecmder "github.com/papercomputeco/writebench/cmd/writebench/serve"
	summarizecmder "github.com/papercomputeco/writebench/cmd/writebench/summarize"
)

const writebenchLongDesc string = `Writebench measures write policies for byte-budgeted memory stores.

Typical workflow:
  writebench gen         Freeze synthetic episode fixtures to JSONL
  writebench eval        Run the policy x budget x mode benchmark grid
  writebench summarize   Aggregate a results table into markdown
  writebench sanity      Run cross-run sanity checks over a results table
  writebench serve       Serve persisted results over HTTP`

const writebenchShortDesc string = "Writebench - write-policy benchmarking"

func NewWriteBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "writebench",
		Short: writebenchShortDesc,
		Long:  writebenchLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "writebench.toml", "Path to config file")

	// Add subcommands
	cmd.AddCommand(gencmder.NewGenCmd())
	cmd.AddCommand(evalcmder.NewEvalCmd())
	cmd.AddCommand(summarizecmder.NewSummarizeCmd())
	cmd.AddCommand(sanitycmder.NewSanityCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
