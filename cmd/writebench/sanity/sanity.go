// Package sanitycmder provides the sanity command for cross-run checks over
// a results table.
package sanitycmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/writebench/pkg/config"
	"github.com/papercomputeco/writebench/pkg/report"
	"github.com/papercomputeco/writebench/pkg/results/csvfile"
)

type sanityCommander struct {
	inPath string
}

const sanityLongDesc string = `Run cross-run sanity checks over a results CSV:

  - no_mem must have zero recall everywhere
  - last_kb mean recall must be non-decreasing in budget within each mode

Prints "sanity_ok" and exits zero when all checks pass.

Examples:
  writebench sanity
  writebench sanity --in artifacts/results.csv`

const sanityShortDesc string = "Run results sanity checks"

func NewSanityCmd() *cobra.Command {
	cmder := &sanityCommander{}

	cmd := &cobra.Command{
		Use:   "sanity",
		Short: sanityShortDesc,
		Long:  sanityLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("in") {
				cmder.inPath = cfg.Results.CSVPath
			}
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.inPath, "in", "i", "", "Results CSV to check")

	return cmd
}

func (c *sanityCommander) run() error {
	records, err := csvfile.ReadFile(c.inPath)
	if err != nil {
		return err
	}

	if err := report.Sanity(records); err != nil {
		return err
	}

	fmt.Println("sanity_ok")
	return nil
}
