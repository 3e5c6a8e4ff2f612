package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relayops/fleetbridge/internal/collect"
)

var collectCmd = &cobra.Command{
	Use:     "collect [devices|counters|supplies|customers|equipment|all]",
	Short:   "Collect snapshots from the source and target platforms",
	GroupID: "pipeline",
	Long: `Collect pulls one dataset (or all of them) and writes it as a snapshot
file under the data directory. Counters and supplies require a device
snapshot, so "all" runs devices first.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"devices", "counters", "supplies", "customers", "equipment", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := newCollectRunner()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		switch args[0] {
		case "devices":
			return runner.Devices(ctx)
		case "counters":
			return runner.Counters(ctx)
		case "supplies":
			return runner.Supplies(ctx)
		case "customers":
			return runner.Customers(ctx)
		case "equipment":
			return runner.Equipment(ctx)
		case "all":
			return runner.All(ctx)
		}
		return fmt.Errorf("unknown dataset %q", args[0])
	},
}

func newCollectRunner() (*collect.Runner, error) {
	sourceClient, err := newSourceClient()
	if err != nil {
		return nil, err
	}
	targetClient, _, err := newTargetClient()
	if err != nil {
		return nil, err
	}
	return &collect.Runner{
		Source: sourceClient,
		Target: targetClient,
		Status: statusStore(),
	}, nil
}

func init() {
	rootCmd.AddCommand(collectCmd)
}
