package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/relayops/fleetbridge/internal/config"
	"github.com/relayops/fleetbridge/pkg/constants"
	"github.com/relayops/fleetbridge/pkg/logging"
)

var syncLoop bool

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Run a full collect, build and dispatch cycle",
	GroupID: "pipeline",
	Long: `Sync runs the whole pipeline: collect every snapshot, rebuild the
payloads, then dispatch updates and creations. With --loop it keeps
running a cycle every SYNC_INTERVAL_MINUTES.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !syncLoop {
			return syncCycle(cmd.Context())
		}

		interval := config.SyncInterval()
		logging.Info().Dur("interval", interval).Msg("Sync loop started")
		for {
			if err := syncCycle(cmd.Context()); err != nil {
				// The next cycle starts from fresh snapshots; keep looping.
				logging.Error().Err(err).Msg("Sync cycle failed")
			}
			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case <-time.After(interval):
			}
		}
	},
}

func syncCycle(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, constants.SyncTimeout)
	defer cancel()

	started := time.Now()

	runner, err := newCollectRunner()
	if err != nil {
		return err
	}
	if err := runner.All(ctx); err != nil {
		return err
	}
	if _, err := buildPayloads(); err != nil {
		return err
	}
	if err := dispatchUpdates(ctx); err != nil {
		return err
	}
	if err := dispatchCreations(ctx); err != nil {
		return err
	}

	logging.Info().Dur("elapsed", time.Since(started)).Msg("Sync cycle finished")
	return nil
}

func init() {
	syncCmd.Flags().BoolVar(&syncLoop, "loop", false, "keep running cycles on the configured interval")
	rootCmd.AddCommand(syncCmd)
}
