package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relayops/fleetbridge/internal/config"
	"github.com/relayops/fleetbridge/pkg/dispatch"
	"github.com/relayops/fleetbridge/pkg/envelope"
	"github.com/relayops/fleetbridge/pkg/errors"
	"github.com/relayops/fleetbridge/pkg/logging"
	"github.com/relayops/fleetbridge/pkg/payload"
)

var dispatchCmd = &cobra.Command{
	Use:     "dispatch [creations|updates]",
	Short:   "Send generated payloads to the target platform",
	GroupID: "pipeline",
	Long: `Dispatch sends a generated payload file one item at a time, pacing
requests to stay under the target platform's rate ceiling. A run that finds
its job lock held exits quietly; the overlapping run will pick the work up.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"creations", "updates"},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "creations":
			return dispatchCreations(cmd.Context())
		case "updates":
			return dispatchUpdates(cmd.Context())
		}
		return fmt.Errorf("unknown payload kind %q", args[0])
	},
}

func dispatchCreations(ctx context.Context) error {
	items, err := envelope.ReadList[payload.Create](config.CreationsPath())
	if err != nil {
		return err
	}

	client, tokens, err := newTargetClient()
	if err != nil {
		return err
	}

	d := dispatch.New("dispatch-creations", tokens, client.CreateEquipment).
		WithLabel(func(item payload.Create) string { return item.Identifier }).
		WithLock(config.LockPath("dispatch-creations"))
	summary, err := d.Run(ctx, items)
	return finishDispatch("dispatch-creations", summary, err)
}

func dispatchUpdates(ctx context.Context) error {
	items, err := envelope.ReadList[payload.Update](config.UpdatesPath())
	if err != nil {
		return err
	}

	client, tokens, err := newTargetClient()
	if err != nil {
		return err
	}

	d := dispatch.New("dispatch-updates", tokens, client.UpdateEquipment).
		WithLabel(func(item payload.Update) string { return fmt.Sprintf("%d", item.ID) }).
		WithLock(config.LockPath("dispatch-updates"))
	summary, err := d.Run(ctx, items)
	return finishDispatch("dispatch-updates", summary, err)
}

// finishDispatch records the run outcome. A held lock is not a failure;
// the overlapping run owns the status entry.
func finishDispatch(job string, summary dispatch.Summary, err error) error {
	if err != nil && errors.IsLockHeld(err) {
		return nil
	}

	message := ""
	if err != nil {
		message = err.Error()
	} else if summary.Failed > 0 {
		message = fmt.Sprintf("%d of %d items failed", summary.Failed, summary.Total)
	}
	ok := err == nil && summary.Failed == 0

	if recordErr := statusStore().Record(job, ok, summary.Succeeded, message); recordErr != nil {
		logging.Warn().Err(recordErr).Str("job", job).Msg("Failed to record job status")
	}
	return err
}

func init() {
	rootCmd.AddCommand(dispatchCmd)
}
