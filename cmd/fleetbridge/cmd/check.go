package cmd

import (
	"github.com/spf13/cobra"

	"github.com/relayops/fleetbridge/internal/config"
	"github.com/relayops/fleetbridge/pkg/classify"
	"github.com/relayops/fleetbridge/pkg/envelope"
	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/logging"
)

var checkCmd = &cobra.Command{
	Use:     "check",
	Short:   "Report target equipment with no counterpart in the source fleet",
	GroupID: "pipeline",
	Long: `Check compares the target equipment registry against the collected
device roster by serial number and writes the records only the target knows
about. Nothing is deleted; the report is for operator review.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		equipment, err := envelope.ReadList[inventory.TargetEquipment](config.EquipmentPath())
		if err != nil {
			return err
		}
		devices, err := envelope.ReadList[inventory.Device](config.DevicesPath())
		if err != nil {
			return err
		}

		orphans, checked := classify.Orphans(equipment, devices)
		if err := envelope.WriteReport(config.OrphansPath(), "orphans", checked, orphans); err != nil {
			return err
		}

		logging.Info().
			Int("orphans", len(orphans)).
			Int("checked", checked).
			Str("path", config.OrphansPath()).
			Msg("Orphan report written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
