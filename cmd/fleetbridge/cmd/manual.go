package cmd

import (
	"github.com/spf13/cobra"

	"github.com/relayops/fleetbridge/internal/config"
	"github.com/relayops/fleetbridge/pkg/logging"
	"github.com/relayops/fleetbridge/pkg/overrides"
)

var manualCmd = &cobra.Command{
	Use:     "manual",
	Short:   "Manage manual-review flags",
	GroupID: "curation",
	Long: `A manually flagged document is always promoted to the manual view,
even when every device under it resolves cleanly. Flags are keyed by the
normalized document.`,
}

var manualSetCmd = &cobra.Command{
	Use:   "set <document>",
	Short: "Flag a document for manual review",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := overrides.SetManualFlag(config.ManualFlagsPath(), args[0], true); err != nil {
			return err
		}
		logging.Info().Str("document", args[0]).Msg("Manual flag set")
		return nil
	},
}

var manualUnsetCmd = &cobra.Command{
	Use:   "unset <document>",
	Short: "Clear a document's manual flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := overrides.SetManualFlag(config.ManualFlagsPath(), args[0], false); err != nil {
			return err
		}
		logging.Info().Str("document", args[0]).Msg("Manual flag cleared")
		return nil
	},
}

var manualListCmd = &cobra.Command{
	Use:   "list",
	Short: "List flagged documents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags, err := overrides.LoadManualFlags(config.ManualFlagsPath())
		if err != nil {
			return err
		}
		if len(flags) == 0 {
			cmd.Println("no manual flags")
			return nil
		}
		for _, doc := range flags.List() {
			cmd.Println(doc)
		}
		return nil
	},
}

func init() {
	manualCmd.AddCommand(manualSetCmd)
	manualCmd.AddCommand(manualUnsetCmd)
	manualCmd.AddCommand(manualListCmd)
	rootCmd.AddCommand(manualCmd)
}
