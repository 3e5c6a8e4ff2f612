package cmd

import (
	"github.com/spf13/cobra"

	"github.com/relayops/fleetbridge/internal/config"
	"github.com/relayops/fleetbridge/pkg/classify"
	"github.com/relayops/fleetbridge/pkg/envelope"
	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/logging"
	"github.com/relayops/fleetbridge/pkg/overrides"
)

// Classification is the operator-facing split of the device population.
type Classification struct {
	Automatic       []classify.AutomaticEntry `json:"automatic"`
	Manual          []classify.ManualGroup    `json:"manual"`
	WithoutDocument int                       `json:"withoutDocument"`
}

var classifyCmd = &cobra.Command{
	Use:     "classify",
	Short:   "Split the device population into automatic and manual views",
	GroupID: "pipeline",
	Long: `Classify resolves every collected device against the customer registry
and the curated overrides, then writes the automatic view (documents that
resolve cleanly) and the manual view (documents needing operator attention)
as a report.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		devices, err := envelope.ReadList[inventory.Device](config.DevicesPath())
		if err != nil {
			return err
		}
		customers, err := envelope.ReadList[inventory.TargetCustomer](config.CustomersPath())
		if err != nil {
			return err
		}
		exceptions, err := overrides.LoadExceptions(config.ExceptionsPath())
		if err != nil {
			return err
		}
		flags, err := overrides.LoadManualFlags(config.ManualFlagsPath())
		if err != nil {
			return err
		}

		automatic, manual := classify.Partition(devices, customers, exceptions, flags)

		withoutDocument := 0
		for _, dev := range devices {
			if dev.RawDocument() == "" {
				withoutDocument++
			}
		}

		report := Classification{
			Automatic:       automatic,
			Manual:          manual,
			WithoutDocument: withoutDocument,
		}
		if err := envelope.WriteDocument(config.ClassificationPath(), "classification", len(devices), report); err != nil {
			return err
		}

		logging.Info().
			Int("automatic", len(automatic)).
			Int("manual", len(manual)).
			Int("withoutDocument", withoutDocument).
			Str("path", config.ClassificationPath()).
			Msg("Classification written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
