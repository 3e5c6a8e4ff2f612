package cmd

import (
	"github.com/spf13/cobra"

	"github.com/relayops/fleetbridge/internal/config"
	"github.com/relayops/fleetbridge/pkg/envelope"
	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/logging"
	"github.com/relayops/fleetbridge/pkg/overrides"
	"github.com/relayops/fleetbridge/pkg/payload"
)

// jobBuildPayloads names the payload build in the status store.
const jobBuildPayloads = "build-payloads"

var payloadsCmd = &cobra.Command{
	Use:     "payloads",
	Short:   "Build create and update payloads from the current snapshots",
	GroupID: "pipeline",
	Long: `Payloads diffs the collected device snapshot against the target
equipment registry. Devices unknown to the target become creation payloads
with their full specification set; known devices become field patches.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		count, err := buildPayloads()
		message := ""
		if err != nil {
			message = err.Error()
		}
		if recordErr := statusStore().Record(jobBuildPayloads, err == nil, count, message); recordErr != nil {
			logging.Warn().Err(recordErr).Msg("Failed to record job status")
		}
		return err
	},
}

func buildPayloads() (int, error) {
	devices, err := envelope.ReadList[inventory.Device](config.DevicesPath())
	if err != nil {
		return 0, err
	}
	counterSets, err := envelope.ReadList[inventory.CounterSet](config.CountersPath())
	if err != nil {
		return 0, err
	}
	supplySets, err := envelope.ReadList[inventory.SupplySet](config.SuppliesPath())
	if err != nil {
		return 0, err
	}
	customers, err := envelope.ReadList[inventory.TargetCustomer](config.CustomersPath())
	if err != nil {
		return 0, err
	}
	equipment, err := envelope.ReadList[inventory.TargetEquipment](config.EquipmentPath())
	if err != nil {
		return 0, err
	}
	exceptions, err := overrides.LoadExceptions(config.ExceptionsPath())
	if err != nil {
		return 0, err
	}

	creations, updates := payload.Build(payload.Inputs{
		Devices:    devices,
		Counters:   payload.IndexCounters(counterSets),
		Supplies:   payload.IndexSupplies(supplySets),
		Index:      payload.NewSerialIndex(equipment),
		Customers:  customers,
		Exceptions: exceptions,
	})

	if err := envelope.WriteGenerated(config.CreationsPath(), creations); err != nil {
		return 0, err
	}
	if err := envelope.WriteGenerated(config.UpdatesPath(), updates); err != nil {
		return 0, err
	}

	logging.Info().
		Int("creations", len(creations)).
		Int("updates", len(updates)).
		Msg("Payloads written")
	return len(creations) + len(updates), nil
}

func init() {
	rootCmd.AddCommand(payloadsCmd)
}
