// Package collect orchestrates the collection jobs: each job pulls one
// dataset from a platform, writes it as a snapshot file, and records its
// outcome in the status store.
package collect

import (
	"context"

	"github.com/relayops/fleetbridge/internal/clients/source"
	"github.com/relayops/fleetbridge/internal/clients/target"
	"github.com/relayops/fleetbridge/internal/config"
	"github.com/relayops/fleetbridge/pkg/envelope"
	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/logging"
	"github.com/relayops/fleetbridge/pkg/status"
)

// Job names as recorded in the status store.
const (
	JobDevices   = "collect-devices"
	JobCounters  = "collect-counters"
	JobSupplies  = "collect-supplies"
	JobCustomers = "collect-customers"
	JobEquipment = "collect-equipment"
)

// Runner executes collection jobs.
type Runner struct {
	Source *source.Client
	Target *target.Client
	Status *status.Store
}

// Devices collects the device roster snapshot.
func (r *Runner) Devices(ctx context.Context) error {
	devices, err := r.Source.Devices(ctx)
	if err != nil {
		return r.finish(JobDevices, 0, err)
	}
	err = envelope.WriteSnapshot(config.DevicesPath(), "devices", devices)
	return r.finish(JobDevices, len(devices), err)
}

// Counters collects per-device counters. Requires a device snapshot.
func (r *Runner) Counters(ctx context.Context) error {
	devices, err := envelope.ReadList[inventory.Device](config.DevicesPath())
	if err != nil {
		return r.finish(JobCounters, 0, err)
	}
	sets, err := r.Source.Counters(ctx, devices)
	if err != nil {
		return r.finish(JobCounters, 0, err)
	}
	err = envelope.WriteSnapshot(config.CountersPath(), "counters", sets)
	return r.finish(JobCounters, len(sets), err)
}

// Supplies collects per-device supply readings. Requires a device snapshot.
func (r *Runner) Supplies(ctx context.Context) error {
	devices, err := envelope.ReadList[inventory.Device](config.DevicesPath())
	if err != nil {
		return r.finish(JobSupplies, 0, err)
	}
	sets, err := r.Source.Supplies(ctx, devices)
	if err != nil {
		return r.finish(JobSupplies, 0, err)
	}
	err = envelope.WriteSnapshot(config.SuppliesPath(), "supplies", sets)
	return r.finish(JobSupplies, len(sets), err)
}

// Customers collects the target customer registry snapshot.
func (r *Runner) Customers(ctx context.Context) error {
	customers, err := r.Target.Customers(ctx)
	if err != nil {
		return r.finish(JobCustomers, 0, err)
	}
	err = envelope.WriteSnapshot(config.CustomersPath(), "customers", customers)
	return r.finish(JobCustomers, len(customers), err)
}

// Equipment collects the target equipment registry snapshot.
func (r *Runner) Equipment(ctx context.Context) error {
	equipment, err := r.Target.Equipment(ctx)
	if err != nil {
		return r.finish(JobEquipment, 0, err)
	}
	err = envelope.WriteSnapshot(config.EquipmentPath(), "equipment", equipment)
	return r.finish(JobEquipment, len(equipment), err)
}

// All runs every collection job in dependency order. The first failure
// stops the sequence.
func (r *Runner) All(ctx context.Context) error {
	steps := []func(context.Context) error{
		r.Devices,
		r.Counters,
		r.Supplies,
		r.Customers,
		r.Equipment,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// finish records the job outcome and passes the error through.
func (r *Runner) finish(job string, count int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	if r.Status != nil {
		if recordErr := r.Status.Record(job, err == nil, count, message); recordErr != nil {
			logging.Warn().Err(recordErr).Str("job", job).Msg("Failed to record job status")
		}
	}
	if err != nil {
		logging.Error().Err(err).Str("job", job).Msg("Collection failed")
	}
	return err
}
