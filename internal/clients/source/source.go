// Package source collects device telemetry from the fleet monitoring
// platform: the device roster plus per-device counters and supply readings.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/relayops/fleetbridge/internal/transport"
	"github.com/relayops/fleetbridge/pkg/constants"
	"github.com/relayops/fleetbridge/pkg/errors"
	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/logging"
)

// Client talks to the source telemetry API.
type Client struct {
	base string
	http *transport.Client
}

// New creates a source client for the given base URL and API key.
func New(baseURL, apiKey string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: transport.New(&transport.HeaderAuth{Header: "x-api-key", Value: apiKey}),
	}
}

// Devices pages through the device roster until the platform returns an
// empty page.
func (c *Client) Devices(ctx context.Context) ([]inventory.Device, error) {
	var all []inventory.Device

	for page := 0; page < constants.MaxPages; page++ {
		skip := page * constants.DefaultPageSize
		u := fmt.Sprintf("%s/devices/v1/printers?top=%d&skip=%d",
			c.base, constants.DefaultPageSize, skip)

		resp, err := c.http.Get(ctx, u)
		if err != nil {
			return nil, err
		}

		var body struct {
			Data []inventory.Device `json:"data"`
		}
		if err := transport.DecodeResponse("source", resp, &body); err != nil {
			return nil, err
		}
		if len(body.Data) == 0 {
			break
		}
		all = append(all, body.Data...)
	}

	logging.Info().Int("devices", len(all)).Msg("Collected device roster")
	return all, nil
}

// Counters fetches the raw counter list of each device. Devices of unknown
// type report nothing useful and are skipped; a failed device is logged and
// skipped so one flaky unit does not sink the whole collection.
func (c *Client) Counters(ctx context.Context, devices []inventory.Device) ([]inventory.CounterSet, error) {
	var sets []inventory.CounterSet

	for _, dev := range devices {
		if dev.ID == "" || dev.NormalizedStatus() == inventory.StatusUnknown ||
			strings.EqualFold(dev.Type, "unknown") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sets, err
		}

		u := fmt.Sprintf("%s/devices/v1/printers/%s/counters", c.base, url.PathEscape(dev.ID))
		counters, err := c.fetchCounters(ctx, u)
		if err != nil {
			logging.Warn().Err(err).Str("device", dev.ID).Msg("Counter collection failed for device")
			continue
		}
		sets = append(sets, inventory.CounterSet{DeviceID: dev.ID, Counters: counters})
	}

	logging.Info().Int("devices", len(sets)).Msg("Collected counters")
	return sets, nil
}

// Supplies fetches the current supply readings of each device, with the
// same skip rules as Counters.
func (c *Client) Supplies(ctx context.Context, devices []inventory.Device) ([]inventory.SupplySet, error) {
	var sets []inventory.SupplySet

	for _, dev := range devices {
		if dev.ID == "" || strings.EqualFold(dev.Type, "unknown") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sets, err
		}

		u := fmt.Sprintf("%s/devices/v1/printers/%s/current-supplies", c.base, url.PathEscape(dev.ID))
		supplies, err := c.fetchSupplies(ctx, u)
		if err != nil {
			logging.Warn().Err(err).Str("device", dev.ID).Msg("Supply collection failed for device")
			continue
		}
		sets = append(sets, inventory.SupplySet{DeviceID: dev.ID, Supplies: supplies})
	}

	logging.Info().Int("devices", len(sets)).Msg("Collected supplies")
	return sets, nil
}

// fetchCounters accepts both the bare list and the {counters:[...]} wrapper
// older firmware gateways produce.
func (c *Client) fetchCounters(ctx context.Context, u string) ([]inventory.Counter, error) {
	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := transport.DecodeResponse("source", resp, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Counters []inventory.Counter `json:"counters"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Counters != nil {
		return wrapped.Counters, nil
	}

	var list []inventory.Counter
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.WrapParse("json", u, err)
	}
	return list, nil
}

// fetchSupplies accepts the list-of-readings shape and its {supplies:[...]}
// wrapper.
func (c *Client) fetchSupplies(ctx context.Context, u string) ([][]inventory.Supply, error) {
	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := transport.DecodeResponse("source", resp, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Supplies [][]inventory.Supply `json:"supplies"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Supplies != nil {
		return wrapped.Supplies, nil
	}

	var list [][]inventory.Supply
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.WrapParse("json", u, err)
	}
	return list, nil
}
