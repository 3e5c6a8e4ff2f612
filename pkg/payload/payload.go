// Package payload converts resolved, enriched device state into the minimal
// create/update instruction set that brings the target platform into
// agreement with the source snapshot. Each run is a fresh diff against the
// current snapshots; no prior payload state is consulted.
package payload

import (
	"strings"

	"github.com/relayops/fleetbridge/pkg/document"
	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/logging"
	"github.com/relayops/fleetbridge/pkg/resolve"
	"github.com/relayops/fleetbridge/pkg/specs"
)

// Equipment category ids on the target platform, keyed by device color mode.
const (
	CategoryMonochrome = 44958
	CategoryColor      = 44959
	CategoryUnknown    = 44961
)

// Create is the full field set the target platform requires on equipment
// creation. Fields the system does not populate yet are sent as defined
// empty placeholders.
type Create struct {
	ExternalID              string      `json:"externalId"`
	ParentEquipmentID       int         `json:"parentEquipmentId"`
	AssociatedCustomerID    int         `json:"associatedCustomerId"`
	AssociatedUserID        int         `json:"associatedUserId"`
	CategoryID              int         `json:"categoryId"`
	Name                    string      `json:"name"`
	Description             string      `json:"description"`
	Identifier              string      `json:"identifier"`
	Base64Image             *string     `json:"base64Image"`
	ExpirationDate          *string     `json:"expirationDate"`
	Active                  bool        `json:"active"`
	EquipmentSpecifications []specs.Row `json:"equipmentSpecifications"`
	Attachments             []string    `json:"attachments"`
	WarrantyStartDate       *string     `json:"warrantyStartDate"`
	WarrantyEndDate         *string     `json:"warrantyEndDate"`
}

// Patch is one field replacement in an update instruction.
type Patch struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Update carries the ordered field patches for one existing equipment
// record. Only the mutable fields a reconciliation run owns are patched;
// identity fields (name, identifier) are immutable post-creation.
type Update struct {
	ID    int     `json:"id"`
	Patch []Patch `json:"patch"`
}

// SerialIndex maps normalized serial numbers to existing target equipment
// ids. Built once per run from the target equipment snapshot.
type SerialIndex map[string]int

// NewSerialIndex indexes the target equipment snapshot by normalized serial.
// Records without an identifier or id are not indexable.
func NewSerialIndex(equipment []inventory.TargetEquipment) SerialIndex {
	idx := make(SerialIndex, len(equipment))
	for _, e := range equipment {
		sn := document.NormalizeSerial(e.Identifier)
		if sn == "" || e.ID == 0 {
			continue
		}
		idx[sn] = e.ID
	}
	return idx
}

// Lookup returns the target id for a raw serial number.
func (idx SerialIndex) Lookup(rawSerial string) (int, bool) {
	id, ok := idx[document.NormalizeSerial(rawSerial)]
	return id, ok
}

// CategoryID maps a device color mode to the fixed target category.
func CategoryID(colorMode string) int {
	switch {
	case equalsAny(colorMode, "monochrome", "black", "mono"):
		return CategoryMonochrome
	case equalsAny(colorMode, "colorful", "color"):
		return CategoryColor
	}
	return CategoryUnknown
}

func equalsAny(s string, options ...string) bool {
	for _, o := range options {
		if strings.EqualFold(s, o) {
			return true
		}
	}
	return false
}

// Inputs bundles the snapshots and overrides one build run consumes.
type Inputs struct {
	Devices    []inventory.Device
	Counters   map[string][]inventory.Counter
	Supplies   map[string][][]inventory.Supply
	Index      SerialIndex
	Customers  []inventory.TargetCustomer
	Exceptions []resolve.ExceptionRule
}

// IndexCounters groups collected counter sets by device id.
func IndexCounters(sets []inventory.CounterSet) map[string][]inventory.Counter {
	out := make(map[string][]inventory.Counter, len(sets))
	for _, s := range sets {
		if s.DeviceID == "" {
			continue
		}
		out[s.DeviceID] = s.Counters
	}
	return out
}

// IndexSupplies groups collected supply sets by device id.
func IndexSupplies(sets []inventory.SupplySet) map[string][][]inventory.Supply {
	out := make(map[string][][]inventory.Supply, len(sets))
	for _, s := range sets {
		if s.DeviceID == "" {
			continue
		}
		out[s.DeviceID] = s.Supplies
	}
	return out
}

// Build produces exactly one instruction per source device: an Update when
// the device's serial already exists on the target, a Create otherwise.
//
// The owning customer is resolved live against the current override rules
// and registry, so a freshly saved exception applies on the next build. A
// device that resolves to nothing is still emitted, with customer id zero,
// and logged as a data-quality issue for the manual view to pick up.
func Build(in Inputs) (creations []Create, updates []Update) {
	for _, dev := range in.Devices {
		res := resolve.Resolve(dev.RawDocument(), dev.Location.Department, in.Customers, in.Exceptions)

		if dev.RawDocument() == "" && dev.Customer.Name != "" {
			logging.Warn().
				Str("customer", dev.Customer.Name).
				Str("serial", dev.SerialNumber).
				Msg("Device carries no tax id; owner left unresolved")
		}

		rows := specs.Build(dev, in.Counters[dev.ID], in.Supplies[dev.ID])
		category := CategoryID(dev.Color)
		active := dev.Active()

		if targetID, ok := in.Index.Lookup(dev.SerialNumber); ok {
			updates = append(updates, Update{
				ID: targetID,
				Patch: []Patch{
					{Path: "associatedCustomerId", Value: res.CustomerID},
					{Path: "categoryId", Value: category},
					{Path: "active", Value: active},
					{Path: "equipmentSpecifications", Value: rows},
				},
			})
			continue
		}

		creations = append(creations, Create{
			ExternalID:              "",
			ParentEquipmentID:       0,
			AssociatedCustomerID:    res.CustomerID,
			AssociatedUserID:        0,
			CategoryID:              category,
			Name:                    dev.DisplayName(),
			Description:             "",
			Identifier:              document.NormalizeSerial(dev.SerialNumber),
			Base64Image:             nil,
			ExpirationDate:          nil,
			Active:                  active,
			EquipmentSpecifications: []specs.Row{},
			Attachments:             []string{},
			WarrantyStartDate:       nil,
			WarrantyEndDate:         nil,
		})
	}
	return creations, updates
}
