// Package inventory defines the records exchanged with the source telemetry
// platform and the target asset-management platform. The JSON shapes mirror
// the wire formats of both APIs; snapshots are decoded into these types once,
// at the boundary, and the core packages only see them.
package inventory

import (
	"encoding/json"
	"strings"
)

// Device statuses reported by the source platform.
const (
	StatusOnline      = "online"
	StatusOffline     = "offline"
	StatusCountManual = "countmanual"
	StatusInDealer    = "indealer"
	StatusUnknown     = "unknown"
)

// Device is one device record from the source telemetry snapshot.
// Read-only to the reconciliation core.
type Device struct {
	ID                string   `json:"id"`
	SerialNumber      string   `json:"serialNumber"`
	Manufacturer      string   `json:"manufacturer"`
	Model             string   `json:"model"`
	Type              string   `json:"type"`
	Color             string   `json:"color"`
	Status            string   `json:"status"`
	IPAddress         string   `json:"ipAddress"`
	MACAddress        string   `json:"macAddress"`
	IsBackup          bool     `json:"isBackup"`
	Observation       string   `json:"observation"`
	InstallationPoint string   `json:"installationPoint"`
	LastCommunication string   `json:"lastCommunication,omitempty"`
	Customer          Customer `json:"customer"`
	Location          Location `json:"location"`
}

// Customer is the customer block nested in a device record.
type Customer struct {
	Name string `json:"name"`
}

// Location carries the organizational context of a device. The tax id
// arrives either as a CPF or a CNPJ, both nullable.
type Location struct {
	Department string  `json:"department"`
	CPF        *string `json:"cpf"`
	CNPJ       *string `json:"cnpj"`
	Address    Address `json:"address"`
}

// Address is the address block nested in a device location.
type Address struct {
	City string `json:"city"`
}

// RawDocument returns the device's tax id as recorded upstream, preferring
// the CNPJ over the CPF. Empty when neither is present.
func (d Device) RawDocument() string {
	if d.Location.CNPJ != nil && *d.Location.CNPJ != "" {
		return *d.Location.CNPJ
	}
	if d.Location.CPF != nil && *d.Location.CPF != "" {
		return *d.Location.CPF
	}
	return ""
}

// NormalizedStatus returns the lowercased status token.
func (d Device) NormalizedStatus() string {
	return strings.ToLower(d.Status)
}

// Active reports whether a device counts as active on the target platform.
// Only communicating devices and manually counted ones qualify.
func (d Device) Active() bool {
	switch d.NormalizedStatus() {
	case StatusOnline, StatusCountManual:
		return true
	}
	return false
}

// DisplayName derives the equipment name sent on creation: manufacturer and
// model joined, falling back to whichever is non-empty.
func (d Device) DisplayName() string {
	manuf := strings.TrimSpace(d.Manufacturer)
	model := strings.TrimSpace(d.Model)
	name := strings.TrimSpace(manuf + " " + model)
	if name != "" {
		return name
	}
	return "Sem nome"
}

// TargetCustomer is one customer record from the target platform registry.
// Read-only reference data used for identity resolution.
type TargetCustomer struct {
	ID          int    `json:"id"`
	TaxID       string `json:"cpfCnpj"`
	Description string `json:"description"`
}

// TargetEquipment is one equipment record already present on the target
// platform. The identifier holds the device serial number.
type TargetEquipment struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name"`
	Identifier           string `json:"identifier"`
	CategoryID           int    `json:"categoryId"`
	AssociatedCustomerID int    `json:"associatedCustomerId"`
	Active               bool   `json:"active"`
}

// CounterSet groups the raw counter entries collected for one device.
type CounterSet struct {
	DeviceID string    `json:"printerId"`
	Counters []Counter `json:"counters"`
}

// Counter is one raw counter entry. Depending on the source firmware the
// total arrives as totalCount or count; Total resolves the precedence.
type Counter struct {
	Type       string `json:"type"`
	TotalCount *int64 `json:"totalCount"`
	Count      *int64 `json:"count"`
}

// Total returns the usable total for the counter, or false when the entry
// carries neither field.
func (c Counter) Total() (int64, bool) {
	if c.TotalCount != nil {
		return *c.TotalCount, true
	}
	if c.Count != nil {
		return *c.Count, true
	}
	return 0, false
}

// SupplySet groups the raw supply entries collected for one device. The
// source nests supplies as a list of lists (one inner list per reading).
type SupplySet struct {
	DeviceID string     `json:"printerId"`
	Supplies [][]Supply `json:"supplies"`
}

// Supply is one raw supply entry (toner, ink, drum, ...).
type Supply struct {
	Type  string      `json:"type"`
	Color string      `json:"color"`
	Level SupplyLevel `json:"level"`
}

// SupplyLevel carries the human-readable fill level. Some device models
// report the description as a single string, others as a list of strings.
type SupplyLevel struct {
	Description LevelDescription `json:"description"`
}

// LevelDescription accepts both a bare JSON string and an array of strings.
type LevelDescription []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *LevelDescription) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = LevelDescription{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = LevelDescription(many)
	return nil
}

// MarshalJSON implements json.Marshaler, preserving the single-string shape
// for one-element descriptions.
func (l LevelDescription) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]string(l))
}

// String renders the level for a specification row: entries joined by
// commas, or "-" when the device reported nothing.
func (l LevelDescription) String() string {
	if len(l) == 0 {
		return "-"
	}
	return strings.Join(l, ", ")
}
