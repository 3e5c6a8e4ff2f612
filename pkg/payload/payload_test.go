package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/resolve"
)

func strPtr(s string) *string { return &s }

var buildCustomers = []inventory.TargetCustomer{
	{ID: 500, TaxID: "25729197000136", Description: "Usina Central LTDA"},
}

func sourceDevice(serial string) inventory.Device {
	return inventory.Device{
		ID:           "dev-1",
		SerialNumber: serial,
		Manufacturer: "HP",
		Model:        "LaserJet M404",
		Color:        "monochrome",
		Status:       "online",
		Customer:     inventory.Customer{Name: "Usina Central"},
		Location: inventory.Location{
			Department: "Matriz",
			CNPJ:       strPtr("25.729.197/0001-36"),
		},
	}
}

func TestBuildCreateWhenSerialAbsent(t *testing.T) {
	in := Inputs{
		Devices:   []inventory.Device{sourceDevice("SN123")},
		Index:     SerialIndex{},
		Customers: buildCustomers,
	}

	creations, updates := Build(in)

	assert.Empty(t, updates)
	require.Len(t, creations, 1)

	c := creations[0]
	assert.Equal(t, "SN123", c.Identifier)
	assert.Equal(t, "HP LaserJet M404", c.Name)
	assert.Equal(t, CategoryMonochrome, c.CategoryID)
	assert.Equal(t, 500, c.AssociatedCustomerID)
	assert.True(t, c.Active)

	// Unpopulated fields carry defined defaults.
	assert.Equal(t, "", c.ExternalID)
	assert.Zero(t, c.ParentEquipmentID)
	assert.NotNil(t, c.EquipmentSpecifications)
	assert.Empty(t, c.EquipmentSpecifications)
	assert.NotNil(t, c.Attachments)
	assert.Nil(t, c.WarrantyStartDate)
	assert.Nil(t, c.ExpirationDate)
}

func TestBuildUpdateWhenSerialPresent(t *testing.T) {
	in := Inputs{
		Devices:   []inventory.Device{sourceDevice("SN999")},
		Index:     SerialIndex{"SN999": 77},
		Customers: buildCustomers,
	}

	creations, updates := Build(in)

	assert.Empty(t, creations)
	require.Len(t, updates, 1)

	u := updates[0]
	assert.Equal(t, 77, u.ID)
	require.Len(t, u.Patch, 4)
	assert.Equal(t, "associatedCustomerId", u.Patch[0].Path)
	assert.Equal(t, 500, u.Patch[0].Value)
	assert.Equal(t, "categoryId", u.Patch[1].Path)
	assert.Equal(t, CategoryMonochrome, u.Patch[1].Value)
	assert.Equal(t, "active", u.Patch[2].Path)
	assert.Equal(t, true, u.Patch[2].Value)
	assert.Equal(t, "equipmentSpecifications", u.Patch[3].Path)

	// Identity fields are never patched.
	for _, p := range u.Patch {
		assert.NotEqual(t, "name", p.Path)
		assert.NotEqual(t, "identifier", p.Path)
	}
}

func TestBuildOneItemPerDevice(t *testing.T) {
	devs := []inventory.Device{sourceDevice("SN123"), sourceDevice("SN999"), sourceDevice("SN555")}
	in := Inputs{
		Devices:   devs,
		Index:     SerialIndex{"SN999": 77},
		Customers: buildCustomers,
	}

	creations, updates := Build(in)
	assert.Equal(t, len(devs), len(creations)+len(updates))
	assert.Len(t, updates, 1)
	assert.Len(t, creations, 2)
}

func TestBuildExceptionAppliesImmediately(t *testing.T) {
	exceptions := []resolve.ExceptionRule{
		{Document: "25729197000136", DepartmentMatch: "Matriz", CustomerID: 19952169},
	}
	in := Inputs{
		Devices:    []inventory.Device{sourceDevice("SN123")},
		Index:      SerialIndex{},
		Customers:  buildCustomers,
		Exceptions: exceptions,
	}

	creations, _ := Build(in)
	require.Len(t, creations, 1)
	assert.Equal(t, 19952169, creations[0].AssociatedCustomerID)
}

func TestBuildUnresolvedDeviceStillEmitted(t *testing.T) {
	dev := sourceDevice("SN123")
	dev.Location.CNPJ = nil

	creations, _ := Build(Inputs{Devices: []inventory.Device{dev}, Index: SerialIndex{}})
	require.Len(t, creations, 1)
	assert.Zero(t, creations[0].AssociatedCustomerID)
}

func TestBuildInactiveStatuses(t *testing.T) {
	dev := sourceDevice("SN123")
	dev.Status = "offline"

	creations, _ := Build(Inputs{Devices: []inventory.Device{dev}, Index: SerialIndex{}, Customers: buildCustomers})
	require.Len(t, creations, 1)
	assert.False(t, creations[0].Active)
}

func TestCategoryID(t *testing.T) {
	tests := []struct {
		color string
		want  int
	}{
		{"monochrome", CategoryMonochrome},
		{"Mono", CategoryMonochrome},
		{"black", CategoryMonochrome},
		{"colorful", CategoryColor},
		{"Color", CategoryColor},
		{"", CategoryUnknown},
		{"sepia", CategoryUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryID(tt.color), "color %q", tt.color)
	}
}

func TestNewSerialIndex(t *testing.T) {
	idx := NewSerialIndex([]inventory.TargetEquipment{
		{ID: 77, Identifier: " sn 999 "},
		{ID: 78, Identifier: ""},
		{ID: 0, Identifier: "X"},
		{ID: 79, Identifier: "ab12"},
	})

	require.Len(t, idx, 2)

	id, ok := idx.Lookup("SN999")
	assert.True(t, ok)
	assert.Equal(t, 77, id)

	id, ok = idx.Lookup("AB12")
	assert.True(t, ok)
	assert.Equal(t, 79, id)

	_, ok = idx.Lookup("missing")
	assert.False(t, ok)
}

func TestIndexCountersAndSupplies(t *testing.T) {
	counters := IndexCounters([]inventory.CounterSet{
		{DeviceID: "dev-1", Counters: []inventory.Counter{{Type: "mono"}}},
		{DeviceID: ""},
	})
	require.Len(t, counters, 1)
	assert.Len(t, counters["dev-1"], 1)

	supplies := IndexSupplies([]inventory.SupplySet{
		{DeviceID: "dev-1", Supplies: [][]inventory.Supply{{{Type: "Toner"}}}},
	})
	require.Len(t, supplies, 1)
}
