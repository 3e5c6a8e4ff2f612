package specs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayops/fleetbridge/pkg/inventory"
)

func fixedNow(t *testing.T) func() {
	t.Helper()
	orig := now
	now = func() time.Time {
		return time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)
	}
	return func() { now = orig }
}

func rowMap(rows []Row) map[string]string {
	m := make(map[string]string, len(rows))
	for _, r := range rows {
		m[r.Name] = r.Value
	}
	return m
}

func TestCoreRows(t *testing.T) {
	defer fixedNow(t)()

	dev := inventory.Device{
		Status:            "online",
		IPAddress:         "10.0.0.9",
		MACAddress:        "AA:BB:CC:DD:EE:FF",
		IsBackup:          false,
		Observation:       " fica na recepção ",
		InstallationPoint: "Recepção",
		LastCommunication: "2026-03-10T14:00:00Z",
		Location:          inventory.Location{Department: "Matriz"},
	}

	rows := Core(dev)
	m := rowMap(rows)

	assert.Equal(t, "Matriz", m["Departamento"])
	assert.Equal(t, "fica na recepção", m["Observações"])
	assert.Equal(t, "10.0.0.9", m["IP"])
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", m["MAC"])
	assert.Equal(t, "Não", m["Backup"])
	assert.Equal(t, "Recepção", m["Ponto Instalação"])
	assert.Equal(t, "Comunicação ok", m["Situação"])
	// 14:00 UTC is 11:00 in America/Sao_Paulo.
	assert.Equal(t, "11:00 10/03/2026", m["Última comunicação"])
	assert.Equal(t, "14:30 10/03/2026", m["Última sincronização"])
}

func TestCoreOmitsEmptyRows(t *testing.T) {
	defer fixedNow(t)()

	rows := Core(inventory.Device{Status: "offline", IsBackup: true})
	m := rowMap(rows)

	_, hasDept := m["Departamento"]
	assert.False(t, hasDept)
	_, hasIP := m["IP"]
	assert.False(t, hasIP)
	_, hasLastSeen := m["Última comunicação"]
	assert.False(t, hasLastSeen)

	// Backup and status rows are always present.
	assert.Equal(t, "Sim", m["Backup"])
	assert.Equal(t, "Sem comunicação", m["Situação"])
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"online", "Comunicação ok"},
		{"Online", "Comunicação ok"},
		{"countManual", "Contador manual"},
		{"offline", "Sem comunicação"},
		{"inDealer", "Em estoque"},
		{"sleeping", "Sleeping"},
		{"", "Desconhecido"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusLabel(tt.in), "status %q", tt.in)
	}
}

func intPtr(n int64) *int64 { return &n }

func TestCounterRows(t *testing.T) {
	counters := []inventory.Counter{
		{Type: "blackAndWhite", TotalCount: intPtr(120345)},
		{Type: "color", Count: intPtr(8000)},
		{Type: "a3Color", TotalCount: intPtr(15)},
		{Type: "scan", TotalCount: intPtr(532)},
		{Type: "fax"}, // no total: skipped
		{Type: "fax", TotalCount: intPtr(3)},
	}

	rows := CounterRows(counters)
	require.Len(t, rows, 5)

	assert.Equal(t, Row{Name: "Contador Geral P&B", Value: "120345"}, rows[0])
	assert.Equal(t, Row{Name: "Contador Geral Colorido", Value: "8000"}, rows[1])
	assert.Equal(t, Row{Name: "Contador Grandes Formatos Colorido", Value: "15"}, rows[2])
	assert.Equal(t, Row{Name: "Scan", Value: "532"}, rows[3])
	assert.Equal(t, Row{Name: "Counter: fax", Value: "3"}, rows[4])
}

func TestSupplyRows(t *testing.T) {
	supplies := [][]inventory.Supply{
		{
			{Type: "Toner", Color: "black", Level: inventory.SupplyLevel{Description: inventory.LevelDescription{"80%"}}},
			{Type: "toner", Color: "cyan", Level: inventory.SupplyLevel{Description: inventory.LevelDescription{"Baixo", "10%"}}},
			{Type: "Drum", Color: "black"}, // not toner/ink: skipped
		},
		{
			{Type: "Tinta", Color: "lightcyan"},
		},
	}

	rows := SupplyRows(supplies)
	require.Len(t, rows, 3)

	assert.Equal(t, Row{Name: "Suprimento - Toner Preto (%)", Value: "80%"}, rows[0])
	assert.Equal(t, Row{Name: "Suprimento - Toner Ciano (%)", Value: "Baixo, 10%"}, rows[1])
	assert.Equal(t, Row{Name: "Suprimento - Tinta Lightcyan (%)", Value: "-"}, rows[2])
}

func TestBuildOrdering(t *testing.T) {
	defer fixedNow(t)()

	dev := inventory.Device{Status: "online", Location: inventory.Location{Department: "Matriz"}}
	counters := []inventory.Counter{{Type: "mono", TotalCount: intPtr(10)}}
	supplies := [][]inventory.Supply{{{Type: "Toner", Color: "black"}}}

	rows := Build(dev, counters, supplies)

	// Core rows first, then counters, then supplies.
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Equal(t, "Departamento", rows[0].Name)
	assert.Equal(t, "Contador Geral P&B", rows[len(rows)-2].Name)
	assert.Equal(t, "Suprimento - Toner Preto (%)", rows[len(rows)-1].Name)
}
