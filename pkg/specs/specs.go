// Package specs derives the human-readable attribute rows attached to an
// equipment record on the target platform: organizational data, network info,
// a translated status label, page counters and supply levels.
package specs

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/relayops/fleetbridge/pkg/constants"
	"github.com/relayops/fleetbridge/pkg/inventory"
)

// Row is one ordered name/value attribute row.
type Row struct {
	Name  string `json:"name"`
	Value string `json:"specification"`
}

// Display labels for the always-present rows.
const (
	labelDepartment   = "Departamento"
	labelObservation  = "Observações"
	labelIP           = "IP"
	labelMAC          = "MAC"
	labelBackup       = "Backup"
	labelInstallation = "Ponto Instalação"
	labelStatus       = "Situação"
	labelLastSeen     = "Última comunicação"
	labelLastSync     = "Última sincronização"
)

// statusLabels maps lowercased status tokens to their display labels.
var statusLabels = map[string]string{
	inventory.StatusOnline:      "Comunicação ok",
	inventory.StatusCountManual: "Contador manual",
	inventory.StatusOffline:     "Sem comunicação",
	inventory.StatusInDealer:    "Em estoque",
}

// counterLabels maps lowercased counter-type tokens to their display labels.
var counterLabels = map[string]string{
	"blackandwhite":   "Contador Geral P&B",
	"mono":            "Contador Geral P&B",
	"bw":              "Contador Geral P&B",
	"color":           "Contador Geral Colorido",
	"colorful":        "Contador Geral Colorido",
	"fullcolor":       "Contador Geral Colorido",
	"a3blackandwhite": "Contador Grandes Formatos P&B",
	"a3color":         "Contador Grandes Formatos Colorido",
	"scan":            "Scan",
	"scanner":         "Scan",
}

// supplyColors maps lowercased color tokens to the display palette.
var supplyColors = map[string]string{
	"black":   "Preto",
	"cyan":    "Ciano",
	"magenta": "Magenta",
	"yellow":  "Amarelo",
}

// titler capitalizes unrecognized tokens without downcasing the rest,
// so "countManual" renders as "CountManual".
var titler = cases.Title(language.Und, cases.NoLower)

// now is stubbed in tests.
var now = time.Now

// Build assembles the full specification list for a device: the core rows,
// then one row per usable counter entry, then one row per toner/ink supply.
// Counters and supplies may be nil when the device has no collected blocks.
func Build(dev inventory.Device, counters []inventory.Counter, supplies [][]inventory.Supply) []Row {
	rows := Core(dev)
	rows = append(rows, CounterRows(counters)...)
	rows = append(rows, SupplyRows(supplies)...)
	return rows
}

// Core derives the always-present rows. Rows backed by empty source values
// are omitted, except the backup flag which is always emitted.
func Core(dev inventory.Device) []Row {
	var rows []Row

	appendIf := func(name, value string) {
		if value != "" {
			rows = append(rows, Row{Name: name, Value: value})
		}
	}

	appendIf(labelDepartment, strings.TrimSpace(dev.Location.Department))
	appendIf(labelObservation, strings.TrimSpace(dev.Observation))
	appendIf(labelIP, dev.IPAddress)
	appendIf(labelMAC, dev.MACAddress)

	backup := "Não"
	if dev.IsBackup {
		backup = "Sim"
	}
	rows = append(rows, Row{Name: labelBackup, Value: backup})

	appendIf(labelInstallation, strings.TrimSpace(dev.InstallationPoint))
	rows = append(rows, Row{Name: labelStatus, Value: StatusLabel(dev.Status)})

	if ts := localTimestamp(dev.LastCommunication); ts != "" {
		rows = append(rows, Row{Name: labelLastSeen, Value: ts})
	}
	rows = append(rows, Row{
		Name:  labelLastSync,
		Value: now().In(constants.Location()).Format(constants.SpecTimeLayout),
	})

	return rows
}

// StatusLabel translates a status code to its display label. Unrecognized
// codes render capitalized as-is; an empty status renders as unknown.
func StatusLabel(status string) string {
	if label, ok := statusLabels[strings.ToLower(status)]; ok {
		return label
	}
	if status == "" {
		return "Desconhecido"
	}
	return titler.String(status)
}

// CounterRows derives one row per counter entry carrying a usable total.
// Unrecognized counter types keep their raw token in the row name.
func CounterRows(counters []inventory.Counter) []Row {
	var rows []Row
	for _, c := range counters {
		total, ok := c.Total()
		if !ok {
			continue
		}
		label, known := counterLabels[strings.ToLower(c.Type)]
		if !known {
			raw := c.Type
			if raw == "" {
				raw = "desconhecido"
			}
			label = "Counter: " + raw
		}
		rows = append(rows, Row{Name: label, Value: fmt.Sprintf("%d", total)})
	}
	return rows
}

// SupplyRows derives one row per toner or ink entry. Other supply types
// (drums, waste boxes) are ignored. Unrecognized colors are capitalized
// as-is; a missing level renders as "-".
func SupplyRows(supplies [][]inventory.Supply) []Row {
	var rows []Row
	for _, reading := range supplies {
		for _, s := range reading {
			kind, ok := supplyKind(s.Type)
			if !ok {
				continue
			}
			rows = append(rows, Row{
				Name:  fmt.Sprintf("Suprimento - %s %s (%%)", kind, colorLabel(s.Color)),
				Value: s.Level.Description.String(),
			})
		}
	}
	return rows
}

// supplyKind recognizes toner and ink entries, case-insensitively.
func supplyKind(raw string) (string, bool) {
	switch {
	case strings.EqualFold(raw, "Toner"):
		return "Toner", true
	case strings.EqualFold(raw, "Tinta"):
		return "Tinta", true
	}
	return "", false
}

func colorLabel(raw string) string {
	c := strings.ToLower(raw)
	if label, ok := supplyColors[c]; ok {
		return label
	}
	if c == "" {
		return "Desconhecido"
	}
	return titler.String(c)
}

// localTimestamp converts an upstream RFC 3339 timestamp to the display zone
// and layout. Unparseable input yields an empty string; the row is dropped
// rather than showing a bogus time.
func localTimestamp(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}
	return t.In(constants.Location()).Format(constants.SpecTimeLayout)
}
